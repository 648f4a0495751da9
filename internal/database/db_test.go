package database

import (
	"path/filepath"
	"testing"
	"time"
)

func TestNewDBRunsMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "kitchen.db")
	db, err := NewDB(path)
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"profiles", "users", "revoked_sessions", "execution_metrics"} {
		var name string
		err := db.SQL.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("Expected table %s to exist: %v", table, err)
		}
	}

	// Migrating again is a no-op.
	if err := db.RunMigrations(); err != nil {
		t.Errorf("Expected a second migration run to succeed, got %v", err)
	}
}

func TestRebind(t *testing.T) {
	query := "UPDATE profiles SET name = ?, answers = ? WHERE id = ?"

	sqliteDB := &DB{Dialect: SQLite}
	if got := sqliteDB.Rebind(query); got != query {
		t.Errorf("Expected sqlite queries unchanged, got %q", got)
	}

	pg := &DB{Dialect: Postgres}
	want := "UPDATE profiles SET name = $1, answers = $2 WHERE id = $3"
	if got := pg.Rebind(query); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestTimeRoundTrip(t *testing.T) {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 123456000, time.FixedZone("X", 3600))
	parsed, err := ParseTime(FormatTime(ts))
	if err != nil {
		t.Fatalf("ParseTime failed: %v", err)
	}
	if !parsed.Equal(ts) {
		t.Errorf("Expected %v, got %v", ts, parsed)
	}
	if _, err := ParseTime("2026-03-04T05:06:07Z"); err != nil {
		t.Errorf("Expected RFC 3339 input to parse: %v", err)
	}
	if _, err := ParseTime("yesterday"); err == nil {
		t.Error("Expected an error for garbage input")
	}
	if FormatTime(ts) >= FormatTime(ts.Add(time.Second)) {
		t.Error("Expected stored timestamps to sort as text")
	}
}
