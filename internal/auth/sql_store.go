package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"yourkitchen/internal/database"
	"yourkitchen/internal/domain"
)

// UserStore keeps accounts in the users table.
type UserStore struct {
	db *database.DB
}

var _ domain.UserRepository = (*UserStore)(nil)

// NewUserStore creates a user store over a migrated database.
func NewUserStore(db *database.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.get(ctx, "email", email)
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.get(ctx, "id", id)
}

func (s *UserStore) get(ctx context.Context, column, value string) (*domain.User, error) {
	var u domain.User
	var createdAt string
	err := s.db.SQL.QueryRowContext(ctx, s.db.Rebind(
		"SELECT id, email, name, password_hash, created_at FROM users WHERE "+column+" = ?"),
		value,
	).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) Create(ctx context.Context, u *domain.User) error {
	_, err := s.db.SQL.ExecContext(ctx, s.db.Rebind(
		"INSERT INTO users (id, email, name, password_hash, created_at) VALUES (?, ?, ?, ?, ?)"),
		u.ID, u.Email, u.Name, u.PasswordHash, database.FormatTime(u.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// RevocationStore keeps signed-out token ids in the revoked_sessions table.
type RevocationStore struct {
	db *database.DB
}

var _ domain.SessionRevocations = (*RevocationStore)(nil)

// NewRevocationStore creates a revocation store over a migrated database.
func NewRevocationStore(db *database.DB) *RevocationStore {
	return &RevocationStore{db: db}
}

func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	_, err := s.db.SQL.ExecContext(ctx, s.db.Rebind(
		"INSERT INTO revoked_sessions (token_id, expires_at) VALUES (?, ?) ON CONFLICT (token_id) DO NOTHING"),
		tokenID, database.FormatTime(expiresAt),
	)
	return err
}

func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var one int
	err := s.db.SQL.QueryRowContext(ctx, s.db.Rebind(
		"SELECT 1 FROM revoked_sessions WHERE token_id = ?"), tokenID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *RevocationStore) DeleteExpired(ctx context.Context, now time.Time) error {
	_, err := s.db.SQL.ExecContext(ctx, s.db.Rebind(
		"DELETE FROM revoked_sessions WHERE expires_at < ?"), database.FormatTime(now),
	)
	return err
}
