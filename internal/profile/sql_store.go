package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"yourkitchen/internal/database"
	"yourkitchen/internal/domain"
)

// SQLStore keeps one row per profile in the profiles table. Nested values
// are stored as JSON text in snake_case columns; the mapping to the domain
// names happens only here.
type SQLStore struct {
	db *database.DB
}

var _ domain.ProfileStore = (*SQLStore)(nil)

// NewSQLStore creates a store over an open, migrated database.
func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db}
}

type profileRow struct {
	ID           string
	Name         string
	CreatedAt    string
	Answers      string
	WeeklyPlan   sql.NullString
	SavedRecipes string
}

func (r profileRow) toDomain() (*domain.UserProfile, error) {
	createdAt, err := database.ParseTime(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	p := &domain.UserProfile{ID: r.ID, Name: r.Name, CreatedAt: createdAt}
	if err := json.Unmarshal([]byte(r.Answers), &p.Answers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answers: %w", err)
	}
	if r.WeeklyPlan.Valid && r.WeeklyPlan.String != "" && r.WeeklyPlan.String != "null" {
		p.WeeklyPlan = &domain.WeeklyPlan{}
		if err := json.Unmarshal([]byte(r.WeeklyPlan.String), p.WeeklyPlan); err != nil {
			return nil, fmt.Errorf("failed to unmarshal weekly plan: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(r.SavedRecipes), &p.SavedRecipes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal saved recipes: %w", err)
	}
	return p, nil
}

func marshalText(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *SQLStore) GetProfile(ctx context.Context, id string) (*domain.UserProfile, error) {
	var r profileRow
	err := s.db.SQL.QueryRowContext(ctx, s.db.Rebind(
		"SELECT id, name, created_at, answers, weekly_plan, saved_recipes FROM profiles WHERE id = ?"),
		id,
	).Scan(&r.ID, &r.Name, &r.CreatedAt, &r.Answers, &r.WeeklyPlan, &r.SavedRecipes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return r.toDomain()
}

func (s *SQLStore) CreateProfile(ctx context.Context, p *domain.UserProfile) error {
	if _, err := s.GetProfile(ctx, p.ID); err == nil {
		return domain.ErrProfileExists
	} else if !errors.Is(err, domain.ErrProfileNotFound) {
		return err
	}

	answers, err := marshalText(nonNil(p.Answers))
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}
	recipes, err := marshalText(nonNil(p.SavedRecipes))
	if err != nil {
		return fmt.Errorf("failed to marshal saved recipes: %w", err)
	}
	var plan sql.NullString
	if p.WeeklyPlan != nil {
		text, err := marshalText(p.WeeklyPlan)
		if err != nil {
			return fmt.Errorf("failed to marshal weekly plan: %w", err)
		}
		plan = sql.NullString{String: text, Valid: true}
	}

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.db.SQL.ExecContext(ctx, s.db.Rebind(
		"INSERT INTO profiles (id, name, created_at, answers, weekly_plan, saved_recipes) VALUES (?, ?, ?, ?, ?, ?)"),
		p.ID, p.Name, database.FormatTime(createdAt), answers, plan, recipes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

// UpdateProfile writes only the columns of the fields set in u.
func (s *SQLStore) UpdateProfile(ctx context.Context, id string, u domain.ProfileUpdate) (*domain.UserProfile, error) {
	var sets []string
	var args []interface{}

	if u.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *u.Name)
	}
	if u.Answers != nil {
		text, err := marshalText(nonNil(*u.Answers))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal answers: %w", err)
		}
		sets = append(sets, "answers = ?")
		args = append(args, text)
	}
	if u.WeeklyPlan != nil {
		text, err := marshalText(u.WeeklyPlan)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal weekly plan: %w", err)
		}
		sets = append(sets, "weekly_plan = ?")
		args = append(args, text)
	}
	if u.SavedRecipes != nil {
		text, err := marshalText(nonNil(*u.SavedRecipes))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal saved recipes: %w", err)
		}
		sets = append(sets, "saved_recipes = ?")
		args = append(args, text)
	}

	if len(sets) > 0 {
		args = append(args, id)
		query := "UPDATE profiles SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		res, err := s.db.SQL.ExecContext(ctx, s.db.Rebind(query), args...)
		if err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return nil, domain.ErrProfileNotFound
		}
	}
	return s.GetProfile(ctx, id)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
