package domain

import (
	"context"
	"time"
)

// User is an account that can sign in. Its id is also the id of its profile.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRepository defines the port for account persistence. GetByEmail and
// GetByID return (nil, nil) when nothing matches.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, u *User) error
}

// SessionRevocations remembers signed-out session token ids until they expire.
type SessionRevocations interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) error
}
