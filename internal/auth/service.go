// Package auth handles accounts and signed sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"yourkitchen/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SessionTTL is how long a session token stays valid.
const SessionTTL = 24 * time.Hour

const (
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLength = 72
)

var (
	// ErrInvalidCredentials indicates that the provided email or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken indicates that an account with the email already exists.
	ErrEmailTaken = errors.New("an account with this email already exists")
	// ErrInvalidSession indicates a missing, expired, revoked or forged session token.
	ErrInvalidSession = errors.New("invalid session")
	// ErrInvalidEmail indicates an email address that cannot be parsed.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrWeakPassword indicates a password outside the accepted length.
	ErrWeakPassword = fmt.Errorf("password must be between %d and %d characters", minPasswordLength, maxPasswordLength)
)

// Claims are the contents of a session token. The subject is the user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Session is an issued token and the user it belongs to.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Service handles sign-up, sign-in and session validation.
type Service struct {
	users   domain.UserRepository
	revoked domain.SessionRevocations
	secret  []byte
	now     func() time.Time
}

// NewService creates a new authentication service signing tokens with secret.
func NewService(users domain.UserRepository, revoked domain.SessionRevocations, secret string) *Service {
	return &Service{
		users:   users,
		revoked: revoked,
		secret:  []byte(secret),
		now:     time.Now,
	}
}

// SignUp creates an account and opens a session for it.
func (s *Service) SignUp(ctx context.Context, email, name, password string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if n := len(password); n < minPasswordLength || n > maxPasswordLength {
		return nil, ErrWeakPassword
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return s.issue(user)
}

// SignIn checks the credentials and opens a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil || user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

// SignOut revokes the token until it would have expired. Tokens that do not
// verify are ignored.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	if err := s.revoked.DeleteExpired(ctx, s.now()); err != nil {
		return fmt.Errorf("failed to prune revoked sessions: %w", err)
	}
	return nil
}

// Authenticate returns the user of a valid, unrevoked session token.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, ErrInvalidSession
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if revoked {
		return nil, ErrInvalidSession
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidSession
	}
	return user, nil
}

func (s *Service) issue(user *domain.User) (*Session, error) {
	now := s.now()
	expiresAt := now.Add(SessionTTL)
	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session: %w", err)
	}
	return &Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *Service) parse(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
