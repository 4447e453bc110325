// Package accounts registers users and verifies their credentials.
package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/notesapp/internal/apperr"
	"github.com/geocoder89/notesapp/internal/cache"
	"github.com/geocoder89/notesapp/internal/domain/user"
	"github.com/geocoder89/notesapp/internal/security"
	"github.com/google/uuid"
)

const minPasswordLen = 6

// ErrInvalidCredentials is returned for both unknown emails and wrong
// passwords so callers cannot tell which one happened.
var ErrInvalidCredentials = apperr.Auth("Invalid email or password.")

// UserStore persists users. Implementations return apperr kinds:
// ErrNotFound for missing rows, ErrConflict for a taken email.
type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
}

type Service struct {
	users     UserStore
	now       func() time.Time
	dummyHash string
	lookups   *cache.Cache[user.User]
}

type Option func(*Service)

// WithLookupCache keeps Lookup results for the cache's TTL. Users are never
// edited after registration so cached entries cannot go stale.
func WithLookupCache(c *cache.Cache[user.User]) Option {
	return func(s *Service) { s.lookups = c }
}

func NewService(users UserStore, opts ...Option) (*Service, error) {
	// compared against when the email is unknown, keeps both failure paths
	// doing one bcrypt comparison
	dummy, err := security.HashPassword(uuid.NewString())
	if err != nil {
		return nil, err
	}

	s := &Service{
		users:     users,
		now:       time.Now,
		dummyHash: dummy,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) Register(ctx context.Context, req user.RegisterRequest) (user.User, error) {
	name := strings.TrimSpace(req.Name)
	email := user.NormalizeEmail(req.Email)

	if name == "" || email == "" || req.Password == "" {
		return user.User{}, apperr.Validation("All fields are required.")
	}

	if len(req.Password) < minPasswordLen {
		return user.User{}, apperr.Validation("Password must be at least 6 characters.")
	}

	if len(req.Password) > security.MaxPasswordBytes {
		return user.User{}, apperr.Validation("Password must be at most 72 characters.")
	}

	if req.Password != req.PasswordConfirm {
		return user.User{}, apperr.Validation("Passwords do not match.")
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return user.User{}, errEmailTaken
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return user.User{}, err
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return user.User{}, apperr.Storage("accounts.hash_password", err)
	}

	created, err := s.users.Create(ctx, user.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return user.User{}, errEmailTaken
		}
		return user.User{}, err
	}

	return created.Public(), nil
}

var errEmailTaken = apperr.Conflict("Email already registered. Please login.")

func (s *Service) Verify(ctx context.Context, email, password string) (user.User, error) {
	email = user.NormalizeEmail(email)

	if email == "" || password == "" {
		return user.User{}, apperr.Validation("Email and password are required.")
	}

	found, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			_ = security.CheckPassword(s.dummyHash, password)
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, err
	}

	if err := security.CheckPassword(found.PasswordHash, password); err != nil {
		return user.User{}, ErrInvalidCredentials
	}

	return found.Public(), nil
}

// Lookup loads the user bound to a session.
func (s *Service) Lookup(ctx context.Context, id string) (user.User, error) {
	if s.lookups != nil {
		if u, ok := s.lookups.Get(id); ok {
			return u, nil
		}
	}

	found, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return user.User{}, apperr.Auth("User not found.")
		}
		return user.User{}, err
	}

	pub := found.Public()
	if s.lookups != nil {
		s.lookups.Set(id, pub)
	}
	return pub, nil
}
