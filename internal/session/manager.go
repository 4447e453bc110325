package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/notesapp/internal/domain/user"
)

const DefaultTTL = 24 * time.Hour

type Options struct {
	TTL time.Duration
	// Sliding pushes expiry out by TTL on every successful Resolve.
	Sliding bool
	// Now overrides the clock, tests only.
	Now func() time.Time
}

type Manager struct {
	store   Store
	signer  *Signer
	ttl     time.Duration
	sliding bool
	now     func() time.Time
	log     *slog.Logger
}

func NewManager(store Store, signer *Signer, opts Options, log *slog.Logger) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}

	return &Manager{
		store:   store,
		signer:  signer,
		ttl:     opts.TTL,
		sliding: opts.Sliding,
		now:     opts.Now,
		log:     log,
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

func (m *Manager) Sliding() bool {
	return m.sliding
}

// Create issues a session for u and returns the cookie token.
func (m *Manager) Create(ctx context.Context, u user.User) (string, Session, error) {
	id, err := newSessionID()
	if err != nil {
		return "", Session{}, err
	}

	now := m.now().UTC()
	sess := Session{
		ID:        id,
		UserID:    u.ID,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}

	if err := m.store.Save(ctx, sess, m.ttl); err != nil {
		return "", Session{}, fmt.Errorf("save session: %w", err)
	}

	token, err := m.signer.Sign(id, now)
	if err != nil {
		_ = m.store.Delete(ctx, id)
		return "", Session{}, fmt.Errorf("sign session: %w", err)
	}

	return token, sess, nil
}

// Resolve returns the live session behind token. Any failure, including a
// store outage, resolves to anonymous.
func (m *Manager) Resolve(ctx context.Context, token string) (Session, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, false
	}

	id, err := m.signer.Verify(token)
	if err != nil {
		return Session{}, false
	}

	sess, ok, err := m.store.Load(ctx, id)
	if err != nil {
		m.log.WarnContext(ctx, "session lookup failed", "session", Fingerprint(id), "err", err)
		return Session{}, false
	}
	if !ok || sess.Expired(m.now()) {
		return Session{}, false
	}

	if m.sliding {
		if err := m.store.Save(ctx, sess, m.ttl); err != nil {
			m.log.WarnContext(ctx, "session refresh failed", "session", Fingerprint(id), "err", err)
		} else {
			sess.ExpiresAt = m.now().UTC().Add(m.ttl)
		}
	}

	return sess, true
}

// Destroy invalidates token. Unknown or malformed tokens are a no-op.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	id, err := m.signer.Verify(strings.TrimSpace(token))
	if err != nil {
		return nil
	}

	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
