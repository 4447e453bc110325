// Package session binds an opaque, signed cookie token to a user id for a
// bounded time. Session records live in Redis or process memory only.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Session never carries credentials; it only names the user it belongs to.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store persists live sessions. Load reports found=false for unknown or
// expired ids. Delete of a missing id is not an error.
type Store interface {
	Save(ctx context.Context, s Session, ttl time.Duration) error
	Load(ctx context.Context, id string) (Session, bool, error)
	Delete(ctx context.Context, id string) error
}

// Fingerprint is a short, non-reversible tag for a session id, safe for logs.
func Fingerprint(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:6])
}

// Actor identifies the authenticated caller of a request.
type Actor struct {
	UserID    string
	SessionID string
}
