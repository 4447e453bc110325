package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/notesapp/internal/actorctx"
	"github.com/geocoder89/notesapp/internal/apperr"
	"github.com/geocoder89/notesapp/internal/domain/user"
	"github.com/geocoder89/notesapp/internal/session"
	"github.com/gin-gonic/gin"
)

const SessionCookieName = "notes_session"

// Keep these small so tests can fake them easily.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (session.Session, bool)
	TTL() time.Duration
	Sliding() bool
}

type UserLookup interface {
	Lookup(ctx context.Context, id string) (user.User, error)
}

type SessionAuth struct {
	sessions SessionResolver
	users    UserLookup
	secure   bool
}

func NewSessionAuth(sessions SessionResolver, users UserLookup, secureCookie bool) *SessionAuth {
	return &SessionAuth{sessions: sessions, users: users, secure: secureCookie}
}

// RequireSession rejects requests without a live session before any handler runs.
func (m *SessionAuth) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			abortUnauthorized(c, "Not authenticated")
			return
		}

		sess, ok := m.sessions.Resolve(c.Request.Context(), token)
		if !ok {
			ClearSessionCookie(c, m.secure)
			abortUnauthorized(c, "Session expired or invalid")
			return
		}

		u, err := m.users.Lookup(c.Request.Context(), sess.UserID)
		if err != nil {
			if errors.Is(err, apperr.ErrAuth) {
				ClearSessionCookie(c, m.secure)
				abortUnauthorized(c, "Not authenticated")
				return
			}

			slog.Default().ErrorContext(c.Request.Context(), "session_user_lookup_failed",
				"session", session.Fingerprint(sess.ID),
				"error", err,
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":    "internal_error",
					"message": "Something went wrong",
				},
			})
			return
		}

		if m.sessions.Sliding() {
			SetSessionCookie(c, token, m.sessions.TTL(), m.secure)
		}

		actor := session.Actor{UserID: u.ID, SessionID: sess.ID}
		c.Set(CtxActor, actor)
		c.Set(CtxUser, u)
		c.Request = c.Request.WithContext(actorctx.WithActor(c.Request.Context(), actor))

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": msg,
		},
	})
}

func SetSessionCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(ttl.Seconds()), "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", secure, true)
}

// Helpers so handlers don't need to know the magic keys.

func ActorFromContext(c *gin.Context) (session.Actor, bool) {
	v, ok := c.Get(CtxActor)
	if !ok {
		return session.Actor{}, false
	}
	a, ok := v.(session.Actor)
	return a, ok && a.UserID != ""
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	a, ok := ActorFromContext(c)
	return a.UserID, ok
}

func UserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}
