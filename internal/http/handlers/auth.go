package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/notesapp/internal/accounts"
	"github.com/geocoder89/notesapp/internal/apperr"
	"github.com/geocoder89/notesapp/internal/config"
	"github.com/geocoder89/notesapp/internal/domain/user"
	"github.com/geocoder89/notesapp/internal/http/middlewares"
	"github.com/geocoder89/notesapp/internal/observability"
	"github.com/geocoder89/notesapp/internal/session"
	"github.com/gin-gonic/gin"
)

type Accounts interface {
	Register(ctx context.Context, req user.RegisterRequest) (user.User, error)
	Verify(ctx context.Context, email, password string) (user.User, error)
}

type SessionIssuer interface {
	Create(ctx context.Context, u user.User) (string, session.Session, error)
	Destroy(ctx context.Context, token string) error
	TTL() time.Duration
}

type AuthHandler struct {
	accounts     Accounts
	sessions     SessionIssuer
	prom         *observability.Prom
	secureCookie bool
}

func NewAuthHandler(accounts Accounts, sessions SessionIssuer, prom *observability.Prom, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		accounts:     accounts,
		sessions:     sessions,
		prom:         prom,
		secureCookie: cfg.IsProd(),
	}
}

// Register creates the account and signs the new user in.
func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// bcrypt runs twice here, leave it room
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.accounts.Register(cctx, req)
	if err != nil {
		h.prom.ObserveAuth("register", authResult(err))
		respondAppError(ctx, "auth.register", err)
		return
	}

	if !h.startSession(ctx, cctx, u) {
		h.prom.ObserveAuth("register", "error")
		return
	}

	h.prom.ObserveAuth("register", "ok")
	ctx.JSON(http.StatusCreated, gin.H{"user": u})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}
	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.accounts.Verify(cctx, req.Email, req.Password)
	if err != nil {
		h.prom.ObserveAuth("login", authResult(err))

		if errors.Is(err, accounts.ErrInvalidCredentials) {
			RespondUnauthorized(ctx, "invalid_credentials", apperr.Message(err, "Invalid email or password."))
			return
		}

		respondAppError(ctx, "auth.login", err)
		return
	}

	if !h.startSession(ctx, cctx, u) {
		h.prom.ObserveAuth("login", "error")
		return
	}

	h.prom.ObserveAuth("login", "ok")
	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

// Logout always clears the cookie, even when the stored session is already gone.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	raw, _ := ctx.Cookie(middlewares.SessionCookieName)

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if err := h.sessions.Destroy(cctx, raw); err != nil {
		h.prom.ObserveAuth("logout", "error")
		slog.Default().ErrorContext(ctx.Request.Context(), "logout_failed",
			"request_id", requestIDFrom(ctx),
			"error", err,
		)
		RespondInternal(ctx, "Logout failed.")
		return
	}

	middlewares.ClearSessionCookie(ctx, h.secureCookie)
	h.prom.ObserveAuth("logout", "ok")
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Not authenticated.")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *AuthHandler) startSession(ctx *gin.Context, cctx context.Context, u user.User) bool {
	token, _, err := h.sessions.Create(cctx, u)
	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "session_create_failed",
			"user_id", u.ID,
			"request_id", requestIDFrom(ctx),
			"error", err,
		)
		RespondInternal(ctx, "Could not create session")
		return false
	}

	middlewares.SetSessionCookie(ctx, token, h.sessions.TTL(), h.secureCookie)
	return true
}

func authResult(err error) string {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return "invalid"
	case errors.Is(err, apperr.ErrAuth):
		return "denied"
	case errors.Is(err, apperr.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
