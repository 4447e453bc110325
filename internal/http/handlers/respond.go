package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/notesapp/internal/actorctx"
	"github.com/geocoder89/notesapp/internal/apperr"
	"github.com/geocoder89/notesapp/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	if s := ctx.GetString(middlewares.CtxRequestID); s != "" {
		return s
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

func RespondUnauthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

// respondAppError maps an apperr kind to its status and code. Storage
// failures are logged with their cause and answered with a generic message.
func respondAppError(ctx *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		RespondBadRequest(ctx, apperr.Message(err, "Invalid request"), nil)
	case errors.Is(err, apperr.ErrConflict):
		RespondConflict(ctx, "conflict", apperr.Message(err, "Conflict"))
	case errors.Is(err, apperr.ErrAuth):
		RespondUnauthorized(ctx, "unauthorized", apperr.Message(err, "Not authenticated."))
	case errors.Is(err, apperr.ErrNotFound):
		RespondNotFound(ctx, apperr.Message(err, "Not found"))
	case errors.Is(err, apperr.ErrEmptyResult):
		RespondError(ctx, http.StatusNotFound, "empty_result", apperr.Message(err, "Nothing to export."), nil)
	default:
		attrs := []any{
			"op", op,
			"request_id", requestIDFrom(ctx),
			"error", err,
		}
		if userID, ok := actorctx.UserIDFrom(ctx.Request.Context()); ok {
			attrs = append(attrs, "user_id", userID)
		}
		if noteID := ctx.GetString(middlewares.CtxNoteID); noteID != "" {
			attrs = append(attrs, "note_id", noteID)
		}

		slog.Default().ErrorContext(ctx.Request.Context(), "request_failed", attrs...)
		RespondInternal(ctx, "Something went wrong. Please try again.")
	}
}
