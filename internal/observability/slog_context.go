package observability

import (
	"context"
	"log/slog"

	"github.com/geocoder89/notesapp/internal/actorctx"
	"github.com/geocoder89/notesapp/internal/session"
	"go.opentelemetry.io/otel/trace"
)

// ContextHandler adds trace ids and the caller's session fingerprint from
// ctx to every record.
type ContextHandler struct {
	next slog.Handler
}

func NewContextHandler(next slog.Handler) *ContextHandler {
	return &ContextHandler{next: next}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx == nil {
		return h.next.Handle(ctx, r)
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	// raw session ids never reach the log
	if a, ok := actorctx.From(ctx); ok && a.SessionID != "" {
		r.AddAttrs(slog.String("session", session.Fingerprint(a.SessionID)))
	}

	return h.next.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{next: h.next.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{next: h.next.WithGroup(name)}
}
