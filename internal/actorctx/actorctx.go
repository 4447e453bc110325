// Package actorctx carries the authenticated actor on a context.Context so
// code below the HTTP layer can log who triggered an operation.
package actorctx

import (
	"context"

	"github.com/geocoder89/notesapp/internal/session"
)

type ctxKey struct{}

func WithActor(ctx context.Context, a session.Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func From(ctx context.Context) (session.Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(session.Actor)
	return a, ok && a.UserID != ""
}

func UserIDFrom(ctx context.Context) (string, bool) {
	a, ok := From(ctx)
	return a.UserID, ok
}
