package db

import (
	"context"
	"errors"

	"github.com/geocoder89/notesapp/internal/accounts"
	"github.com/geocoder89/notesapp/internal/apperr"
	"github.com/geocoder89/notesapp/internal/config"
	"github.com/geocoder89/notesapp/internal/domain/user"
)

// EnsureSeedUser registers the configured seed account unless it already exists.
func EnsureSeedUser(ctx context.Context, svc *accounts.Service, cfg config.Config) error {
	if cfg.SeedEmail == "" || cfg.SeedPassword == "" {
		return nil
	}

	_, err := svc.Register(ctx, user.RegisterRequest{
		Name:            cfg.SeedName,
		Email:           cfg.SeedEmail,
		Password:        cfg.SeedPassword,
		PasswordConfirm: cfg.SeedPassword,
	})

	if errors.Is(err, apperr.ErrConflict) {
		return nil
	}

	return err
}
