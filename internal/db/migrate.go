package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/notesapp/internal/db/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrator applies the embedded goose migrations over an existing pool.
type Migrator struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewMigrator(pool *pgxpool.Pool, log *slog.Logger) (Migrator, error) {
	if pool == nil {
		return Migrator{}, errors.New("nil pool provided")
	}
	if log == nil {
		log = slog.Default()
	}

	return Migrator{pool: pool, log: log}, nil
}

// Ensure applies pending migrations.
func (m Migrator) Ensure(ctx context.Context) error {
	return m.withDB(func(db *sql.DB) error {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		m.log.Info("applying migrations")
		if err := goose.UpContext(runCtx, db, "."); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		m.log.Info("migrations applied")
		return nil
	})
}

// Status reports applied and pending migrations.
func (m Migrator) Status(ctx context.Context) error {
	return m.withDB(func(db *sql.DB) error {
		if err := goose.StatusContext(ctx, db, "."); err != nil {
			return fmt.Errorf("migration status: %w", err)
		}
		return nil
	})
}

// Down rolls back the latest migration, or down to targetVersion when it is positive.
func (m Migrator) Down(ctx context.Context, targetVersion int64) error {
	return m.withDB(func(db *sql.DB) error {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		if targetVersion > 0 {
			m.log.Info("rolling back migrations", "target", targetVersion)
			if err := goose.DownToContext(runCtx, db, ".", targetVersion); err != nil {
				return fmt.Errorf("rollback to version %d: %w", targetVersion, err)
			}
		} else {
			m.log.Info("rolling back latest migration")
			if err := goose.DownContext(runCtx, db, "."); err != nil {
				return fmt.Errorf("rollback latest migration: %w", err)
			}
		}

		m.log.Info("rollback complete")
		return nil
	})
}

func (m Migrator) withDB(fn func(*sql.DB) error) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("configure goose: %w", err)
	}

	db := stdlib.OpenDBFromPool(m.pool)
	defer db.Close()

	return fn(db)
}
