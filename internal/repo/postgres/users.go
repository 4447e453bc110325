package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/notesapp/internal/apperr"
	"github.com/geocoder89/notesapp/internal/domain/user"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var errUserNotFound = apperr.NotFound("user not found")

type UsersRepo struct {
	pool *pgxpool.Pool
	obs  Observer
}

func NewUsersRepo(pool *pgxpool.Pool, obs Observer) *UsersRepo {
	return &UsersRepo{pool: pool, obs: orNoop(obs)}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	var out user.User

	err := r.obs.ObserveDB("users.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO users (id, name, email, password_hash, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, name, email, password_hash, created_at`,
			u.ID, u.Name, user.NormalizeEmail(u.Email), u.PasswordHash, u.CreatedAt,
		).Scan(&out.ID, &out.Name, &out.Email, &out.PasswordHash, &out.CreatedAt)
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user.User{}, apperr.Conflict("email already registered")
		}
		return user.User{}, apperr.Storage("users.create", err)
	}

	return out, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_email",
		`SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE lower(email) = $1`,
		user.NormalizeEmail(email),
	)
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, errUserNotFound
	}

	return r.getOne(ctx, "users.get_by_id",
		`SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE id = $1`,
		id,
	)
}

func (r *UsersRepo) getOne(ctx context.Context, op, query string, arg any) (user.User, error) {
	var u user.User

	err := r.obs.ObserveDB(op, func() error {
		return r.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, errUserNotFound
		}
		return user.User{}, apperr.Storage(op, err)
	}

	return u, nil
}
