package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/notesapp/internal/apperr"
	"github.com/geocoder89/notesapp/internal/domain/note"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var errNoteNotFound = apperr.NotFound("Note not found")

const noteColumns = `id, user_id, title, content, task_date, pinned, archived, created_at, updated_at`

type NotesRepo struct {
	pool *pgxpool.Pool
	obs  Observer
	now  func() time.Time
}

func NewNotesRepo(pool *pgxpool.Pool, obs Observer) *NotesRepo {
	return &NotesRepo{pool: pool, obs: orNoop(obs), now: time.Now}
}

func (r *NotesRepo) List(ctx context.Context, ownerID string) ([]note.Note, error) {
	out := make([]note.Note, 0)

	if _, err := uuid.Parse(ownerID); err != nil {
		return out, nil
	}

	err := r.obs.ObserveDB("notes.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+noteColumns+`
			FROM notes
			WHERE user_id = $1
			ORDER BY created_at DESC`,
			ownerID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			n, err := scanNote(rows)
			if err != nil {
				return err
			}
			out = append(out, n)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, apperr.Storage("notes.list", err)
	}

	return out, nil
}

func (r *NotesRepo) Get(ctx context.Context, ownerID, id string) (note.Note, error) {
	if !validIDs(ownerID, id) {
		return note.Note{}, errNoteNotFound
	}

	var n note.Note
	err := r.obs.ObserveDB("notes.get", func() error {
		var err error
		n, err = scanNote(r.pool.QueryRow(ctx,
			`SELECT `+noteColumns+` FROM notes WHERE id = $1 AND user_id = $2`,
			id, ownerID,
		))
		return err
	})

	return n, notFoundOrStorage("notes.get", err)
}

func (r *NotesRepo) Create(ctx context.Context, ownerID string, req note.CreateRequest) (note.Note, error) {
	// postgres keeps microseconds, match it so the returned note equals the stored one
	n := note.New(ownerID, req, r.now().UTC().Truncate(time.Microsecond))

	err := r.obs.ObserveDB("notes.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO notes (`+noteColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			n.ID, n.OwnerID, n.Title, n.Content, dateParam(n.TaskDate), n.Pinned, n.Archived, n.CreatedAt, n.UpdatedAt,
		)
		return err
	})

	if err != nil {
		return note.Note{}, apperr.Storage("notes.create", err)
	}

	return n, nil
}

// Patch applies only the fields present in req. updated_at always moves
// forward, even within one clock tick.
func (r *NotesRepo) Patch(ctx context.Context, ownerID, id string, req note.PatchRequest) (note.Note, error) {
	if !validIDs(ownerID, id) {
		return note.Note{}, errNoteNotFound
	}

	req = req.Normalize()

	var n note.Note
	err := r.obs.ObserveDB("notes.patch", func() error {
		var err error
		n, err = scanNote(r.pool.QueryRow(ctx,
			`UPDATE notes
			SET title = COALESCE($3, title),
				content = COALESCE($4, content),
				pinned = COALESCE($5, pinned),
				archived = COALESCE($6, archived),
				task_date = COALESCE($7, task_date),
				updated_at = GREATEST(now(), updated_at + interval '1 microsecond')
			WHERE id = $1 AND user_id = $2
			RETURNING `+noteColumns,
			id, ownerID, req.Title, req.Content, req.Pinned, req.Archived, dateParam(req.TaskDate),
		))
		return err
	})

	return n, notFoundOrStorage("notes.patch", err)
}

func (r *NotesRepo) Remove(ctx context.Context, ownerID, id string) error {
	if !validIDs(ownerID, id) {
		return errNoteNotFound
	}

	var affected int64
	err := r.obs.ObserveDB("notes.remove", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, ownerID)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return apperr.Storage("notes.remove", err)
	}

	// if no rows were deleted as a result return a not found error
	if affected == 0 {
		return errNoteNotFound
	}

	return nil
}

func scanNote(row pgx.Row) (note.Note, error) {
	var (
		n        note.Note
		taskDate pgtype.Date
	)

	err := row.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &taskDate, &n.Pinned, &n.Archived, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return note.Note{}, err
	}

	if taskDate.Valid {
		d := note.DateOf(taskDate.Time)
		n.TaskDate = &d
	}

	return n, nil
}

func dateParam(d *note.Date) pgtype.Date {
	if d == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: d.Time(), Valid: true}
}

func notFoundOrStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return errNoteNotFound
	}
	return apperr.Storage(op, err)
}

// ids that are not uuids cannot exist, skip the round trip
func validIDs(ids ...string) bool {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return false
		}
	}
	return true
}
