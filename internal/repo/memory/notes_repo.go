package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/notesapp/internal/apperr"
	"github.com/geocoder89/notesapp/internal/domain/note"
)

var errNoteNotFound = apperr.NotFound("Note not found")

// NotesRepo keeps notes in process memory. It satisfies the same contract as
// the postgres repository and backs tests and DB-less local runs.
type NotesRepo struct {
	mu    sync.RWMutex
	items map[string]note.Note
	now   func() time.Time
}

func NewNotesRepo() *NotesRepo {
	return NewNotesRepoWithClock(time.Now)
}

func NewNotesRepoWithClock(now func() time.Time) *NotesRepo {
	return &NotesRepo{
		items: make(map[string]note.Note),
		now:   now,
	}
}

func (r *NotesRepo) List(ctx context.Context, ownerID string) ([]note.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]note.Note, 0)
	for _, n := range r.items {
		if n.OwnerID == ownerID {
			out = append(out, copyNote(n))
		}
	}

	return out, nil
}

func (r *NotesRepo) Get(ctx context.Context, ownerID, id string) (note.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.items[id]
	if !ok || n.OwnerID != ownerID {
		return note.Note{}, errNoteNotFound
	}

	return copyNote(n), nil
}

func (r *NotesRepo) Create(ctx context.Context, ownerID string, req note.CreateRequest) (note.Note, error) {
	n := note.New(ownerID, req, r.now())

	r.mu.Lock()
	r.items[n.ID] = n
	r.mu.Unlock()

	return copyNote(n), nil
}

func (r *NotesRepo) Patch(ctx context.Context, ownerID, id string, req note.PatchRequest) (note.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]
	if !ok || n.OwnerID != ownerID {
		return note.Note{}, errNoteNotFound
	}

	updated := req.Normalize().Apply(n)
	updated.UpdatedAt = note.NextUpdatedAt(n.UpdatedAt, r.now())
	r.items[id] = updated

	return copyNote(updated), nil
}

func (r *NotesRepo) Remove(ctx context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]
	if !ok || n.OwnerID != ownerID {
		return errNoteNotFound
	}

	delete(r.items, id)

	return nil
}

// RemoveOwner drops every note of ownerID, mirroring the cascade on user delete.
func (r *NotesRepo) RemoveOwner(ownerID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, n := range r.items {
		if n.OwnerID == ownerID {
			delete(r.items, id)
			removed++
		}
	}

	return removed
}

// copy the task date so callers never alias stored state
func copyNote(n note.Note) note.Note {
	if n.TaskDate != nil {
		d := *n.TaskDate
		n.TaskDate = &d
	}
	return n
}
