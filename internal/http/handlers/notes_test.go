package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/notesapp/internal/apperr"
	"github.com/geocoder89/notesapp/internal/domain/note"
	"github.com/geocoder89/notesapp/internal/http/handlers"
	"github.com/geocoder89/notesapp/internal/view"
)

func sampleNotes() []note.Note {
	base := fixedNow.Add(-72 * time.Hour)
	return []note.Note{
		{ID: "a", OwnerID: "owner-1", Title: "Groceries", Content: "milk", TaskDate: datePtr(2026, time.October, 14), CreatedAt: base, UpdatedAt: base},
		{ID: "b", OwnerID: "owner-1", Title: "Dentist", Content: "call", TaskDate: datePtr(2026, time.October, 20), CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour), Pinned: true},
		{ID: "c", OwnerID: "owner-1", Title: "Old plan", Content: "milk run", CreatedAt: base.Add(2 * time.Hour), UpdatedAt: base.Add(2 * time.Hour), Archived: true},
	}
}

func TestListNotesHandler(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		repoSetUp      func(*fakeNotesRepo)
		wantStatusCode int
		wantIDs        []string
		wantCode       string
	}{
		{
			name:           "default order puts pinned first then latest",
			target:         "/api/notes",
			wantStatusCode: http.StatusOK,
			wantIDs:        []string{"b", "c", "a"},
		},
		{
			name:           "text filter",
			target:         "/api/notes?q=MILK",
			wantStatusCode: http.StatusOK,
			wantIDs:        []string{"c", "a"},
		},
		{
			name:           "hide archived",
			target:         "/api/notes?q=milk&hideArchived=true",
			wantStatusCode: http.StatusOK,
			wantIDs:        []string{"a"},
		},
		{
			name:           "today filter",
			target:         "/api/notes?date=today",
			wantStatusCode: http.StatusOK,
			wantIDs:        []string{"a"},
		},
		{
			name:           "bad sort key",
			target:         "/api/notes?sort=random",
			wantStatusCode: http.StatusBadRequest,
			wantCode:       "invalid_request",
		},
		{
			name:   "storage failure",
			target: "/api/notes",
			repoSetUp: func(f *fakeNotesRepo) {
				f.listFn = func(ctx context.Context, ownerID string) ([]note.Note, error) {
					return nil, apperr.Storage("notes.list", errors.New("connection refused"))
				}
			},
			wantStatusCode: http.StatusInternalServerError,
			wantCode:       "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeNotesRepo{
				listFn: func(ctx context.Context, ownerID string) ([]note.Note, error) {
					if ownerID != "owner-1" {
						t.Fatalf("expected owner-1, got %q", ownerID)
					}
					return sampleNotes(), nil
				},
			}
			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewNotesHandler(repo, clock)
			r := setupRouter(http.MethodGet, "/api/notes", h.List)

			w := doRequest(r, http.MethodGet, tt.target, "")

			if w.Code != tt.wantStatusCode {
				t.Fatalf("expected status %d, got %d, body=%s", tt.wantStatusCode, w.Code, w.Body.String())
			}

			if tt.wantCode != "" {
				if got := decodeError(t, w).Error.Code; got != tt.wantCode {
					t.Fatalf("expected code %q, got %q", tt.wantCode, got)
				}
				return
			}

			var got []note.Note
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}

			if len(got) != len(tt.wantIDs) {
				t.Fatalf("expected %d notes, got %d", len(tt.wantIDs), len(got))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Fatalf("position %d: expected %q, got %q", i, id, got[i].ID)
				}
			}
		})
	}
}

func TestListNotesHandler_ETag(t *testing.T) {
	repo := &fakeNotesRepo{
		listFn: func(ctx context.Context, ownerID string) ([]note.Note, error) {
			return sampleNotes(), nil
		},
	}
	h := handlers.NewNotesHandler(repo, clock)
	r := setupRouter(http.MethodGet, "/api/notes", h.List)

	first := doRequest(r, http.MethodGet, "/api/notes", "")
	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected an ETag header")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
	req.Header.Set("If-None-Match", etag)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", w.Code)
	}
}

func TestViewNotesHandler(t *testing.T) {
	repo := &fakeNotesRepo{
		listFn: func(ctx context.Context, ownerID string) ([]note.Note, error) {
			return sampleNotes(), nil
		},
	}
	h := handlers.NewNotesHandler(repo, clock)
	r := setupRouter(http.MethodGet, "/api/notes/view", h.View)

	w := doRequest(r, http.MethodGet, "/api/notes/view?sort=taskDateAsc", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	var body struct {
		Items []view.Item `json:"items"`
		Count int         `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if body.Count != 3 {
		t.Fatalf("expected count 3, got %d", body.Count)
	}

	labels := map[string]string{}
	for _, it := range body.Items {
		labels[it.ID] = it.TaskDateLabel
	}

	want := map[string]string{"a": "Today", "b": "In 6 days", "c": "No date"}
	for id, label := range want {
		if labels[id] != label {
			t.Fatalf("note %s: expected label %q, got %q", id, label, labels[id])
		}
	}
}

func TestCreateNoteHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*testing.T, *fakeNotesRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"title":"  Groceries ","content":"milk","taskDate":"2026-10-15"}`,
			repoSetUp: func(t *testing.T, f *fakeNotesRepo) {
				f.createFn = func(ctx context.Context, ownerID string, req note.CreateRequest) (note.Note, error) {
					if req.TaskDate == nil || req.TaskDate.String() != "2026-10-15" {
						t.Fatalf("expected task date to be decoded, got %v", req.TaskDate)
					}
					return note.New(ownerID, req, fixedNow), nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "blank note",
			body:           `{"title":"   ","content":""}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "bad task date",
			body:           `{"title":"x","taskDate":"15/10/2026"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "invalid json",
			body:           `{"title":`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repository failure",
			body: `{"title":"x"}`,
			repoSetUp: func(t *testing.T, f *fakeNotesRepo) {
				f.createFn = func(ctx context.Context, ownerID string, req note.CreateRequest) (note.Note, error) {
					return note.Note{}, apperr.Storage("notes.create", errors.New("disk full"))
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeNotesRepo{
				createFn: func(ctx context.Context, ownerID string, req note.CreateRequest) (note.Note, error) {
					t.Fatalf("repository must not be called")
					return note.Note{}, nil
				},
			}
			if tt.repoSetUp != nil {
				tt.repoSetUp(t, repo)
			}

			h := handlers.NewNotesHandler(repo, clock)
			r := setupRouter(http.MethodPost, "/api/notes", h.Create)

			w := doRequest(r, http.MethodPost, "/api/notes", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("expected status %d, got %d, body=%s", tt.wantStatusCode, w.Code, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusCreated {
				var got note.Note
				if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
					t.Fatalf("failed to decode body: %v", err)
				}
				if got.Title != "Groceries" || got.Pinned || got.Archived {
					t.Fatalf("unexpected note: %+v", got)
				}
				if !got.CreatedAt.Equal(got.UpdatedAt) {
					t.Fatalf("expected createdAt == updatedAt")
				}
			}
		})
	}
}

func TestUpdateNoteHandler(t *testing.T) {
	t.Run("partial update passes only present fields", func(t *testing.T) {
		repo := &fakeNotesRepo{
			patchFn: func(ctx context.Context, ownerID, id string, req note.PatchRequest) (note.Note, error) {
				if ownerID != "owner-1" || id != "a" {
					t.Fatalf("unexpected owner/id %q/%q", ownerID, id)
				}
				if req.Pinned == nil || !*req.Pinned {
					t.Fatalf("expected pinned=true")
				}
				if req.Title != nil || req.Content != nil || req.Archived != nil || req.TaskDate != nil {
					t.Fatalf("expected other fields absent, got %+v", req)
				}
				n := sampleNotes()[0]
				return req.Apply(n), nil
			},
		}
		h := handlers.NewNotesHandler(repo, clock)
		r := setupRouter(http.MethodPut, "/api/notes/:id", h.Update)

		w := doRequest(r, http.MethodPut, "/api/notes/a", `{"pinned":true}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("foreign or missing note", func(t *testing.T) {
		repo := &fakeNotesRepo{
			patchFn: func(ctx context.Context, ownerID, id string, req note.PatchRequest) (note.Note, error) {
				return note.Note{}, apperr.NotFound("Note not found")
			},
		}
		h := handlers.NewNotesHandler(repo, clock)
		r := setupRouter(http.MethodPut, "/api/notes/:id", h.Update)

		w := doRequest(r, http.MethodPut, "/api/notes/zzz", `{"title":"x"}`)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
		if got := decodeError(t, w); got.Error.Code != "not_found" || got.Error.Message != "Note not found" {
			t.Fatalf("unexpected error body: %+v", got)
		}
	})
}

func TestDeleteNoteHandler(t *testing.T) {
	deleted := ""
	repo := &fakeNotesRepo{
		removeFn: func(ctx context.Context, ownerID, id string) error {
			if id == "missing" {
				return apperr.NotFound("Note not found")
			}
			deleted = id
			return nil
		},
	}
	h := handlers.NewNotesHandler(repo, clock)
	r := setupRouter(http.MethodDelete, "/api/notes/:id", h.Delete)

	if w := doRequest(r, http.MethodDelete, "/api/notes/a", ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if deleted != "a" {
		t.Fatalf("expected note a to be removed, got %q", deleted)
	}

	if w := doRequest(r, http.MethodDelete, "/api/notes/missing", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetNoteHandler(t *testing.T) {
	repo := &fakeNotesRepo{
		getFn: func(ctx context.Context, ownerID, id string) (note.Note, error) {
			for _, n := range sampleNotes() {
				if n.ID == id {
					return n, nil
				}
			}
			return note.Note{}, apperr.NotFound("Note not found")
		},
	}
	h := handlers.NewNotesHandler(repo, clock)
	r := setupRouter(http.MethodGet, "/api/notes/:id", h.Get)

	w := doRequest(r, http.MethodGet, "/api/notes/b", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var got map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if got["taskDate"] != "2026-10-20" {
		t.Fatalf("expected taskDate 2026-10-20, got %v", got["taskDate"])
	}
	if _, leaked := got["OwnerID"]; leaked {
		t.Fatalf("owner id must not be serialized")
	}

	if w := doRequest(r, http.MethodGet, "/api/notes/nope", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
