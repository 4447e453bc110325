package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/geocoder89/notesapp/internal/apperr"
	"github.com/geocoder89/notesapp/internal/domain/note"
	"github.com/geocoder89/notesapp/internal/export"
	"github.com/geocoder89/notesapp/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

func newExportRouter(repo *fakeNotesRepo) *gin.Engine {
	h := handlers.NewExportHandler(repo, export.Default(), nil, clock)

	r := gin.New()
	r.Use(asUser("owner-1"))
	r.GET("/api/notes/export", h.ExportDate)
	r.GET("/api/notes/:id/export", h.ExportNote)
	return r
}

func TestExportDateHandler(t *testing.T) {
	repo := &fakeNotesRepo{
		listFn: func(ctx context.Context, ownerID string) ([]note.Note, error) {
			return sampleNotes(), nil
		},
	}
	r := newExportRouter(repo)

	t.Run("json for today", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/notes/export?format=json", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
		}
		if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="notes-2026-10-14.json"`) {
			t.Fatalf("unexpected Content-Disposition %q", cd)
		}

		var doc export.Document
		if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if doc.Summary.Total != 1 || doc.Entries[0].ID != "a" {
			t.Fatalf("unexpected document: %+v", doc)
		}
	})

	t.Run("pdf by default", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/notes/export?date=2026-10-20", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
		}
		if w.Header().Get("Content-Type") != "application/pdf" {
			t.Fatalf("expected pdf content type, got %q", w.Header().Get("Content-Type"))
		}
		if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")) {
			t.Fatalf("body is not a pdf")
		}
	})

	t.Run("no notes on that day", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/notes/export?date=2026-01-01&format=xlsx", "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
		if got := decodeError(t, w).Error.Code; got != "empty_result" {
			t.Fatalf("expected empty_result, got %q", got)
		}
	})

	t.Run("bad date", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/notes/export?date=tomorrow", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/notes/export?format=docx", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestExportNoteHandler(t *testing.T) {
	repo := &fakeNotesRepo{
		getFn: func(ctx context.Context, ownerID, id string) (note.Note, error) {
			if id != "b" {
				return note.Note{}, apperr.NotFound("Note not found")
			}
			return sampleNotes()[1], nil
		},
	}
	r := newExportRouter(repo)

	w := doRequest(r, http.MethodGet, "/api/notes/b/export?format=xlsx", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, `note-b.xlsx`) {
		t.Fatalf("unexpected Content-Disposition %q", cd)
	}
	// xlsx is a zip container
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Fatalf("body is not an xlsx archive")
	}

	if w := doRequest(r, http.MethodGet, "/api/notes/zzz/export", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
