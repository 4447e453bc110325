package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/notesapp/internal/config"
	"github.com/geocoder89/notesapp/internal/domain/note"
	"github.com/geocoder89/notesapp/internal/http/middlewares"
	"github.com/geocoder89/notesapp/internal/view"
	"github.com/gin-gonic/gin"
)

// NotesRepository is scoped by owner on every call. Implementations return
// apperr kinds.
type NotesRepository interface {
	List(ctx context.Context, ownerID string) ([]note.Note, error)
	Get(ctx context.Context, ownerID, id string) (note.Note, error)
	Create(ctx context.Context, ownerID string, req note.CreateRequest) (note.Note, error)
	Patch(ctx context.Context, ownerID, id string, req note.PatchRequest) (note.Note, error)
	Remove(ctx context.Context, ownerID, id string) error
}

type NotesHandler struct {
	repo NotesRepository
	now  func() time.Time
}

func NewNotesHandler(repo NotesRepository, now func() time.Time) *NotesHandler {
	if now == nil {
		now = time.Now
	}
	return &NotesHandler{repo: repo, now: now}
}

// List returns the caller's notes in view order.
func (h *NotesHandler) List(ctx *gin.Context) {
	notes, ok := h.viewNotes(ctx)
	if !ok {
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, notes)
}

// View is List plus a relative label for each task date.
func (h *NotesHandler) View(ctx *gin.Context) {
	notes, ok := h.viewNotes(ctx)
	if !ok {
		return
	}

	items := view.Labeled(notes, h.now())

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *NotesHandler) Get(ctx *gin.Context) {
	ownerID, id, ok := ownerAndNoteID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	n, err := h.repo.Get(cctx, ownerID, id)
	if err != nil {
		respondAppError(ctx, "notes.get", err)
		return
	}

	ctx.JSON(http.StatusOK, n)
}

func (h *NotesHandler) Create(ctx *gin.Context) {
	ownerID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Not authenticated.")
		return
	}

	var req note.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.IsBlank() {
		RespondBadRequest(ctx, "A note needs a title or some content.", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	n, err := h.repo.Create(cctx, ownerID, req)
	if err != nil {
		respondAppError(ctx, "notes.create", err)
		return
	}

	ctx.Set(middlewares.CtxNoteID, n.ID)
	ctx.JSON(http.StatusCreated, n)
}

// Update applies a partial change; omitted fields keep their stored values.
func (h *NotesHandler) Update(ctx *gin.Context) {
	ownerID, id, ok := ownerAndNoteID(ctx)
	if !ok {
		return
	}

	var req note.PatchRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	n, err := h.repo.Patch(cctx, ownerID, id, req)
	if err != nil {
		respondAppError(ctx, "notes.patch", err)
		return
	}

	ctx.JSON(http.StatusOK, n)
}

func (h *NotesHandler) Delete(ctx *gin.Context) {
	ownerID, id, ok := ownerAndNoteID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.repo.Remove(cctx, ownerID, id); err != nil {
		respondAppError(ctx, "notes.remove", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *NotesHandler) viewNotes(ctx *gin.Context) ([]note.Note, bool) {
	ownerID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Not authenticated.")
		return nil, false
	}

	q, err := parseViewQuery(ctx)
	if err != nil {
		respondAppError(ctx, "notes.list", err)
		return nil, false
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	notes, err := h.repo.List(cctx, ownerID)
	if err != nil {
		respondAppError(ctx, "notes.list", err)
		return nil, false
	}

	return view.Apply(notes, q, h.now()), true
}

func parseViewQuery(ctx *gin.Context) (view.Query, error) {
	date, err := view.ParseDateFilter(ctx.Query("date"))
	if err != nil {
		return view.Query{}, err
	}

	sort, err := view.ParseSortKey(ctx.Query("sort"))
	if err != nil {
		return view.Query{}, err
	}

	hide := false
	if raw := strings.TrimSpace(ctx.Query("hideArchived")); raw != "" {
		// anything unparsable is treated as false
		hide, _ = strconv.ParseBool(raw)
	}

	return view.Query{
		Text:         ctx.Query("q"),
		Date:         date,
		Sort:         sort,
		HideArchived: hide,
	}, nil
}

func ownerAndNoteID(ctx *gin.Context) (string, string, bool) {
	ownerID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Not authenticated.")
		return "", "", false
	}

	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		RespondNotFound(ctx, "Note not found")
		return "", "", false
	}

	ctx.Set(middlewares.CtxNoteID, id)
	return ownerID, id, true
}
