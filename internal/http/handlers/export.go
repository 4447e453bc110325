package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/notesapp/internal/config"
	"github.com/geocoder89/notesapp/internal/domain/note"
	"github.com/geocoder89/notesapp/internal/export"
	"github.com/geocoder89/notesapp/internal/http/middlewares"
	"github.com/geocoder89/notesapp/internal/observability"
	"github.com/gin-gonic/gin"
)

type ExportHandler struct {
	repo NotesRepository
	svc  *export.Service
	prom *observability.Prom
	now  func() time.Time
}

func NewExportHandler(repo NotesRepository, svc *export.Service, prom *observability.Prom, now func() time.Time) *ExportHandler {
	if now == nil {
		now = time.Now
	}
	return &ExportHandler{repo: repo, svc: svc, prom: prom, now: now}
}

// ExportNote renders a single note. ?format=json|pdf|xlsx, pdf when omitted.
func (h *ExportHandler) ExportNote(ctx *gin.Context) {
	ownerID, id, ok := ownerAndNoteID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	n, err := h.repo.Get(cctx, ownerID, id)
	if err != nil {
		respondAppError(ctx, "export.note", err)
		return
	}

	doc, err := export.BuildForNote(n, h.now())
	if err != nil {
		respondAppError(ctx, "export.note", err)
		return
	}

	h.send(ctx, doc)
}

// ExportDate renders every note due on ?date=YYYY-MM-DD, today when omitted.
func (h *ExportHandler) ExportDate(ctx *gin.Context) {
	ownerID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Not authenticated.")
		return
	}

	now := h.now()
	day := note.DateOf(now)

	if raw := strings.TrimSpace(ctx.Query("date")); raw != "" {
		d, err := note.ParseDate(raw)
		if err != nil {
			RespondBadRequest(ctx, "date must be formatted as YYYY-MM-DD", gin.H{"field": "date"})
			return
		}
		day = d
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	notes, err := h.repo.List(cctx, ownerID)
	if err != nil {
		respondAppError(ctx, "export.date", err)
		return
	}

	doc, err := export.BuildForDate(notes, day, now)
	if err != nil {
		respondAppError(ctx, "export.date", err)
		return
	}

	h.send(ctx, doc)
}

func (h *ExportHandler) send(ctx *gin.Context, doc export.Document) {
	format := ctx.Query("format")

	body, r, err := h.svc.Render(format, doc)
	if err != nil {
		// unknown formats share one label
		label := "unknown"
		if r != nil {
			label = r.Format()
		}
		h.prom.ObserveExport(label, "error")
		respondAppError(ctx, "export.render", err)
		return
	}

	h.prom.ObserveExport(r.Format(), "ok")

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(doc, r)))
	ctx.Data(http.StatusOK, r.ContentType(), body)
}
