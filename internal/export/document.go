// Package export builds downloadable documents from notes. Building is a pure
// function of the notes; rendering to a file format is done by a Renderer.
package export

import (
	"fmt"
	"slices"
	"time"

	"github.com/geocoder89/notesapp/internal/apperr"
	"github.com/geocoder89/notesapp/internal/domain/note"
)

const (
	timestampLayout = "Jan 2, 2006 3:04 PM"
	longDateLayout  = "Monday, January 2, 2006"
)

type Entry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	TaskDate  string `json:"taskDate"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Summary counts. Active is every note that is not archived.
type Summary struct {
	Total    int `json:"total"`
	Pinned   int `json:"pinned"`
	Archived int `json:"archived"`
	Active   int `json:"active"`
}

type Document struct {
	Title       string  `json:"title"`
	Slug        string  `json:"-"`
	GeneratedAt string  `json:"generatedAt"`
	Entries     []Entry `json:"entries"`
	Summary     Summary `json:"summary"`
}

// Build turns notes into a document in the given order. Timestamps are
// rendered in now's location.
func Build(title string, notes []note.Note, now time.Time) (Document, error) {
	if len(notes) == 0 {
		return Document{}, apperr.EmptyResult("No notes to export.")
	}

	doc := Document{
		Title:       title,
		Slug:        "notes",
		GeneratedAt: now.Format(timestampLayout),
		Entries:     make([]Entry, 0, len(notes)),
	}

	loc := now.Location()

	for _, n := range notes {
		doc.Entries = append(doc.Entries, Entry{
			ID:        n.ID,
			Title:     orDefault(n.Title, "Untitled"),
			Content:   orDefault(n.Content, "(Empty note)"),
			TaskDate:  TaskDateDisplay(n.TaskDate),
			Status:    StatusLabel(n),
			CreatedAt: n.CreatedAt.In(loc).Format(timestampLayout),
			UpdatedAt: n.UpdatedAt.In(loc).Format(timestampLayout),
		})

		doc.Summary.Total++
		if n.Pinned {
			doc.Summary.Pinned++
		}
		if n.Archived {
			doc.Summary.Archived++
		} else {
			doc.Summary.Active++
		}
	}

	return doc, nil
}

// BuildForDate exports the notes whose task date is d, pinned first and then
// oldest first.
func BuildForDate(notes []note.Note, d note.Date, now time.Time) (Document, error) {
	selected := make([]note.Note, 0)
	for _, n := range notes {
		if n.TaskDate != nil && *n.TaskDate == d {
			selected = append(selected, n)
		}
	}

	if len(selected) == 0 {
		return Document{}, apperr.EmptyResult(fmt.Sprintf("No notes found for %s.", d))
	}

	slices.SortStableFunc(selected, func(a, b note.Note) int {
		if a.Pinned != b.Pinned {
			if a.Pinned {
				return -1
			}
			return 1
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	doc, err := Build("Notes for "+d.Time().Format(longDateLayout), selected, now)
	if err != nil {
		return Document{}, err
	}
	doc.Slug = "notes-" + d.String()

	return doc, nil
}

func BuildForNote(n note.Note, now time.Time) (Document, error) {
	doc, err := Build(orDefault(n.Title, "Untitled"), []note.Note{n}, now)
	if err != nil {
		return Document{}, err
	}
	doc.Slug = "note-" + n.ID

	return doc, nil
}

func StatusLabel(n note.Note) string {
	switch {
	case n.Pinned && n.Archived:
		return "Pinned, Archived"
	case n.Pinned:
		return "Pinned"
	case n.Archived:
		return "Archived"
	default:
		return "Active"
	}
}

func TaskDateDisplay(d *note.Date) string {
	if d == nil {
		return "No date"
	}
	return d.Time().Format(longDateLayout)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
