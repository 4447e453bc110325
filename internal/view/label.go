package view

import (
	"fmt"
	"time"

	"github.com/geocoder89/notesapp/internal/domain/note"
)

const labelHorizonDays = 7

// RelativeLabel describes d relative to the calendar day of now. It is for
// display only.
func RelativeLabel(d *note.Date, now time.Time) string {
	if d == nil {
		return "No date"
	}

	offset := note.DateOf(now).DaysUntil(*d)

	switch {
	case offset == 0:
		return "Today"
	case offset == 1:
		return "Tomorrow"
	case offset == -1:
		return "Yesterday"
	case offset > 1 && offset <= labelHorizonDays:
		return fmt.Sprintf("In %d days", offset)
	case offset < -1 && offset >= -labelHorizonDays:
		return fmt.Sprintf("%d days ago", -offset)
	default:
		return d.Time().Format("Jan 2, 2006")
	}
}

type Item struct {
	note.Note
	TaskDateLabel string `json:"taskDateLabel"`
}

// Labeled pairs each note with its relative task date label.
func Labeled(notes []note.Note, now time.Time) []Item {
	out := make([]Item, 0, len(notes))
	for _, n := range notes {
		out = append(out, Item{Note: n, TaskDateLabel: RelativeLabel(n.TaskDate, now)})
	}
	return out
}
