// Package view turns a user's notes into the ordered sequence a client
// displays. Everything here is a pure function of its inputs.
package view

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/geocoder89/notesapp/internal/apperr"
	"github.com/geocoder89/notesapp/internal/domain/note"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type DateFilter string

const (
	DateAll       DateFilter = "all"
	DateToday     DateFilter = "today"
	DateThisWeek  DateFilter = "thisWeek"
	DateThisMonth DateFilter = "thisMonth"
)

type SortKey string

const (
	SortLatest       SortKey = "latest"
	SortOldest       SortKey = "oldest"
	SortTitle        SortKey = "title"
	SortTaskDateAsc  SortKey = "taskDateAsc"
	SortTaskDateDesc SortKey = "taskDateDesc"
)

type Query struct {
	Text         string
	Date         DateFilter
	Sort         SortKey
	HideArchived bool
}

// undated notes sort as if they were due on this day
var epoch = note.Date{Year: 1970, Month: time.January, Day: 1}

func ParseDateFilter(s string) (DateFilter, error) {
	switch f := DateFilter(strings.TrimSpace(s)); f {
	case "", DateAll:
		return DateAll, nil
	case DateToday, DateThisWeek, DateThisMonth:
		return f, nil
	default:
		return "", apperr.Validation("date filter must be one of all, today, thisWeek, thisMonth")
	}
}

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case "":
		return SortLatest, nil
	case SortLatest, SortOldest, SortTitle, SortTaskDateAsc, SortTaskDateDesc:
		return k, nil
	default:
		return "", apperr.Validation("sort must be one of latest, oldest, title, taskDateAsc, taskDateDesc")
	}
}

// Apply filters by text and date window, sorts by q.Sort and then moves
// pinned notes ahead of the rest, keeping relative order inside both groups.
// The input slice is never modified.
func Apply(notes []note.Note, q Query, now time.Time) []note.Note {
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	inWindow := windowFor(q.Date, note.DateOf(now))

	out := make([]note.Note, 0, len(notes))
	for _, n := range notes {
		if q.HideArchived && n.Archived {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(n.Title+" "+n.Content), needle) {
			continue
		}
		if !inWindow(n.TaskDate) {
			continue
		}
		out = append(out, n)
	}

	sortNotes(out, q.Sort)

	return pinnedFirst(out)
}

func windowFor(f DateFilter, today note.Date) func(*note.Date) bool {
	var from, to note.Date

	switch f {
	case DateToday:
		from, to = today, today
	case DateThisWeek:
		from = today.AddDays(-int(today.Weekday()))
		to = from.AddDays(6)
	case DateThisMonth:
		from = note.Date{Year: today.Year, Month: today.Month, Day: 1}
		to = note.DateOf(from.Time().AddDate(0, 1, -1))
	default:
		return func(*note.Date) bool { return true }
	}

	return func(d *note.Date) bool {
		if d == nil {
			return false
		}
		return !d.Before(from) && !d.After(to)
	}
}

func sortNotes(notes []note.Note, key SortKey) {
	switch key {
	case SortOldest:
		slices.SortStableFunc(notes, func(a, b note.Note) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
	case SortTitle:
		c := collate.New(language.Und)
		slices.SortStableFunc(notes, func(a, b note.Note) int {
			return c.CompareString(a.Title, b.Title)
		})
	case SortTaskDateAsc:
		slices.SortStableFunc(notes, func(a, b note.Note) int {
			return compareDates(taskDateOrEpoch(a), taskDateOrEpoch(b))
		})
	case SortTaskDateDesc:
		slices.SortStableFunc(notes, func(a, b note.Note) int {
			return compareDates(taskDateOrEpoch(b), taskDateOrEpoch(a))
		})
	default:
		slices.SortStableFunc(notes, func(a, b note.Note) int {
			return b.UpdatedAt.Compare(a.UpdatedAt)
		})
	}
}

func pinnedFirst(notes []note.Note) []note.Note {
	out := make([]note.Note, 0, len(notes))
	for _, n := range notes {
		if n.Pinned {
			out = append(out, n)
		}
	}
	for _, n := range notes {
		if !n.Pinned {
			out = append(out, n)
		}
	}
	return out
}

func taskDateOrEpoch(n note.Note) note.Date {
	if n.TaskDate == nil {
		return epoch
	}
	return *n.TaskDate
}

func compareDates(a, b note.Date) int {
	return cmp.Compare(a.Time().Unix(), b.Time().Unix())
}
