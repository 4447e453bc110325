package note

import (
	"strings"
	"time"
)

type Note struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"-"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	TaskDate  *Date     `json:"taskDate"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Pinned    bool      `json:"pinned"`
	Archived  bool      `json:"archived"`
}

type CreateRequest struct {
	Title    string `json:"title" binding:"max=255"`
	Content  string `json:"content" binding:"max=50000"`
	TaskDate *Date  `json:"taskDate"`
}

// PatchRequest holds the fields to change. A nil field keeps the stored value.
type PatchRequest struct {
	Title    *string `json:"title" binding:"omitempty,max=255"`
	Content  *string `json:"content" binding:"omitempty,max=50000"`
	Pinned   *bool   `json:"pinned"`
	Archived *bool   `json:"archived"`
	TaskDate *Date   `json:"taskDate"`
}

// Normalize trims the text fields of a create request.
func (r CreateRequest) Normalize() CreateRequest {
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)
	return r
}

func (r CreateRequest) IsBlank() bool {
	n := r.Normalize()
	return n.Title == "" && n.Content == ""
}

// Normalize trims the text fields that are present.
func (r PatchRequest) Normalize() PatchRequest {
	if r.Title != nil {
		t := strings.TrimSpace(*r.Title)
		r.Title = &t
	}
	if r.Content != nil {
		c := strings.TrimSpace(*r.Content)
		r.Content = &c
	}
	return r
}

// Apply returns n with the present fields of r copied over. UpdatedAt is left
// to the caller.
func (r PatchRequest) Apply(n Note) Note {
	if r.Title != nil {
		n.Title = *r.Title
	}
	if r.Content != nil {
		n.Content = *r.Content
	}
	if r.Pinned != nil {
		n.Pinned = *r.Pinned
	}
	if r.Archived != nil {
		n.Archived = *r.Archived
	}
	if r.TaskDate != nil {
		d := *r.TaskDate
		n.TaskDate = &d
	}
	return n
}
