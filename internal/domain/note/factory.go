package note

import (
	"time"

	"github.com/google/uuid"
)

// New builds a fresh note owned by ownerID. The task date defaults to the
// calendar day of now.
func New(ownerID string, req CreateRequest, now time.Time) Note {
	req = req.Normalize()

	taskDate := DateOf(now)
	if req.TaskDate != nil {
		taskDate = *req.TaskDate
	}

	return Note{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     req.Title,
		Content:   req.Content,
		TaskDate:  &taskDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NextUpdatedAt keeps updatedAt strictly increasing even when the clock has
// not moved since the previous write.
func NextUpdatedAt(prev, now time.Time) time.Time {
	if !now.After(prev) {
		return prev.Add(time.Microsecond)
	}
	return now
}
