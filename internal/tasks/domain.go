package tasks

import (
	"time"

	"github.com/google/uuid"
)

// Status enumerates task states.
type Status string

const (
	// StatusOpen marks a task awaiting work.
	StatusOpen Status = "OPEN"
	// StatusInProgress marks a task being worked.
	StatusInProgress Status = "IN_PROGRESS"
	// StatusDone marks a completed task.
	StatusDone Status = "DONE"
)

// Task is a unit of site work assigned down the role hierarchy.
type Task struct {
	ID           uuid.UUID
	Site         string
	Title        string
	Status       Status
	CreatorID    int64
	CreatorRole  string
	AssigneeID   int64
	AssigneeRole string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
