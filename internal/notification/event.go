package notification

import "github.com/kazz187/wetracker/internal/task"

type EventKind string

const (
	KindTaskCreated   EventKind = "task_created"
	KindTaskAssigned  EventKind = "task_assigned"
	KindCommentAdded  EventKind = "comment_added"
	KindStatusChanged EventKind = "status_changed"
)

func (k EventKind) Valid() bool {
	switch k {
	case KindTaskCreated, KindTaskAssigned, KindCommentAdded, KindStatusChanged:
		return true
	}
	return false
}

// Data is the kind specific payload. Every field is optional; empty values
// fall back to what the task currently stores.
type Data struct {
	Priority  task.Priority `json:"priority,omitempty"`
	Comment   string        `json:"comment,omitempty"`
	NewStatus task.Status   `json:"newStatus,omitempty"`
}

// Event describes something that happened to a task. It lives for one
// dispatch and is never stored. An unknown Kind or an empty ActorID is not an
// error: the first notifies nobody, the second means no one is excluded.
type Event struct {
	Kind    EventKind `json:"type"`
	TaskID  string    `json:"taskId"`
	ActorID string    `json:"userId"`
	Data    Data      `json:"data"`
}
