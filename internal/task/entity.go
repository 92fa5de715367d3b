package task

import "time"

type Priority string

const (
	PriorityUrgent   Priority = "urgent"
	PriorityNormal   Priority = "normal"
	PriorityRainyDay Priority = "rainy_day"
)

var priorityLabels = map[Priority]string{
	PriorityUrgent:   "Urgent",
	PriorityNormal:   "Normal",
	PriorityRainyDay: "Rainy Day",
}

func (p Priority) Valid() bool {
	_, ok := priorityLabels[p]
	return ok
}

// Label is the human readable name. Unknown values read as Normal.
func (p Priority) Label() string {
	if l, ok := priorityLabels[p]; ok {
		return l
	}
	return priorityLabels[PriorityNormal]
}

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

var statusLabels = map[Status]string{
	StatusNotStarted: "Not Started",
	StatusInProgress: "In Progress",
	StatusCompleted:  "Completed",
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label is the human readable name. Unknown values read as Not Started.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return statusLabels[StatusNotStarted]
}

type Task struct {
	ID           string     `yaml:"id" db:"id" json:"id"`
	Title        string     `yaml:"title" db:"title" json:"title"`
	Notes        string     `yaml:"notes" db:"notes" json:"notes,omitempty"`
	Priority     Priority   `yaml:"priority" db:"priority" json:"priority"`
	Status       Status     `yaml:"status" db:"status" json:"status"`
	TimeEstimate string     `yaml:"time_estimate" db:"time_estimate" json:"timeEstimate,omitempty"`
	StartDate    *time.Time `yaml:"start_date,omitempty" db:"start_date" json:"startDate,omitempty"`
	DueDate      *time.Time `yaml:"due_date,omitempty" db:"due_date" json:"dueDate,omitempty"`
	// AssignedTo is the assignee's profile id, empty when unassigned.
	AssignedTo string    `yaml:"assigned_to" db:"assigned_to" json:"assignedTo,omitempty"`
	CreatedBy  string    `yaml:"created_by" db:"created_by" json:"createdBy"`
	CreatedAt  time.Time `yaml:"created_at" db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `yaml:"updated_at" db:"updated_at" json:"updatedAt"`
}
