package domain

import (
	"slices"
	"time"
)

// Status is the lifecycle status of an idea, epic, or task.
//
// The engine enforces membership in this set only; it deliberately does not
// restrict which status may follow which (done -> pending is legal).
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
	StatusBlocked    Status = "blocked"
	StatusDeferred   Status = "deferred"
)

// IsValid checks if the status is one of the allowed values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone, StatusBlocked, StatusDeferred:
		return true
	default:
		return false
	}
}

// Priority represents the priority level of an idea, epic, or task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid checks if the priority is one of the allowed values.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// TaskType categorizes the kind of work a task involves.
type TaskType string

const (
	TaskTypeFeature  TaskType = "feature"
	TaskTypeBug      TaskType = "bug"
	TaskTypeResearch TaskType = "research"
)

// IsValid checks if the task type is one of the allowed values.
func (t TaskType) IsValid() bool {
	switch t {
	case TaskTypeFeature, TaskTypeBug, TaskTypeResearch:
		return true
	default:
		return false
	}
}

// Task is the unit of trackable work. It belongs to exactly one epic
// (id reference, non-owning) and carries an append-only progress history.
type Task struct {
	ID           string
	EpicID       string
	Title        string
	Description  string
	Type         TaskType
	Status       Status
	Priority     Priority
	Dependencies []string
	Notes        []ProgressNote
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DependsOn checks if the task lists the given task id as a dependency.
func (t *Task) DependsOn(taskID string) bool {
	return slices.Contains(t.Dependencies, taskID)
}

// Clone returns a deep copy of the task. Mutating the copy never affects
// the original or a store-held record.
func (t *Task) Clone() *Task {
	c := *t
	c.Dependencies = slices.Clone(t.Dependencies)
	c.Notes = slices.Clone(t.Notes)
	return &c
}
