package domain

import "errors"

// Domain-specific errors for business logic validation.
var (
	// Lookup errors
	ErrIdeaNotFound = errors.New("idea not found")
	ErrEpicNotFound = errors.New("epic not found")
	ErrTaskNotFound = errors.New("task not found")

	// Dependency errors. ErrDependencyNotFound is kept distinct from
	// ErrTaskNotFound: it means "fix the dependency list", not "fix the
	// primary task id".
	ErrDependencyNotFound = errors.New("dependency task not found")
	ErrSelfDependency     = errors.New("task cannot depend on itself")
	ErrCyclicDependency   = errors.New("cyclic dependency detected")

	// Validation errors
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidTaskType = errors.New("invalid task type")
	ErrInvalidNoteType = errors.New("invalid progress note type")
	ErrEmptyTaskID     = errors.New("task id is required")
	ErrEmptyTitle      = errors.New("title is required")
	ErrEmptyNote       = errors.New("progress note text is required")

	// Persistence errors
	ErrPersistence = errors.New("persistence failure")
)
