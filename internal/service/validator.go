package service

import (
	"errors"
	"fmt"

	"github.com/ideabank/server/internal/domain"
)

// RawTaskUpdate is an untyped change request as it arrives from a transport
// layer. Nil pointers mean "field not present in the input", which is
// distinct from "field present and empty".
type RawTaskUpdate struct {
	TaskID       string
	Status       *string
	Priority     *string
	Title        *string
	Description  *string
	Dependencies *[]string
	ProgressNote *string
	ProgressType *string
}

// TaskUpdate is a validated, typed change request. Any subset of fields may
// be present. Dependencies keeps the tri-state: nil means no dependency
// change was requested, a non-nil empty slice clears all dependencies.
type TaskUpdate struct {
	Status       *domain.Status
	Priority     *domain.Priority
	Title        *string
	Description  *string
	Dependencies *[]string
	ProgressNote *string
	NoteType     *domain.NoteType
}

// StartsWork reports whether the request is a pure "start work" transition:
// a status change to in-progress with no other field changes requested
// (a progress note may accompany it). Such requests are exempt from the
// caller-side approval gate; everything else is subject to it.
func (u TaskUpdate) StartsWork() bool {
	return u.Status != nil && *u.Status == domain.StatusInProgress &&
		u.Priority == nil && u.Title == nil && u.Description == nil &&
		u.Dependencies == nil
}

// Empty reports whether the request carries no fields at all.
func (u TaskUpdate) Empty() bool {
	return u.Status == nil && u.Priority == nil && u.Title == nil &&
		u.Description == nil && u.Dependencies == nil && u.ProgressNote == nil
}

// ValidateTaskUpdate converts a raw change request into a typed one, or
// fails with every offending field enumerated via joined errors. It is a
// pure function: it never touches storage, and fields absent in the input
// stay absent in the output.
func ValidateTaskUpdate(raw RawTaskUpdate) (TaskUpdate, error) {
	var update TaskUpdate
	var errs []error

	if raw.TaskID == "" {
		errs = append(errs, domain.ErrEmptyTaskID)
	}

	if raw.Status != nil {
		status := domain.Status(*raw.Status)
		if !status.IsValid() {
			errs = append(errs, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, *raw.Status))
		} else {
			update.Status = &status
		}
	}

	if raw.Priority != nil {
		priority := domain.Priority(*raw.Priority)
		if !priority.IsValid() {
			errs = append(errs, fmt.Errorf("%w: %q", domain.ErrInvalidPriority, *raw.Priority))
		} else {
			update.Priority = &priority
		}
	}

	if raw.Title != nil {
		if *raw.Title == "" {
			errs = append(errs, domain.ErrEmptyTitle)
		} else {
			update.Title = raw.Title
		}
	}

	if raw.Description != nil {
		update.Description = raw.Description
	}

	if raw.Dependencies != nil {
		deps := dedupe(*raw.Dependencies)
		for _, dep := range deps {
			if dep == raw.TaskID {
				errs = append(errs, fmt.Errorf("%w: %s", domain.ErrSelfDependency, dep))
				break
			}
		}
		update.Dependencies = &deps
	}

	if raw.ProgressNote != nil {
		if *raw.ProgressNote == "" {
			errs = append(errs, domain.ErrEmptyNote)
		} else {
			update.ProgressNote = raw.ProgressNote
		}
	}

	if raw.ProgressType != nil {
		if raw.ProgressNote == nil {
			errs = append(errs, fmt.Errorf("%w: progress type given without note text", domain.ErrInvalidNoteType))
		} else {
			noteType := domain.NoteType(*raw.ProgressType)
			if !noteType.IsValid() {
				errs = append(errs, fmt.Errorf("%w: %q", domain.ErrInvalidNoteType, *raw.ProgressType))
			} else {
				update.NoteType = &noteType
			}
		}
	}

	if len(errs) > 0 {
		return TaskUpdate{}, errors.Join(errs...)
	}
	return update, nil
}

// dedupe removes duplicate ids while preserving first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
