package domain

import "time"

// NoteType represents the kind of progress note.
type NoteType string

const (
	NoteTypeUpdate     NoteType = "update"
	NoteTypeComment    NoteType = "comment"
	NoteTypeBlocker    NoteType = "blocker"
	NoteTypeCompletion NoteType = "completion"
)

// IsValid checks if the note type is one of the allowed values.
func (n NoteType) IsValid() bool {
	switch n {
	case NoteTypeUpdate, NoteTypeComment, NoteTypeBlocker, NoteTypeCompletion:
		return true
	default:
		return false
	}
}

// ProgressNote is an immutable, timestamped annotation on a task's history.
// Notes are only ever appended; existing notes are never edited or removed.
type ProgressNote struct {
	ID        string
	TaskID    string
	Content   string
	Type      NoteType
	Timestamp time.Time
}
