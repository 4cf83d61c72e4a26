package domain

import (
	"slices"
	"time"
)

// Idea is a top-level initiative that owns an ordered list of epics.
// Ideas are created and managed outside the lifecycle engine; the engine
// only reads them for contextual reporting.
type Idea struct {
	ID          string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	EpicIDs     []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnsEpic checks if the epic belongs to this idea.
func (i *Idea) OwnsEpic(epicID string) bool {
	return slices.Contains(i.EpicIDs, epicID)
}

// Clone returns a deep copy of the idea.
func (i *Idea) Clone() *Idea {
	c := *i
	c.EpicIDs = slices.Clone(i.EpicIDs)
	return &c
}
