// Package stats derives read-only statistics over in-memory snapshots of
// tasks and epics. Every function is pure: no storage access, no mutation.
package stats

import (
	"math"

	"github.com/ideabank/server/internal/domain"
)

// StatusBreakdown counts tasks per status. Only statuses actually present
// appear as keys; absent statuses are omitted, not zero-filled.
func StatusBreakdown(tasks []*domain.Task) map[domain.Status]int {
	counts := make(map[domain.Status]int)
	for _, t := range tasks {
		counts[t.Status]++
	}
	return counts
}

// PriorityBreakdown counts tasks per priority.
func PriorityBreakdown(tasks []*domain.Task) map[domain.Priority]int {
	counts := make(map[domain.Priority]int)
	for _, t := range tasks {
		counts[t.Priority]++
	}
	return counts
}

// TypeBreakdown counts tasks per type.
func TypeBreakdown(tasks []*domain.Task) map[domain.TaskType]int {
	counts := make(map[domain.TaskType]int)
	for _, t := range tasks {
		counts[t.Type]++
	}
	return counts
}

// EpicStatusBreakdown counts epics per status.
func EpicStatusBreakdown(epics []*domain.Epic) map[domain.Status]int {
	counts := make(map[domain.Status]int)
	for _, e := range epics {
		counts[e.Status]++
	}
	return counts
}

// Completion summarizes how much of a task collection is done.
type Completion struct {
	Done    int
	Total   int
	Percent int
}

// CompletionRatio computes done count, total, and the percentage rounded to
// the nearest whole percent. An empty collection yields 0% rather than a
// division fault.
func CompletionRatio(tasks []*domain.Task) Completion {
	c := Completion{Total: len(tasks)}
	for _, t := range tasks {
		if t.Status == domain.StatusDone {
			c.Done++
		}
	}
	if c.Total > 0 {
		c.Percent = int(math.Round(float64(c.Done) / float64(c.Total) * 100))
	}
	return c
}

// TasksForIdea filters tasks down to those whose epic belongs to the idea.
// It is a pure filter over the supplied snapshot, not a storage join.
func TasksForIdea(idea *domain.Idea, tasks []*domain.Task) []*domain.Task {
	epicIDs := make(map[string]struct{}, len(idea.EpicIDs))
	for _, id := range idea.EpicIDs {
		epicIDs[id] = struct{}{}
	}
	var result []*domain.Task
	for _, t := range tasks {
		if _, ok := epicIDs[t.EpicID]; ok {
			result = append(result, t)
		}
	}
	return result
}
