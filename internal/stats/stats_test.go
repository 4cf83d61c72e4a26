package stats_test

import (
	"testing"

	"github.com/ideabank/server/internal/domain"
	"github.com/ideabank/server/internal/stats"
	"github.com/stretchr/testify/assert"
)

func task(id string, epicID string, status domain.Status, priority domain.Priority, taskType domain.TaskType) *domain.Task {
	return &domain.Task{
		ID:       id,
		EpicID:   epicID,
		Title:    id,
		Type:     taskType,
		Status:   status,
		Priority: priority,
	}
}

func TestStatusBreakdown(t *testing.T) {
	tasks := []*domain.Task{
		task("TSK-1", "e1", domain.StatusDone, domain.PriorityHigh, domain.TaskTypeFeature),
		task("TSK-2", "e1", domain.StatusDone, domain.PriorityMedium, domain.TaskTypeFeature),
		task("TSK-3", "e1", domain.StatusDone, domain.PriorityLow, domain.TaskTypeBug),
		task("TSK-4", "e2", domain.StatusPending, domain.PriorityMedium, domain.TaskTypeFeature),
		task("TSK-5", "e2", domain.StatusBlocked, domain.PriorityHigh, domain.TaskTypeResearch),
	}

	counts := stats.StatusBreakdown(tasks)

	// Absent statuses must not appear as zero-valued keys.
	assert.Equal(t, map[domain.Status]int{
		domain.StatusDone:    3,
		domain.StatusPending: 1,
		domain.StatusBlocked: 1,
	}, counts)
	assert.NotContains(t, counts, domain.StatusInProgress)
	assert.NotContains(t, counts, domain.StatusDeferred)
}

func TestPriorityAndTypeBreakdowns(t *testing.T) {
	tasks := []*domain.Task{
		task("TSK-1", "e1", domain.StatusDone, domain.PriorityHigh, domain.TaskTypeFeature),
		task("TSK-2", "e1", domain.StatusPending, domain.PriorityHigh, domain.TaskTypeBug),
		task("TSK-3", "e1", domain.StatusPending, domain.PriorityLow, domain.TaskTypeBug),
	}

	assert.Equal(t, map[domain.Priority]int{
		domain.PriorityHigh: 2,
		domain.PriorityLow:  1,
	}, stats.PriorityBreakdown(tasks))

	assert.Equal(t, map[domain.TaskType]int{
		domain.TaskTypeFeature: 1,
		domain.TaskTypeBug:     2,
	}, stats.TypeBreakdown(tasks))
}

func TestEpicStatusBreakdown(t *testing.T) {
	epics := []*domain.Epic{
		{ID: "e1", Status: domain.StatusDone},
		{ID: "e2", Status: domain.StatusInProgress},
		{ID: "e3", Status: domain.StatusInProgress},
	}

	assert.Equal(t, map[domain.Status]int{
		domain.StatusDone:       1,
		domain.StatusInProgress: 2,
	}, stats.EpicStatusBreakdown(epics))
}

func TestCompletionRatio(t *testing.T) {
	tests := []struct {
		name  string
		tasks []*domain.Task
		want  stats.Completion
	}{
		{
			name: "empty collection",
			want: stats.Completion{},
		},
		{
			name: "none done",
			tasks: []*domain.Task{
				task("TSK-1", "e1", domain.StatusPending, domain.PriorityLow, domain.TaskTypeFeature),
			},
			want: stats.Completion{Done: 0, Total: 1, Percent: 0},
		},
		{
			name: "one of three rounds to nearest percent",
			tasks: []*domain.Task{
				task("TSK-1", "e1", domain.StatusDone, domain.PriorityLow, domain.TaskTypeFeature),
				task("TSK-2", "e1", domain.StatusPending, domain.PriorityLow, domain.TaskTypeFeature),
				task("TSK-3", "e1", domain.StatusPending, domain.PriorityLow, domain.TaskTypeFeature),
			},
			want: stats.Completion{Done: 1, Total: 3, Percent: 33},
		},
		{
			name: "two of three rounds up",
			tasks: []*domain.Task{
				task("TSK-1", "e1", domain.StatusDone, domain.PriorityLow, domain.TaskTypeFeature),
				task("TSK-2", "e1", domain.StatusDone, domain.PriorityLow, domain.TaskTypeFeature),
				task("TSK-3", "e1", domain.StatusPending, domain.PriorityLow, domain.TaskTypeFeature),
			},
			want: stats.Completion{Done: 2, Total: 3, Percent: 67},
		},
		{
			name: "all done",
			tasks: []*domain.Task{
				task("TSK-1", "e1", domain.StatusDone, domain.PriorityLow, domain.TaskTypeFeature),
			},
			want: stats.Completion{Done: 1, Total: 1, Percent: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stats.CompletionRatio(tt.tasks))
		})
	}
}

func TestTasksForIdea(t *testing.T) {
	idea := &domain.Idea{ID: "idea-1", EpicIDs: []string{"e1", "e3"}}
	tasks := []*domain.Task{
		task("TSK-1", "e1", domain.StatusDone, domain.PriorityLow, domain.TaskTypeFeature),
		task("TSK-2", "e2", domain.StatusDone, domain.PriorityLow, domain.TaskTypeFeature),
		task("TSK-3", "e3", domain.StatusPending, domain.PriorityLow, domain.TaskTypeFeature),
	}

	filtered := stats.TasksForIdea(idea, tasks)
	assert.Len(t, filtered, 2)
	assert.Equal(t, "TSK-1", filtered[0].ID)
	assert.Equal(t, "TSK-3", filtered[1].ID)
}
