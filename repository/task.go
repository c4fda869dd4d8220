package repository

import (
	"context"
	"time"

	"github.com/fastygo/followups/domain"
)

// TaskFilter selects tasks whose due time falls in [DueFrom, DueTo).
// Tasks in ExcludeStatus are left out when it is set.
type TaskFilter struct {
	DueFrom       time.Time
	DueTo         time.Time
	ExcludeStatus domain.TaskStatus
}

// Matches applies the filter to a single task. Stores that cannot push the
// filter down to a query use it directly.
func (f TaskFilter) Matches(task *domain.Task) bool {
	if task == nil {
		return false
	}
	if f.ExcludeStatus != "" && task.Status == f.ExcludeStatus {
		return false
	}
	if !f.DueFrom.IsZero() && task.DueAt.Before(f.DueFrom) {
		return false
	}
	if !f.DueTo.IsZero() && !task.DueAt.Before(f.DueTo) {
		return false
	}
	return true
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	// ListDue returns matching tasks ordered by due time, earliest first.
	ListDue(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	// Create persists the task and fills in its generated fields.
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// Complete marks the task completed at the given time. Completing an already
	// completed task is a no-op; an unknown id yields domain.ErrTaskNotFound.
	Complete(ctx context.Context, id string, at time.Time) error
}
