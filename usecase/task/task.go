package task

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/followups/domain"
	"github.com/fastygo/followups/repository"
)

// CreateInput is the caller-supplied part of a new task. Tenant is deliberately
// absent: it always comes from the referenced application.
type CreateInput struct {
	ApplicationID string
	TaskType      string
	DueAt         string
}

type UseCase struct {
	applications repository.ApplicationRepository
	tasks        repository.TaskRepository
	guard        repository.CompletionGuard
	location     *time.Location
	logger       *zap.Logger
	now          func() time.Time
}

// New wires the use case. guard may be nil, in which case overlapping completions
// rely on the store's conditional update alone.
func New(
	applications repository.ApplicationRepository,
	tasks repository.TaskRepository,
	guard repository.CompletionGuard,
	location *time.Location,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.Local
	}
	return &UseCase{
		applications: applications,
		tasks:        tasks,
		guard:        guard,
		location:     location,
		logger:       logger,
		now:          time.Now,
	}
}

// Location is the zone used for "today" and for offset-less due times.
func (uc *UseCase) Location() *time.Location {
	return uc.location
}

// CreateTask validates in a fixed order (type, due time, application) and stops
// at the first failure, so nothing is written for a rejected request.
func (uc *UseCase) CreateTask(ctx context.Context, in CreateInput) (*domain.Task, error) {
	taskType, err := domain.ParseTaskType(in.TaskType)
	if err != nil {
		return nil, err
	}

	dueAt, err := domain.ValidateDueAt(in.DueAt, uc.now(), uc.location)
	if err != nil {
		return nil, err
	}

	app, err := uc.applications.GetByID(ctx, in.ApplicationID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, domain.WrapError(domain.ErrCodeInternal, "lookup application", err)
	}

	task := &domain.Task{
		ApplicationID: app.ID,
		TenantID:      app.TenantID,
		Type:          taskType,
		Status:        domain.TaskStatusPending,
		DueAt:         dueAt,
	}
	if task.ApplicationID == "" {
		task.ApplicationID = in.ApplicationID
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "insert task", err)
	}

	uc.logger.Info("task created",
		zap.String("task_id", created.ID),
		zap.String("application_id", created.ApplicationID),
		zap.String("tenant_id", created.TenantID),
		zap.String("type", string(created.Type)),
		zap.Time("due_at", created.DueAt))
	return created, nil
}

// Today returns the local calendar day the use case currently considers "today".
func (uc *UseCase) Today() domain.DayWindow {
	return domain.DayOf(uc.now(), uc.location)
}

// ListDueToday returns open tasks due in [start of today, start of tomorrow), earliest first.
func (uc *UseCase) ListDueToday(ctx context.Context) ([]domain.Task, error) {
	return uc.ListDueIn(ctx, uc.Today())
}

// ListDueIn returns open tasks due inside day, earliest first. Callers that report
// the window alongside the tasks pass the one they got from Today.
func (uc *UseCase) ListDueIn(ctx context.Context, day domain.DayWindow) ([]domain.Task, error) {
	return uc.tasks.ListDue(ctx, repository.TaskFilter{
		DueFrom:       day.Start,
		DueTo:         day.End,
		ExcludeStatus: domain.TaskStatusCompleted,
	})
}

// CompleteTask sets status and completion time together. A second completion of the
// same task is a no-op; one that overlaps an in-flight completion gets
// domain.ErrCompletionInProgress.
func (uc *UseCase) CompleteTask(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrTaskNotFound
	}

	if uc.guard != nil {
		acquired, err := uc.guard.Acquire(ctx, id)
		switch {
		case err != nil:
			uc.logger.Warn("completion guard unavailable, relying on conditional update",
				zap.String("task_id", id), zap.Error(err))
		case !acquired:
			return domain.ErrCompletionInProgress
		default:
			defer func() {
				if err := uc.guard.Release(context.WithoutCancel(ctx), id); err != nil {
					uc.logger.Warn("failed to release completion guard", zap.String("task_id", id), zap.Error(err))
				}
			}()
		}
	}

	if err := uc.tasks.Complete(ctx, id, uc.now().UTC()); err != nil {
		return err
	}
	uc.logger.Info("task completed", zap.String("task_id", id))
	return nil
}
