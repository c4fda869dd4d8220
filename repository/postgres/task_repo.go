package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/followups/domain"
	"github.com/fastygo/followups/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id::text, application_id::text, tenant_id::text, type, status, due_at, completed_at, created_at`

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTask(r.pool.QueryRow(ctx, query, id))
}

func (r *taskRepository) ListDue(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE due_at >= $1
	  AND due_at < $2
	  AND ($3 = '' OR status <> $3)
	ORDER BY due_at ASC
	`
	rows, err := r.pool.Query(ctx, query, filter.DueFrom, filter.DueTo, string(filter.ExcludeStatus))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// Create inserts the row in a single statement, so a failure leaves nothing behind.
func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, application_id, tenant_id, type, status, due_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING created_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.ApplicationID,
		task.TenantID,
		string(task.Type),
		string(task.Status),
		task.DueAt,
	).Scan(&task.CreatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) Complete(ctx context.Context, id string, at time.Time) error {
	const update = `
	UPDATE tasks
	SET status = $2,
		completed_at = $3
	WHERE id = $1
	  AND status <> $2
	`
	tag, err := r.pool.Exec(ctx, update, id, string(domain.TaskStatusCompleted), at)
	if err != nil {
		if isMissing(err) {
			return domain.ErrTaskNotFound
		}
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Nothing changed: either already completed or absent.
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row scanner) (*domain.Task, error) {
	var (
		task      domain.Task
		taskType  string
		status    string
		completed *time.Time
	)

	if err := row.Scan(
		&task.ID,
		&task.ApplicationID,
		&task.TenantID,
		&taskType,
		&status,
		&task.DueAt,
		&completed,
		&task.CreatedAt,
	); err != nil {
		if isMissing(err) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Type = domain.TaskType(taskType)
	task.Status = domain.TaskStatus(status)
	task.CompletedAt = completed
	return &task, nil
}
