package repository

import "context"

// CompletionGuard keeps two completions of the same task from overlapping.
type CompletionGuard interface {
	// Acquire reports false when another completion of taskID holds the guard.
	Acquire(ctx context.Context, taskID string) (bool, error)
	Release(ctx context.Context, taskID string) error
}
