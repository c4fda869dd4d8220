package redis

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/followups/repository"
)

type completionLock struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewCompletionLock creates a Redis-backed CompletionGuard. The TTL bounds how long a
// crashed holder can block other completions of the same task.
func NewCompletionLock(client *redislib.Client, ttl time.Duration) repository.CompletionGuard {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &completionLock{
		client: client,
		prefix: "task:complete:",
		ttl:    ttl,
	}
}

func (l *completionLock) Acquire(ctx context.Context, taskID string) (bool, error) {
	return l.client.SetNX(ctx, l.key(taskID), time.Now().UTC().Format(time.RFC3339Nano), l.ttl).Result()
}

func (l *completionLock) Release(ctx context.Context, taskID string) error {
	return l.client.Del(ctx, l.key(taskID)).Err()
}

func (l *completionLock) key(taskID string) string {
	return fmt.Sprintf("%s%s", l.prefix, taskID)
}
