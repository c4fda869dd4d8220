package domain

import (
	"strings"
	"time"
)

// TaskType is the kind of follow-up a task asks for.
type TaskType string

const (
	TaskTypeCall   TaskType = "call"
	TaskTypeEmail  TaskType = "email"
	TaskTypeReview TaskType = "review"
)

// TaskStatus tracks where a task is in its pending -> completed lifecycle.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// ParseTaskType accepts only the exact lowercase names.
func ParseTaskType(value string) (TaskType, error) {
	switch t := TaskType(value); t {
	case TaskTypeCall, TaskTypeEmail, TaskTypeReview:
		return t, nil
	default:
		return "", ErrInvalidTaskType
	}
}

// Task is a scheduled follow-up attached to an Application.
type Task struct {
	ID            string     `json:"id"`
	ApplicationID string     `json:"application_id"`
	TenantID      string     `json:"tenant_id"`
	Type          TaskType   `json:"type"`
	Status        TaskStatus `json:"status"`
	DueAt         time.Time  `json:"due_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == TaskStatusCompleted
}

// Complete moves the task to completed, setting status and completion time together.
// It reports false when the task was already completed; the first completion time is kept.
func (t *Task) Complete(at time.Time) bool {
	if t == nil || t.IsCompleted() {
		return false
	}
	t.Status = TaskStatusCompleted
	t.CompletedAt = &at
	return true
}

var dueAtLayouts = []struct {
	layout string
	local  bool
}{
	{time.RFC3339Nano, false},
	{"2006-01-02T15:04:05", true},
	{"2006-01-02T15:04", true},
	{"2006-01-02 15:04:05", true},
	{"2006-01-02", false},
}

// ParseDueAt parses an ISO-8601 timestamp. Date-times without an offset are read in loc,
// a bare date is UTC midnight.
func ParseDueAt(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidDueAt
	}
	if loc == nil {
		loc = time.Local
	}
	for _, l := range dueAtLayouts {
		var (
			parsed time.Time
			err    error
		)
		if l.local {
			parsed, err = time.ParseInLocation(l.layout, value, loc)
		} else {
			parsed, err = time.Parse(l.layout, value)
		}
		if err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, ErrInvalidDueAt
}

// ValidateDueAt parses value and requires it to be strictly after now.
func ValidateDueAt(value string, now time.Time, loc *time.Location) (time.Time, error) {
	due, err := ParseDueAt(value, loc)
	if err != nil {
		return time.Time{}, err
	}
	if !due.After(now) {
		return time.Time{}, ErrInvalidDueAt
	}
	return due, nil
}
