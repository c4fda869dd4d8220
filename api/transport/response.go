package transport

import (
	"time"

	"github.com/fastygo/followups/domain"
)

// CreateTaskResponse is returned by a successful creation.
type CreateTaskResponse struct {
	Success bool   `json:"success"`
	TaskID  string `json:"task_id"`
}

// ErrorResponse is the flat error body of the creation endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Envelope wraps the JSON dashboard endpoints.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{Status: "success", Data: data, Meta: meta}
}

func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{Status: "error", Code: code, Error: err, Meta: meta}
}

// TaskResponse is one task as listed by the JSON today endpoint.
type TaskResponse struct {
	ID            string     `json:"id"`
	ApplicationID string     `json:"application_id"`
	Type          string     `json:"type"`
	Status        string     `json:"status"`
	DueAt         time.Time  `json:"due_at"`
	Due           string     `json:"due"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// DayMeta describes the window a today listing covers.
type DayMeta struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Timezone string    `json:"timezone"`
	Count    int       `json:"count"`
}

// NewTaskResponse renders t with its due time formatted as a 12-hour clock in loc.
func NewTaskResponse(t domain.Task, loc *time.Location) TaskResponse {
	if loc == nil {
		loc = time.Local
	}
	return TaskResponse{
		ID:            t.ID,
		ApplicationID: t.ApplicationID,
		Type:          string(t.Type),
		Status:        string(t.Status),
		DueAt:         t.DueAt,
		Due:           t.DueAt.In(loc).Format("3:04 PM"),
		CompletedAt:   t.CompletedAt,
	}
}
