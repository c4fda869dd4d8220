package transport

// CreateTaskRequest is the body of a task creation call. It has no tenant field;
// a tenant_id sent by the caller is dropped during decoding.
type CreateTaskRequest struct {
	ApplicationID string `json:"application_id"`
	TaskType      string `json:"task_type"`
	DueAt         string `json:"due_at"`
}
