package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/followups/api/transport"
	"github.com/fastygo/followups/domain"
	"github.com/fastygo/followups/pkg/httpcontext"
	taskUC "github.com/fastygo/followups/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Create follow-up task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()
	log := h.log(stdCtx)

	var req transport.CreateTaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		log.Error("create task: malformed body", zap.Error(err))
		h.respondJSON(ctx, http.StatusInternalServerError, transport.ErrorResponse{Error: string(domain.ErrCodeInternal)})
		return
	}

	created, err := h.uc.CreateTask(stdCtx, taskUC.CreateInput{
		ApplicationID: req.ApplicationID,
		TaskType:      req.TaskType,
		DueAt:         req.DueAt,
	})
	if err != nil {
		status, body := createError(err)
		if status == http.StatusInternalServerError {
			log.Error("create task failed", zap.String("application_id", req.ApplicationID), zap.Error(err))
		} else {
			log.Info("create task rejected", zap.String("reason", body.Error))
		}
		h.respondJSON(ctx, status, body)
		return
	}

	h.respondJSON(ctx, http.StatusOK, transport.CreateTaskResponse{Success: true, TaskID: created.ID})
}

// createError maps a creation failure to the flat error body. Only validation
// and not-found keep their meaning; everything else is opaque.
func createError(err error) (int, transport.ErrorResponse) {
	switch domain.CodeOf(err) {
	case domain.ErrCodeInvalidTaskType:
		return http.StatusBadRequest, transport.ErrorResponse{Error: string(domain.ErrCodeInvalidTaskType)}
	case domain.ErrCodeInvalidDueAt:
		return http.StatusBadRequest, transport.ErrorResponse{Error: string(domain.ErrCodeInvalidDueAt)}
	case domain.ErrCodeNotFound:
		return http.StatusNotFound, transport.ErrorResponse{Error: domain.ErrApplicationNotFound.Message}
	default:
		return http.StatusInternalServerError, transport.ErrorResponse{Error: string(domain.ErrCodeInternal)}
	}
}

// @Summary List open tasks due today
// @Tags tasks
// @Router /api/v1/tasks/today [get]
func (h *TaskHandler) Today(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	day := h.uc.Today()
	tasks, err := h.uc.ListDueIn(stdCtx, day)
	if err != nil {
		h.log(stdCtx).Error("list today's tasks failed", zap.Error(err))
		h.respondError(ctx, err)
		return
	}

	loc := h.uc.Location()
	out := make([]transport.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, transport.NewTaskResponse(t, loc))
	}
	h.respondSuccess(ctx, http.StatusOK, out, transport.DayMeta{
		Start:    day.Start,
		End:      day.End,
		Timezone: loc.String(),
		Count:    len(out),
	})
}

// @Summary Complete task
// @Tags tasks
// @Router /api/v1/tasks/{id}/complete [post]
func (h *TaskHandler) Complete(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()
	log := h.log(stdCtx)

	id, _ := ctx.UserValue("id").(string)
	if err := h.uc.CompleteTask(stdCtx, id); err != nil {
		if domain.CodeOf(err) == domain.ErrCodeInternal {
			log.Error("complete task failed", zap.String("task_id", id), zap.Error(err))
		}
		h.respondError(ctx, err)
		return
	}

	log.Info("task completion requested", zap.String("task_id", id))
	h.respondSuccess(ctx, http.StatusOK, map[string]string{
		"id":     id,
		"status": string(domain.TaskStatusCompleted),
	}, nil)
}
