package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/followups/api/handler"
	"github.com/fastygo/followups/domain"
	"github.com/fastygo/followups/internal/config"
	"github.com/fastygo/followups/internal/infrastructure/monitor"
	"github.com/fastygo/followups/internal/infrastructure/store"
	"github.com/fastygo/followups/internal/middleware"
	"github.com/fastygo/followups/internal/router"
	"github.com/fastygo/followups/pkg/httpcontext"
	"github.com/fastygo/followups/repository"
	"github.com/fastygo/followups/repository/boltdb"
	dashboardUC "github.com/fastygo/followups/usecase/dashboard"
	taskUC "github.com/fastygo/followups/usecase/task"
)

type testServer struct {
	handler fasthttp.RequestHandler
	uc      *taskUC.UseCase
	bolt    *boltdb.Store
	monitor *monitor.Monitor
}

func newServer(t *testing.T, stores *store.Stores) testServer {
	t.Helper()
	var bolt *boltdb.Store
	if stores == nil {
		var err error
		bolt, err = boltdb.Open(filepath.Join(t.TempDir(), "followups.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = bolt.Close() })
		require.NoError(t, bolt.Applications().Put(context.Background(), domain.Application{ID: "A1", TenantID: "T1"}))
		stores = &store.Stores{
			Driver:       config.DriverBolt,
			Applications: bolt.Applications(),
			Tasks:        bolt.Tasks(),
			Ping:         bolt.Ping,
		}
	}

	uc := taskUC.New(stores.Applications, stores.Tasks, nil, time.UTC, nil)
	mon := monitor.New(time.Minute, nil)
	mon.Register(stores.Driver, time.Second, stores.Ping)
	adapter := httpcontext.NewAdapter(time.Second)

	h := router.New(router.Handlers{
		Task:      apiHandler.NewTaskHandler(uc, adapter, nil),
		Dashboard: apiHandler.NewDashboardHandler(dashboardUC.New(uc, time.UTC, nil), adapter, nil),
		Health:    apiHandler.NewHealthHandler(mon, adapter, nil),
	}, middleware.Passthrough, nil)

	return testServer{handler: h, uc: uc, bolt: bolt, monitor: mon}
}

func (s testServer) do(method, path, body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != "" {
		ctx.Request.Header.SetContentType("application/json")
		ctx.Request.SetBodyString(body)
	}
	s.handler(ctx)
	return ctx
}

func (s testServer) tasks(t *testing.T) []domain.Task {
	t.Helper()
	tasks, err := s.bolt.Tasks().ListDue(context.Background(), repository.TaskFilter{})
	require.NoError(t, err)
	return tasks
}

func createBody(appID, taskType, dueAt string) string {
	body, _ := json.Marshal(map[string]string{
		"application_id": appID,
		"task_type":      taskType,
		"due_at":         dueAt,
	})
	return string(body)
}

func tomorrow() string {
	return time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
}

func assertCORS(t *testing.T, ctx *fasthttp.RequestCtx) {
	t.Helper()
	assert.Equal(t, "*", string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")))
	assert.Equal(t, "authorization, x-client-info, apikey, content-type",
		string(ctx.Response.Header.Peek("Access-Control-Allow-Headers")))
}

func TestCreateTask_Success(t *testing.T) {
	s := newServer(t, nil)

	ctx := s.do(fasthttp.MethodPost, "/api/v1/tasks", createBody("A1", "call", tomorrow()))

	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode(), string(ctx.Response.Body()))
	assertCORS(t, ctx)
	var resp struct {
		Success bool   `json:"success"`
		TaskID  string `json:"task_id"`
	}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.TaskID)

	stored, err := s.bolt.Tasks().GetByID(context.Background(), resp.TaskID)
	require.NoError(t, err)
	assert.Equal(t, "T1", stored.TenantID)
	assert.Equal(t, domain.TaskStatusPending, stored.Status)
	assert.Equal(t, domain.TaskTypeCall, stored.Type)
}

func TestCreateTask_IgnoresInjectedTenant(t *testing.T) {
	s := newServer(t, nil)
	body := `{"application_id":"A1","task_type":"review","due_at":"` + tomorrow() + `","tenant_id":"T999"}`

	ctx := s.do(fasthttp.MethodPost, "/functions/v1/create-task", body)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	tasks := s.tasks(t)
	require.Len(t, tasks, 1)
	assert.Equal(t, "T1", tasks[0].TenantID)
}

func TestCreateTask_Rejections(t *testing.T) {
	past := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"unknown type", createBody("A1", "meeting", tomorrow()), 400, `{"error":"invalid_task_type"}`},
		{"type checked before due", createBody("A1", "fax", "garbage"), 400, `{"error":"invalid_task_type"}`},
		{"unparsable due", createBody("A1", "email", "next tuesday"), 400, `{"error":"invalid_due_at"}`},
		{"past due", createBody("A1", "email", past), 400, `{"error":"invalid_due_at"}`},
		{"due checked before application", createBody("missing", "call", past), 400, `{"error":"invalid_due_at"}`},
		{"unknown application", createBody("missing", "call", tomorrow()), 404, `{"error":"application not found"}`},
		{"malformed body", `{"application_id":`, 500, `{"error":"internal_error"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newServer(t, nil)

			ctx := s.do(fasthttp.MethodPost, "/api/v1/tasks", tc.body)

			assert.Equal(t, tc.wantStatus, ctx.Response.StatusCode())
			assert.JSONEq(t, tc.wantBody, string(ctx.Response.Body()))
			assertCORS(t, ctx)
			assert.Empty(t, s.tasks(t))
		})
	}
}

func TestCreateTask_StoreUnavailable(t *testing.T) {
	s := newServer(t, store.Unavailable(config.DriverPostgres, errors.New("DATABASE_URL is not set")))

	ctx := s.do(fasthttp.MethodPost, "/api/v1/tasks", createBody("A1", "call", tomorrow()))

	assert.Equal(t, fasthttp.StatusInternalServerError, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"error":"internal_error"}`, string(ctx.Response.Body()))
	assertCORS(t, ctx)
}

func TestPreflight(t *testing.T) {
	s := newServer(t, nil)

	for _, path := range []string{"/api/v1/tasks", "/functions/v1/create-task", "/anything"} {
		ctx := s.do(fasthttp.MethodOptions, path, "")
		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode(), path)
		assert.Equal(t, "ok", string(ctx.Response.Body()), path)
		assertCORS(t, ctx)
	}
}

func TestUnknownRouteKeepsCORS(t *testing.T) {
	s := newServer(t, nil)

	ctx := s.do(fasthttp.MethodGet, "/nope", "")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
	assertCORS(t, ctx)

	ctx = s.do(fasthttp.MethodGet, "/api/v1/tasks", "")
	assert.Equal(t, fasthttp.StatusMethodNotAllowed, ctx.Response.StatusCode())
	assertCORS(t, ctx)
}

func seedToday(t *testing.T, s testServer) (open, done string) {
	t.Helper()
	day := s.uc.Today()
	ctx := context.Background()

	yesterday, err := s.bolt.Tasks().Create(ctx, &domain.Task{ApplicationID: "A1", TenantID: "T1",
		Type: domain.TaskTypeEmail, Status: domain.TaskStatusPending, DueAt: day.Start.Add(-time.Minute)})
	require.NoError(t, err)
	require.NotEmpty(t, yesterday.ID)

	first, err := s.bolt.Tasks().Create(ctx, &domain.Task{ApplicationID: "A1", TenantID: "T1",
		Type: domain.TaskTypeCall, Status: domain.TaskStatusPending, DueAt: day.Start.Add(15 * time.Hour)})
	require.NoError(t, err)

	completed, err := s.bolt.Tasks().Create(ctx, &domain.Task{ApplicationID: "A1", TenantID: "T1",
		Type: domain.TaskTypeReview, Status: domain.TaskStatusPending, DueAt: day.Start})
	require.NoError(t, err)
	require.NoError(t, s.bolt.Tasks().Complete(ctx, completed.ID, time.Now()))

	_, err = s.bolt.Tasks().Create(ctx, &domain.Task{ApplicationID: "A1", TenantID: "T1",
		Type: domain.TaskTypeReview, Status: domain.TaskStatusPending, DueAt: day.End})
	require.NoError(t, err)

	return first.ID, completed.ID
}

func TestTodayJSON(t *testing.T) {
	s := newServer(t, nil)
	openID, _ := seedToday(t, s)

	ctx := s.do(fasthttp.MethodGet, "/api/v1/tasks/today", "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp struct {
		Status string `json:"status"`
		Data   []struct {
			ID    string    `json:"id"`
			Type  string    `json:"type"`
			Due   string    `json:"due"`
			DueAt time.Time `json:"due_at"`
		} `json:"data"`
		Meta struct {
			Start    time.Time `json:"start"`
			End      time.Time `json:"end"`
			Count    int       `json:"count"`
			Timezone string    `json:"timezone"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, "success", resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, openID, resp.Data[0].ID)
	assert.Equal(t, "call", resp.Data[0].Type)
	assert.Equal(t, "3:00 PM", resp.Data[0].Due)
	assert.Equal(t, 1, resp.Meta.Count)
	assert.Equal(t, "UTC", resp.Meta.Timezone)

	reported := domain.DayWindow{Start: resp.Meta.Start, End: resp.Meta.End}
	assert.Equal(t, 24*time.Hour, reported.End.Sub(reported.Start))
	assert.True(t, reported.Contains(resp.Data[0].DueAt), "listed task lies in the reported window")
}

func TestCompleteJSON(t *testing.T) {
	s := newServer(t, nil)
	openID, _ := seedToday(t, s)

	ctx := s.do(fasthttp.MethodPost, "/api/v1/tasks/"+openID+"/complete", "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode(), string(ctx.Response.Body()))

	stored, err := s.bolt.Tasks().GetByID(context.Background(), openID)
	require.NoError(t, err)
	assert.True(t, stored.IsCompleted())
	require.NotNil(t, stored.CompletedAt)

	ctx = s.do(fasthttp.MethodGet, "/api/v1/tasks/today", "")
	assert.NotContains(t, string(ctx.Response.Body()), openID)

	ctx = s.do(fasthttp.MethodPost, "/api/v1/tasks/unknown/complete", "")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestDashboardPage(t *testing.T) {
	s := newServer(t, nil)

	ctx := s.do(fasthttp.MethodGet, "/dashboard/today", "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Header.ContentType()), "text/html")
	assert.Contains(t, string(ctx.Response.Body()), "No tasks due today.")

	openID, doneID := seedToday(t, s)
	ctx = s.do(fasthttp.MethodGet, "/dashboard/today", "")
	body := string(ctx.Response.Body())
	assert.Contains(t, body, "Today's Tasks")
	assert.Contains(t, body, "Due: 3:00 PM")
	assert.Contains(t, body, "Application: A1")
	assert.Contains(t, body, "Mark Complete")
	assert.Contains(t, body, "/dashboard/today/tasks/"+openID+"/complete")
	assert.NotContains(t, body, doneID)

	ctx = s.do(fasthttp.MethodPost, "/dashboard/today/tasks/"+openID+"/complete", "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "No tasks due today.")
}

func TestDashboardPage_Failure(t *testing.T) {
	s := newServer(t, store.Unavailable(config.DriverPostgres, errors.New("connection refused")))

	ctx := s.do(fasthttp.MethodGet, "/dashboard/today", "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	body := string(ctx.Response.Body())
	assert.Contains(t, body, "Error: store unavailable: connection refused")
	assert.NotContains(t, body, "Retry")
	assert.NotContains(t, body, "<button")
	assertCORS(t, ctx)
}

func TestHealth(t *testing.T) {
	s := newServer(t, nil)

	ctx := s.do(fasthttp.MethodGet, "/health", "")
	assert.Equal(t, fasthttp.StatusServiceUnavailable, ctx.Response.StatusCode())

	s.monitor.Refresh(context.Background())
	ctx = s.do(fasthttp.MethodGet, "/health", "")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), `"bolt":true`)
}
