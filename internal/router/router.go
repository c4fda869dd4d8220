package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/followups/api/handler"
	"github.com/fastygo/followups/internal/middleware"
)

type Handlers struct {
	Task      *apiHandler.TaskHandler
	Dashboard *apiHandler.DashboardHandler
	Health    *apiHandler.HealthHandler
}

// New registers every route and returns the router wrapped in the recover and
// CORS middleware. authMiddleware guards /api/v1; pass middleware.Passthrough to
// leave it open.
func New(handlers Handlers, authMiddleware middleware.Middleware, logger *zap.Logger) fasthttp.RequestHandler {
	if authMiddleware == nil {
		authMiddleware = middleware.Passthrough
	}
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Task creation, with the legacy function path kept as an alias.
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	r.POST("/functions/v1/create-task", handlers.Task.CreateTask)

	r.GET("/api/v1/tasks/today", authMiddleware(handlers.Task.Today))
	r.POST("/api/v1/tasks/{id}/complete", authMiddleware(handlers.Task.Complete))

	r.GET("/dashboard/today", handlers.Dashboard.Page)
	r.POST("/dashboard/today/tasks/{id}/complete", handlers.Dashboard.Complete)

	return middleware.Recover(logger)(middleware.CORS(r.Handler))
}
