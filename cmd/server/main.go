package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/followups/api/handler"
	"github.com/fastygo/followups/internal/config"
	"github.com/fastygo/followups/internal/infrastructure/monitor"
	redisInfra "github.com/fastygo/followups/internal/infrastructure/redis"
	"github.com/fastygo/followups/internal/infrastructure/store"
	"github.com/fastygo/followups/internal/middleware"
	"github.com/fastygo/followups/internal/router"
	"github.com/fastygo/followups/internal/services/lifecycle"
	"github.com/fastygo/followups/pkg/httpcontext"
	"github.com/fastygo/followups/pkg/logger"
	"github.com/fastygo/followups/repository"
	redisRepo "github.com/fastygo/followups/repository/redis"
	dashboardUC "github.com/fastygo/followups/usecase/dashboard"
	taskUC "github.com/fastygo/followups/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
		Service:     cfg.AppName,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, cancel := manager.Listen(context.Background())
	defer cancel()

	// A store that cannot be opened does not stop the process; requests get internal_error.
	stores, err := store.Open(appCtx, cfg, zapLogger)
	if err != nil {
		zapLogger.Error("store unavailable, serving internal errors", zap.String("driver", cfg.Store.Driver), zap.Error(err))
		stores = store.Unavailable(cfg.Store.Driver, err)
	}
	manager.Register("store", stores.Close)

	mon := monitor.New(cfg.Monitor.Interval, zapLogger)
	mon.Register(stores.Driver, 3*time.Second, stores.Ping)

	var guard repository.CompletionGuard
	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis)
	switch {
	case errors.Is(err, redisInfra.ErrDisabled):
		zapLogger.Info("redis not configured, completion lock disabled")
	case err != nil:
		zapLogger.Warn("redis connection failed, completion lock disabled", zap.Error(err))
	default:
		guard = redisRepo.NewCompletionLock(redisClient, cfg.Redis.LockTTL)
		mon.Register("redis", 3*time.Second, func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
		manager.Register("redis", func(context.Context) error {
			return redisClient.Close()
		})
	}

	if err := mon.Start(); err != nil {
		zapLogger.Fatal("health monitor failed to start", zap.Error(err))
	}
	if !mon.IsOnline() {
		zapLogger.Warn("starting with unhealthy dependencies", zap.Any("checks", mon.GetStatus().Checks))
	}
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop(ctx)
		return nil
	})

	location := cfg.Dashboard.Location
	taskUseCase := taskUC.New(stores.Applications, stores.Tasks, guard, location, zapLogger)
	dashboard := dashboardUC.New(taskUseCase, location, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Task:      apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Dashboard: apiHandler.NewDashboardHandler(dashboard, ctxAdapter, zapLogger),
		Health:    apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.Passthrough
	if cfg.JWT.Secret != "" {
		authMiddleware = middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	}

	server := &fasthttp.Server{
		Handler:      router.New(handlers, authMiddleware, zapLogger),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("store", stores.Driver),
			zap.String("timezone", location.String()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Error("server stopped", zap.Error(err))
			cancel()
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
