package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/followups/domain"
	"github.com/fastygo/followups/internal/config"
	pgInfra "github.com/fastygo/followups/internal/infrastructure/postgres"
	"github.com/fastygo/followups/repository"
	"github.com/fastygo/followups/repository/boltdb"
	"github.com/fastygo/followups/repository/postgres"
)

// Stores bundles the repositories of one backing store with its health probe and closer.
type Stores struct {
	Driver       string
	Applications repository.ApplicationRepository
	Tasks        repository.TaskRepository
	Ping         func(ctx context.Context) error
	Close        func(ctx context.Context) error
}

// Open connects the configured driver. Postgres runs migrations first when enabled.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.ValidateStore(); err != nil {
		return nil, err
	}

	switch cfg.Store.Driver {
	case config.DriverBolt:
		db, err := boltdb.Open(cfg.Bolt.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("opened bolt store", zap.String("path", cfg.Bolt.Path))
		return &Stores{
			Driver:       config.DriverBolt,
			Applications: db.Applications(),
			Tasks:        db.Tasks(),
			Ping:         db.Ping,
			Close:        func(context.Context) error { return db.Close() },
		}, nil

	default:
		if err := pgInfra.RunMigrations(cfg, logger); err != nil {
			return nil, err
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Driver:       config.DriverPostgres,
			Applications: postgres.NewApplicationRepository(pool),
			Tasks:        postgres.NewTaskRepository(pool),
			Ping:         pool.Ping,
			Close: func(context.Context) error {
				pool.Close()
				logger.Info("postgres pool closed")
				return nil
			},
		}, nil
	}
}

// Unavailable stands in for a store that could not be opened. Every call fails
// with an internal error wrapping cause, so requests keep being answered.
func Unavailable(driver string, cause error) *Stores {
	err := domain.WrapError(domain.ErrCodeInternal, "store unavailable", cause)
	return &Stores{
		Driver:       driver,
		Applications: unavailableApplications{err: err},
		Tasks:        unavailableTasks{err: err},
		Ping:         func(context.Context) error { return err },
		Close:        func(context.Context) error { return nil },
	}
}

var (
	_ repository.ApplicationRepository = unavailableApplications{}
	_ repository.TaskRepository        = unavailableTasks{}
)

type unavailableApplications struct {
	err error
}

func (u unavailableApplications) GetByID(context.Context, string) (*domain.Application, error) {
	return nil, u.err
}

type unavailableTasks struct {
	err error
}

func (u unavailableTasks) GetByID(context.Context, string) (*domain.Task, error) {
	return nil, u.err
}

func (u unavailableTasks) ListDue(context.Context, repository.TaskFilter) ([]domain.Task, error) {
	return nil, u.err
}

func (u unavailableTasks) Create(context.Context, *domain.Task) (*domain.Task, error) {
	return nil, u.err
}

func (u unavailableTasks) Complete(context.Context, string, time.Time) error {
	return u.err
}
