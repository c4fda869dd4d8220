package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Check tests one dependency; a nil error means healthy.
type Check func(ctx context.Context) error

type dependency struct {
	name    string
	check   Check
	timeout time.Duration
}

// Monitor periodically checks registered dependencies on a cron schedule and
// caches the result for the health endpoint.
type Monitor struct {
	deps []dependency

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	cron     *cron.Cron
	logger   *zap.Logger
}

func New(interval time.Duration, logger *zap.Logger) *Monitor {
	if interval < time.Second {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		interval: interval,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger,
		status:   Status{Checks: map[string]bool{}},
	}
}

// Register adds a named check. It must be called before Start.
func (m *Monitor) Register(name string, timeout time.Duration, check Check) {
	if check == nil {
		return
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	m.deps = append(m.deps, dependency{name: name, check: check, timeout: timeout})
}

// Start runs one refresh immediately and then schedules the rest.
func (m *Monitor) Start() error {
	m.Refresh(context.Background())
	schedule := fmt.Sprintf("@every %ds", int(m.interval.Seconds()))
	if _, err := m.cron.AddFunc(schedule, func() { m.Refresh(context.Background()) }); err != nil {
		return err
	}
	m.cron.Start()
	m.logger.Info("health monitor started", zap.Duration("interval", m.interval))
	return nil
}

// Stop halts the schedule and waits for a running refresh, bounded by ctx.
func (m *Monitor) Stop(ctx context.Context) {
	stopCtx := m.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}

// IsOnline reports whether every registered check passed on the last refresh.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := Status{Checks: make(map[string]bool, len(m.status.Checks)), LastCheck: m.status.LastCheck}
	for k, v := range m.status.Checks {
		out.Checks[k] = v
	}
	return out
}

// Refresh checks every dependency once.
func (m *Monitor) Refresh(ctx context.Context) {
	checks := make(map[string]bool, len(m.deps))
	for _, p := range m.deps {
		checks[p.name] = m.run(ctx, p)
	}

	m.mu.Lock()
	m.status = Status{Checks: checks, LastCheck: time.Now()}
	m.mu.Unlock()
}

func (m *Monitor) run(ctx context.Context, p dependency) bool {
	checkCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.check(checkCtx); err != nil {
		m.logger.Warn("dependency check failed", zap.String("dependency", p.name), zap.Error(err))
		return false
	}
	return true
}
