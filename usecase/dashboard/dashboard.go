package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/followups/domain"
)

// Phase is the dashboard's display state.
type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseFailed  Phase = "failed"
)

// Event drives a phase change.
type Event string

const (
	EventReload Event = "reload"
	EventLoaded Event = "loaded"
	EventFailed Event = "failed"
)

var transitions = map[Phase]map[Event]Phase{
	PhaseLoading: {EventLoaded: PhaseReady, EventFailed: PhaseFailed},
	PhaseReady:   {EventReload: PhaseLoading, EventFailed: PhaseFailed},
	PhaseFailed:  {EventReload: PhaseLoading, EventFailed: PhaseFailed},
}

// Next returns the phase reached from p on e, or an error when the table has no such edge.
func Next(p Phase, e Event) (Phase, error) {
	next, ok := transitions[p][e]
	if !ok {
		return p, fmt.Errorf("dashboard: no transition from %s on %s", p, e)
	}
	return next, nil
}

// Tasks is the slice of the task use case the dashboard drives.
type Tasks interface {
	ListDueToday(ctx context.Context) ([]domain.Task, error)
	CompleteTask(ctx context.Context, id string) error
}

// Item is one rendered row.
type Item struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Due           string `json:"due"`
	ApplicationID string `json:"application_id"`
	Status        string `json:"status"`
}

// State is a snapshot of what the page shows.
type State struct {
	Phase Phase  `json:"phase"`
	Items []Item `json:"items,omitempty"`
	Error string `json:"error,omitempty"`
}

// Dashboard lists today's open tasks and completes them. Commands on one instance
// are serialised; the displayed list only ever reflects a confirmed fetch.
type Dashboard struct {
	tasks    Tasks
	location *time.Location
	logger   *zap.Logger

	mu    sync.Mutex
	state State
}

func New(tasks Tasks, location *time.Location, logger *zap.Logger) *Dashboard {
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dashboard{
		tasks:    tasks,
		location: location,
		logger:   logger,
		state:    State{Phase: PhaseLoading},
	}
}

// State returns a copy of the current snapshot.
func (d *Dashboard) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.state
	out.Items = append([]Item(nil), d.state.Items...)
	return out
}

// Reload fetches today's tasks and moves to Ready or Failed.
func (d *Dashboard) Reload(ctx context.Context) State {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reload(ctx)
	return d.state
}

// Complete marks a task completed and then refetches. An update failure leaves the
// dashboard Failed with the fault's message and skips the refetch. A completion that
// overlaps another one for the same task just refetches.
func (d *Dashboard) Complete(ctx context.Context, id string) State {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.tasks.CompleteTask(ctx, id); err != nil && !domain.IsDomainError(err, domain.ErrCodeConflict) {
		d.logger.Warn("dashboard completion failed", zap.String("task_id", id), zap.Error(err))
		d.fail(err)
		return d.state
	}
	d.reload(ctx)
	return d.state
}

func (d *Dashboard) reload(ctx context.Context) {
	if d.state.Phase != PhaseLoading {
		d.apply(EventReload)
	}
	d.state.Error = ""

	tasks, err := d.tasks.ListDueToday(ctx)
	if err != nil {
		d.logger.Warn("dashboard fetch failed", zap.Error(err))
		d.fail(err)
		return
	}

	items := make([]Item, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, Item{
			ID:            task.ID,
			Type:          string(task.Type),
			Due:           FormatDue(task.DueAt, d.location),
			ApplicationID: task.ApplicationID,
			Status:        string(task.Status),
		})
	}
	d.apply(EventLoaded)
	d.state.Items = items
}

func (d *Dashboard) fail(err error) {
	d.apply(EventFailed)
	d.state.Items = nil
	d.state.Error = err.Error()
}

func (d *Dashboard) apply(e Event) {
	next, err := Next(d.state.Phase, e)
	if err != nil {
		// Every command path goes through a legal edge; reaching here is a bug.
		panic(err)
	}
	d.state.Phase = next
}

// FormatDue renders the due time as a 12-hour clock reading, e.g. "3:04 PM".
func FormatDue(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("3:04 PM")
}
