package boltdb

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/followups/domain"
	"github.com/fastygo/followups/repository"
)

var (
	applicationsBucket = []byte("applications")
	tasksBucket        = []byte("tasks")
)

// Store keeps applications and tasks in a single BoltDB file. It backs the
// embedded store driver and the test suites.
type Store struct {
	db  *bolt.DB
	now func() time.Time
}

var (
	_ repository.ApplicationRepository = (*Applications)(nil)
	_ repository.TaskRepository        = (*Tasks)(nil)
)

// Open initializes the BoltDB file and ensures both buckets exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{applicationsBucket, tasksBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

// Applications returns the application repository view of the store.
func (s *Store) Applications() *Applications {
	return &Applications{store: s}
}

// Tasks returns the task repository view of the store.
func (s *Store) Tasks() *Tasks {
	return &Tasks{store: s}
}

// Ping verifies the database file is still readable.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(tasksBucket) == nil {
			return bolt.ErrBucketNotFound
		}
		return nil
	})
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Applications is the ApplicationRepository backed by the applications bucket.
type Applications struct {
	store *Store
}

func (a *Applications) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	var app domain.Application
	found, err := a.store.get(ctx, applicationsBucket, id, &app)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrApplicationNotFound
	}
	return &app, nil
}

// Put upserts an application. Applications are owned elsewhere; this is how
// they get mirrored into an embedded store.
func (a *Applications) Put(ctx context.Context, app domain.Application) error {
	if app.ID == "" {
		return domain.ErrInvalidPayload
	}
	return a.store.put(ctx, applicationsBucket, app.ID, app)
}

// Tasks is the TaskRepository backed by the tasks bucket.
type Tasks struct {
	store *Store
}

func (t *Tasks) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	found, err := t.store.get(ctx, tasksBucket, id, &task)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrTaskNotFound
	}
	return &task, nil
}

func (t *Tasks) ListDue(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tasks := make([]domain.Task, 0)
	err := t.store.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(tasksBucket).ForEach(func(_, v []byte) error {
			var task domain.Task
			if err := json.Unmarshal(v, &task); err != nil {
				return err
			}
			if filter.Matches(&task) {
				tasks = append(tasks, task)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].DueAt.Before(tasks[j].DueAt)
	})
	return tasks, nil
}

func (t *Tasks) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.CreatedAt = t.store.now().UTC()

	if err := t.store.put(ctx, tasksBucket, task.ID, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (t *Tasks) Complete(ctx context.Context, id string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.store.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(tasksBucket)
		raw := b.Get([]byte(id))
		if raw == nil {
			return domain.ErrTaskNotFound
		}
		var task domain.Task
		if err := json.Unmarshal(raw, &task); err != nil {
			return err
		}
		if !task.Complete(at) {
			return nil
		}
		payload, err := json.Marshal(task)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), payload)
	})
}

func (s *Store) get(ctx context.Context, bucket []byte, id string, dst interface{}) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucket).Get([]byte(id))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, dst)
	})
	return found, err
}

func (s *Store) put(ctx context.Context, bucket []byte, id string, value interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(id), payload)
	})
}
