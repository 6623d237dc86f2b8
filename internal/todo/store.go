package todo

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nibzard/todo-go/internal/isodate"
	"github.com/nibzard/todo-go/internal/kv"
	"github.com/nibzard/todo-go/internal/logging"
	"github.com/nibzard/todo-go/internal/persist"
)

// DefaultKey is the storage key for the task collection.
const DefaultKey = "@todo_tasks"

// Options configures a Store.
type Options struct {
	// Key is the storage key. Defaults to DefaultKey.
	Key string
	// Writer runs persistence writes. A private Writer is created when nil.
	Writer *persist.Writer
	// Logger receives hydration and persistence messages.
	Logger *log.Logger
	// Now returns the creation time for new tasks. Defaults to time.Now.
	Now func() time.Time
	// NewID returns a fresh task id. Defaults to a UUIDv7.
	NewID func() string
	// ValidateSchema checks the stored document against the task schema
	// while hydrating.
	ValidateSchema bool
}

// Store owns the task collection.
type Store struct {
	storage  kv.Storage
	key      string
	writer   *persist.Writer
	logger   *log.Logger
	now      func() time.Time
	newID    func() string
	validate bool

	mu      sync.RWMutex
	tasks   []Task
	loading bool
	ready   chan struct{}
}

// NewStore creates a Store and starts hydrating it from storage in the
// background. ctx bounds only the hydration read.
func NewStore(ctx context.Context, storage kv.Storage, opts Options) (*Store, error) {
	if storage == nil {
		return nil, ErrNoStorage
	}

	s := &Store{
		storage:  storage,
		key:      opts.Key,
		writer:   opts.Writer,
		logger:   opts.Logger,
		now:      opts.Now,
		newID:    opts.NewID,
		validate: opts.ValidateSchema,
		tasks:    []Task{},
		loading:  true,
		ready:    make(chan struct{}),
	}
	if s.key == "" {
		s.key = DefaultKey
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.writer == nil {
		s.writer = persist.NewWriter(storage, persist.Options{Logger: s.logger})
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = newUUID
	}

	go s.hydrate(ctx)
	return s, nil
}

func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// hydrate loads the stored collection once and ends the loading phase.
// Whatever was mutated in memory while loading is replaced.
func (s *Store) hydrate(ctx context.Context) {
	tasks := s.load(ctx)

	s.mu.Lock()
	s.tasks = tasks
	s.loading = false
	s.mu.Unlock()
	close(s.ready)
}

func (s *Store) load(ctx context.Context) []Task {
	raw, ok, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.logger.Error("error loading tasks", "key", s.key, "err", err)
		return []Task{}
	}
	if !ok {
		s.logger.Debug("no stored tasks", "key", s.key)
		return []Task{}
	}
	tasks, err := DecodeTasks(raw, DecodeOptions{ValidateSchema: s.validate})
	if err != nil {
		s.logger.Error("error loading tasks", "key", s.key, "err", err)
		return []Task{}
	}
	s.logger.Debug("loaded tasks", "key", s.key, "count", len(tasks))
	return tasks
}

// Loading reports whether hydration is still in progress.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Ready is closed once hydration has finished.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// WaitReady blocks until hydration has finished or ctx is done.
func (s *Store) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Writer returns the writer persistence goes through.
func (s *Store) Writer() *persist.Writer {
	return s.writer
}

// commitLocked schedules a write of the current collection. Must be
// called with s.mu held. Nothing is written while loading.
func (s *Store) commitLocked(op string) {
	if s.loading {
		s.logger.Debug("not persisting while loading", "op", op)
		return
	}
	payload, err := EncodeTasks(s.tasks)
	if err != nil {
		s.logger.Error("error saving tasks", "op", op, "err", err)
		return
	}
	s.writer.Schedule("tasks", s.key, payload)
}

func (s *Store) indexLocked(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// normalize copies t and brings its dates to what the stored form holds, so
// a task reads back equal after a reload. Due dates are calendar dates.
func normalize(t Task) Task {
	t = t.Clone()
	t.CreatedAt = isodate.Truncate(t.CreatedAt)
	if t.HasDueDate() {
		d := isodate.Date(*t.DueDate)
		t.DueDate = &d
	}
	return t
}

// Add appends a task with a fresh id and the current time as CreatedAt,
// and returns it.
func (s *Store) Add(in NewTask) Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for s.indexLocked(id) >= 0 {
		id = s.newID()
	}
	t := normalize(Task{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
		DueDate:     in.DueDate,
		CreatedAt:   s.now(),
	})

	s.tasks = append(s.tasks, t)
	s.commitLocked("add")
	return t.Clone()
}

// Update replaces the task with t.ID, keeping its position. It reports
// whether a task was replaced; an unknown id is a no-op.
func (s *Store) Update(t Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(t.ID)
	if i < 0 {
		return false
	}
	s.tasks[i] = normalize(t)
	s.commitLocked("update")
	return true
}

// Delete removes the task with id. It reports whether one was removed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	next := make([]Task, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:i]...)
	next = append(next, s.tasks[i+1:]...)
	s.tasks = next
	s.commitLocked("delete")
	return true
}

// Toggle flips Completed on the task with id. It reports whether one was
// found.
func (s *Store) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	s.commitLocked("toggle")
	return true
}

// Get returns the task with id.
func (s *Store) Get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// Tasks returns a copy of the collection in insertion order.
func (s *Store) Tasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Match returns the tasks whose id starts with prefix, in collection order.
func (s *Store) Match(prefix string) []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Task
	for _, t := range s.tasks {
		if strings.HasPrefix(t.ID, prefix) {
			out = append(out, t.Clone())
		}
	}
	return out
}
