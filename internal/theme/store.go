package theme

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/kv"
	"github.com/nibzard/todo-go/internal/logging"
	"github.com/nibzard/todo-go/internal/persist"
)

// DefaultKey is the storage key for the theme name.
const DefaultKey = "@todo_theme"

// ErrNoStorage is returned by NewStore when storage is nil.
var ErrNoStorage = errors.New("theme: storage is required")

// Options configures a Store.
type Options struct {
	Key    string
	Writer *persist.Writer
	Logger *log.Logger
}

// Store owns the active theme.
type Store struct {
	storage kv.Storage
	key     string
	writer  *persist.Writer
	logger  *log.Logger

	mu      sync.RWMutex
	name    Name
	palette Palette
	loading bool
	ready   chan struct{}
}

// NewStore creates a Store on the default theme and starts hydrating it in
// the background.
func NewStore(ctx context.Context, storage kv.Storage, opts Options) (*Store, error) {
	if storage == nil {
		return nil, ErrNoStorage
	}
	s := &Store{
		storage: storage,
		key:     opts.Key,
		writer:  opts.Writer,
		logger:  opts.Logger,
		name:    Default,
		palette: PaletteFor(Default),
		loading: true,
		ready:   make(chan struct{}),
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

	go s.hydrate(ctx)
	return s, nil
}

func (s *Store) hydrate(ctx context.Context) {
	name := s.load(ctx)

	s.mu.Lock()
	s.name = name
	s.palette = PaletteFor(name)
	s.loading = false
	s.mu.Unlock()
	close(s.ready)
}

// load accepts only the exact stored literals.
func (s *Store) load(ctx context.Context) Name {
	raw, ok, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.logger.Error("error loading theme", "key", s.key, "err", err)
		return Default
	}
	if !ok {
		return Default
	}
	if n := Name(raw); n.Valid() {
		return n
	}
	s.logger.Warn("ignoring stored theme", "key", s.key, "value", raw)
	return Default
}

// Theme returns the active theme name.
func (s *Store) Theme() Name {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// Colors returns the palette of the active theme.
func (s *Store) Colors() Palette {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.palette
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

// Toggle switches between light and dark and returns the new theme.
func (s *Store) Toggle() Name {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(s.name.Other())
	return s.name
}

// Set selects n. Unknown names are ignored, and selecting the active theme
// writes nothing.
func (s *Store) Set(n Name) {
	if !n.Valid() {
		s.logger.Warn("ignoring unknown theme", "theme", string(n))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n == s.name {
		return
	}
	s.setLocked(n)
}

func (s *Store) setLocked(n Name) {
	s.name = n
	s.palette = PaletteFor(n)
	if s.loading {
		s.logger.Debug("not persisting theme while loading", "theme", string(n))
		return
	}
	s.writer.Schedule("theme", s.key, string(n))
}
