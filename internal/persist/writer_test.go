package persist

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/kv"
	"github.com/nibzard/todo-go/internal/logging"
)

// gatedStorage blocks each Set until the gate for its value is opened.
type gatedStorage struct {
	*kv.MemoryStorage

	mu    sync.Mutex
	gates map[string]chan struct{}
}

func newGatedStorage(values ...string) *gatedStorage {
	g := &gatedStorage{MemoryStorage: kv.NewMemoryStorage(), gates: make(map[string]chan struct{})}
	for _, v := range values {
		g.gates[v] = make(chan struct{})
	}
	return g
}

func (g *gatedStorage) open(value string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	close(g.gates[value])
}

func (g *gatedStorage) Set(ctx context.Context, key, value string) error {
	g.mu.Lock()
	gate := g.gates[value]
	g.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return g.MemoryStorage.Set(ctx, key, value)
}

func newTestLogger(buf *bytes.Buffer) *log.Logger {
	return logging.NewTest(buf)
}

func TestWriter_ScheduleAndWait(t *testing.T) {
	t.Run("single write lands", func(t *testing.T) {
		store := kv.NewMemoryStorage()
		w := NewWriter(store, Options{})

		w.Schedule("tasks", "@todo_tasks", "[]")
		w.Wait()

		if v, ok := store.Value("@todo_tasks"); !ok || v != "[]" {
			t.Fatalf("stored value: got (%q, %v), want ([], true)", v, ok)
		}
		stats := w.Stats()
		if stats.Scheduled != 1 || stats.Completed != 1 || stats.Failed != 0 || stats.InFlight != 0 {
			t.Errorf("unexpected stats: %+v", stats)
		}
	})

	t.Run("schedule does not block on a slow write", func(t *testing.T) {
		store := newGatedStorage("slow")
		w := NewWriter(store, Options{})

		done := make(chan struct{})
		go func() {
			w.Schedule("tasks", "k", "slow")
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Schedule blocked on in-flight write")
		}
		if got := w.Stats().InFlight; got != 1 {
			t.Errorf("InFlight: got %d, want 1", got)
		}
		store.open("slow")
		w.Wait()
	})
}

func TestWriter_LastCompletedWins(t *testing.T) {
	store := newGatedStorage("first", "second")

	var order []string
	var mu sync.Mutex
	w := NewWriter(store, Options{OnResult: func(r Result) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, r.Label)
	}})

	w.Schedule("first", "k", "first")
	w.Schedule("second", "k", "second")

	// The later write finishes first; the earlier one then overwrites it.
	store.open("second")
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 1
	})
	store.open("first")
	w.Wait()

	if v, _ := store.Value("k"); v != "first" {
		t.Fatalf("stored value: got %q, want first (last to complete)", v)
	}
	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Fatalf("completion order: got %v, want [second first]", order)
	}
}

func TestWriter_FailureIsLoggedNotReturned(t *testing.T) {
	var buf bytes.Buffer
	store := kv.NewMemoryStorage()
	boom := errors.New("disk full")
	store.FailSets(boom)

	w := NewWriter(store, Options{Logger: newTestLogger(&buf)})
	w.Schedule("tasks", "@todo_tasks", "[]")
	w.Wait()

	stats := w.Stats()
	if stats.Failed != 1 {
		t.Fatalf("Failed: got %d, want 1", stats.Failed)
	}
	if !errors.Is(stats.LastErr, boom) {
		t.Fatalf("LastErr: got %v, want %v", stats.LastErr, boom)
	}
	out := buf.String()
	if !strings.Contains(out, "ERRO") || !strings.Contains(out, "error saving tasks") {
		t.Errorf("expected error log, got: %s", out)
	}
	if !strings.Contains(out, "disk full") {
		t.Errorf("expected cause in log, got: %s", out)
	}
}

func TestWriter_Timeout(t *testing.T) {
	store := newGatedStorage("never")
	w := NewWriter(store, Options{Timeout: 20 * time.Millisecond})

	w.Schedule("theme", "k", "never")
	w.Wait()

	stats := w.Stats()
	if stats.Failed != 1 || !errors.Is(stats.LastErr, context.DeadlineExceeded) {
		t.Fatalf("expected deadline failure, got %+v", stats)
	}
}

func TestWriter_MaxInFlight(t *testing.T) {
	var current, peak int32
	store := &countingStorage{MemoryStorage: kv.NewMemoryStorage(), current: &current, peak: &peak}
	w := NewWriter(store, Options{MaxInFlight: 2})

	for i := 0; i < 10; i++ {
		w.Schedule("tasks", "k", "v")
	}
	w.Wait()

	if got := atomic.LoadInt32(&peak); got > 2 {
		t.Fatalf("peak concurrency: got %d, want <= 2", got)
	}
	if got := w.Stats().Completed; got != 10 {
		t.Fatalf("Completed: got %d, want 10", got)
	}
}

func TestWriter_Close(t *testing.T) {
	var buf bytes.Buffer
	store := kv.NewMemoryStorage()
	w := NewWriter(store, Options{Logger: newTestLogger(&buf)})

	w.Schedule("tasks", "k", "before")
	w.Close()
	w.Schedule("tasks", "k", "after")
	w.Wait()

	if v, _ := store.Value("k"); v != "before" {
		t.Fatalf("stored value: got %q, want before", v)
	}
	if got := w.Stats().Scheduled; got != 1 {
		t.Fatalf("Scheduled: got %d, want 1", got)
	}
	if !strings.Contains(buf.String(), "writer closed") {
		t.Errorf("expected dropped-write warning, got: %s", buf.String())
	}
}

func TestWriter_WaitContext(t *testing.T) {
	store := newGatedStorage("stuck")
	w := NewWriter(store, Options{})
	w.Schedule("tasks", "k", "stuck")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := w.WaitContext(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("WaitContext: got %v, want DeadlineExceeded", err)
	}

	store.open("stuck")
	if err := w.WaitContext(context.Background()); err != nil {
		t.Fatalf("WaitContext after release: %v", err)
	}
}

type countingStorage struct {
	*kv.MemoryStorage
	current *int32
	peak    *int32
}

func (c *countingStorage) Set(ctx context.Context, key, value string) error {
	n := atomic.AddInt32(c.current, 1)
	for {
		p := atomic.LoadInt32(c.peak)
		if n <= p || atomic.CompareAndSwapInt32(c.peak, p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	atomic.AddInt32(c.current, -1)
	return c.MemoryStorage.Set(ctx, key, value)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
