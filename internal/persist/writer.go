package persist

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/kv"
	"github.com/nibzard/todo-go/internal/logging"
)

// Result describes one finished write.
type Result struct {
	Seq      uint64
	Label    string
	Key      string
	Err      error
	Duration time.Duration
}

// Stats counts writes over the Writer's lifetime.
type Stats struct {
	Scheduled int
	Completed int
	Failed    int
	InFlight  int
	LastErr   error
}

// Options configures a Writer.
type Options struct {
	// MaxInFlight bounds concurrent writes. 0 means unbounded.
	MaxInFlight int
	// Timeout bounds each write. 0 means no timeout.
	Timeout time.Duration
	// Logger receives failures (error) and completions (debug).
	Logger *log.Logger
	// OnResult, when set, is called after each write finishes.
	OnResult func(Result)
}

// Writer schedules best-effort background writes to a kv.Storage.
type Writer struct {
	storage   kv.Storage
	opts      Options
	logger    *log.Logger
	semaphore chan struct{}
	wg        sync.WaitGroup

	mu     sync.Mutex
	seq    uint64
	stats  Stats
	closed bool
}

// NewWriter creates a Writer over storage.
func NewWriter(storage kv.Storage, opts Options) *Writer {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	w := &Writer{
		storage: storage,
		opts:    opts,
		logger:  logger,
	}
	if opts.MaxInFlight > 0 {
		w.semaphore = make(chan struct{}, opts.MaxInFlight)
	}
	return w
}

// Schedule starts writing value under key in the background and returns
// at once. label names the source of the write in logs.
func (w *Writer) Schedule(label, key, value string) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.logger.Warn("write dropped: writer closed", "label", label, "key", key)
		return
	}
	w.seq++
	seq := w.seq
	w.stats.Scheduled++
	w.stats.InFlight++
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()

		// Acquire semaphore slot
		if w.semaphore != nil {
			w.semaphore <- struct{}{}
			defer func() { <-w.semaphore }()
		}

		ctx := context.Background()
		if w.opts.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, w.opts.Timeout)
			defer cancel()
		}

		start := time.Now()
		err := w.storage.Set(ctx, key, value)
		result := Result{
			Seq:      seq,
			Label:    label,
			Key:      key,
			Err:      err,
			Duration: time.Since(start),
		}

		w.mu.Lock()
		w.stats.InFlight--
		w.stats.Completed++
		if err != nil {
			w.stats.Failed++
			w.stats.LastErr = err
		}
		w.mu.Unlock()

		if err != nil {
			w.logger.Error("error saving "+label, "key", key, "seq", seq, "err", err)
		} else {
			w.logger.Debug("saved "+label, "key", key, "seq", seq, "bytes", len(value), "took", result.Duration)
		}
		if w.opts.OnResult != nil {
			w.opts.OnResult(result)
		}
	}()
}

// Wait blocks until every scheduled write has finished.
func (w *Writer) Wait() {
	w.wg.Wait()
}

// WaitContext is Wait bounded by ctx. Writes still in flight when ctx ends
// keep running.
func (w *Writer) WaitContext(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns a snapshot of the write counters.
func (w *Writer) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Close stops accepting writes and waits for in-flight ones.
func (w *Writer) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.wg.Wait()
}
