package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// exerciseStorage runs the behaviour every backend must share.
func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		v, ok, err := s.Get(ctx, "@never_written")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if ok || v != "" {
			t.Fatalf("Get missing: got (%q, %v), want (\"\", false)", v, ok)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		if err := s.Set(ctx, "@todo_theme", "dark"); err != nil {
			t.Fatalf("Set: %v", err)
		}
		v, ok, err := s.Get(ctx, "@todo_theme")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !ok || v != "dark" {
			t.Fatalf("Get: got (%q, %v), want (dark, true)", v, ok)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		if err := s.Set(ctx, "@todo_theme", "light"); err != nil {
			t.Fatalf("Set: %v", err)
		}
		v, _, err := s.Get(ctx, "@todo_theme")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if v != "light" {
			t.Fatalf("Get after overwrite: got %q, want light", v)
		}
	})

	t.Run("empty value is present", func(t *testing.T) {
		if err := s.Set(ctx, "empty", ""); err != nil {
			t.Fatalf("Set: %v", err)
		}
		v, ok, err := s.Get(ctx, "empty")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !ok || v != "" {
			t.Fatalf("Get empty: got (%q, %v), want (\"\", true)", v, ok)
		}
	})

	t.Run("json payload", func(t *testing.T) {
		payload := `[{"id":"1","title":"Buy milk","completed":false,"createdAt":"2024-01-01T00:00:00.000Z"}]`
		if err := s.Set(ctx, "@todo_tasks", payload); err != nil {
			t.Fatalf("Set: %v", err)
		}
		v, _, err := s.Get(ctx, "@todo_tasks")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if v != payload {
			t.Fatalf("Get: got %q, want %q", v, payload)
		}
	})

	t.Run("concurrent sets", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if err := s.Set(ctx, "race", fmt.Sprintf("v%d", i)); err != nil {
					t.Errorf("Set: %v", err)
				}
			}(i)
		}
		wg.Wait()
		v, ok, err := s.Get(ctx, "race")
		if err != nil || !ok {
			t.Fatalf("Get: (%q, %v, %v)", v, ok, err)
		}
		if len(v) < 2 || v[0] != 'v' {
			t.Fatalf("Get: got %q, want one of the written values", v)
		}
	})
}

func TestMemoryStorage(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()
	exerciseStorage(t, s)
}

func TestFileStorage(t *testing.T) {
	s, err := NewFileStorage(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("NewFileStorage: %v", err)
	}
	defer s.Close()
	exerciseStorage(t, s)
}

func TestSQLiteStorage(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStorage(ctx, filepath.Join(t.TempDir(), "nested", "todo.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	defer s.Close()
	exerciseStorage(t, s)
}

func TestRedisStorage(t *testing.T) {
	addr := os.Getenv("TODO_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TODO_TEST_REDIS_ADDR not set")
	}
	prefix := fmt.Sprintf("todo-test:%d:", time.Now().UnixNano())
	s, err := NewRedisStorage(context.Background(), RedisOptions{Addr: addr, Prefix: prefix})
	if err != nil {
		t.Fatalf("NewRedisStorage: %v", err)
	}
	defer s.Close()
	exerciseStorage(t, s)
}

func TestPostgresStorage(t *testing.T) {
	dsn := os.Getenv("TODO_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TODO_TEST_PG_DSN not set")
	}
	s, err := NewPostgresStorage(context.Background(), dsn)
	if err != nil {
		t.Fatalf("NewPostgresStorage: %v", err)
	}
	defer s.Close()
	exerciseStorage(t, s)
}

func TestFileStoragePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewFileStorage(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Set(ctx, "@todo_theme", "dark"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	first.Close()

	second, err := NewFileStorage(dir)
	if err != nil {
		t.Fatal(err)
	}
	v, ok, err := second.Get(ctx, "@todo_theme")
	if err != nil || !ok || v != "dark" {
		t.Fatalf("Get: got (%q, %v, %v), want (dark, true, nil)", v, ok, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"@todo_tasks", "@todo_tasks"},
		{"@todo_theme", "@todo_theme"},
		{"a/b", "a%2Fb"},
		{"..", "_.."},
		{"", "_"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := fileName(tt.key); got != tt.want {
				t.Errorf("fileName(%q): got %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestFileStorageClosed(t *testing.T) {
	s, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s.Close()
	if err := s.Set(context.Background(), "k", "v"); !errors.Is(err, ErrClosed) {
		t.Fatalf("Set after Close: got %v, want ErrClosed", err)
	}
}

func TestMemoryStorageFaults(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	boom := errors.New("boom")

	s.FailSets(boom)
	if err := s.Set(ctx, "k", "v"); !errors.Is(err, boom) {
		t.Fatalf("Set: got %v, want boom", err)
	}
	if _, ok := s.Value("k"); ok {
		t.Fatal("failed Set must not store the value")
	}
	s.FailSets(nil)

	s.Put("k", "v")
	s.FailGets(boom)
	if _, _, err := s.Get(ctx, "k"); !errors.Is(err, boom) {
		t.Fatalf("Get: got %v, want boom", err)
	}
	s.FailGets(nil)

	gets, sets := s.Stats()
	if gets != 1 || sets != 1 {
		t.Fatalf("Stats: got (%d, %d), want (1, 1)", gets, sets)
	}
}

func TestMemoryStorageHoldGets(t *testing.T) {
	s := NewMemoryStorage()
	s.Put("k", "v")
	release := s.HoldGets()

	done := make(chan string, 1)
	go func() {
		v, _, _ := s.Get(context.Background(), "k")
		done <- v
	}()

	select {
	case <-done:
		t.Fatal("Get returned while held")
	case <-time.After(20 * time.Millisecond):
	}

	release()
	release() // idempotent
	select {
	case v := <-done:
		if v != "v" {
			t.Fatalf("Get: got %q, want v", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Get did not return after release")
	}
}

func TestMemoryStorageHoldGetsHonoursContext(t *testing.T) {
	s := NewMemoryStorage()
	release := s.HoldGets()
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, _, err := s.Get(ctx, "k"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Get: got %v, want DeadlineExceeded", err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default is file", Config{Dir: dir}, false},
		{"file", Config{Backend: BackendFile, Dir: dir}, false},
		{"memory", Config{Backend: BackendMemory}, false},
		{"sqlite", Config{Backend: BackendSQLite, SQLitePath: filepath.Join(dir, "kv.db")}, false},
		{"file without dir", Config{Backend: BackendFile}, true},
		{"redis without addr", Config{Backend: BackendRedis}, true},
		{"postgres without dsn", Config{Backend: BackendPostgres}, true},
		{"unknown", Config{Backend: "etcd"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.cfg)
			if tt.wantErr {
				if err == nil {
					s.Close()
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			s.Close()
		})
	}
}
