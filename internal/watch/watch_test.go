package watch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}

func TestWatch_BurstCoalesced(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notes.json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var passes atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, file, 200*time.Millisecond, quietLogger(), func(context.Context) error {
			passes.Add(1)
			return nil
		})
	}()
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		_ = os.WriteFile(file, []byte(`{"notes":[]}`), 0o644)
		time.Sleep(20 * time.Millisecond)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return passes.Load() >= 1
	}, "pass not triggered by change")
	time.Sleep(400 * time.Millisecond)
	if n := passes.Load(); n != 1 {
		t.Errorf("passes = %d, want 1 for one burst", n)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("watcher did not stop after cancel")
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notes.json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var passes atomic.Int32
	go Watch(ctx, file, 50*time.Millisecond, quietLogger(), func(context.Context) error {
		passes.Add(1)
		return nil
	})
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o644)
	time.Sleep(300 * time.Millisecond)
	if n := passes.Load(); n != 0 {
		t.Errorf("passes = %d, want 0", n)
	}
}

func TestWatch_PassErrorKeepsWatching(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notes.json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var passes atomic.Int32
	go Watch(ctx, file, 50*time.Millisecond, quietLogger(), func(context.Context) error {
		passes.Add(1)
		return errors.New("boom")
	})
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(file, []byte("a"), 0o644)
	eventually(t, 5*time.Second, 20*time.Millisecond, func() bool { return passes.Load() == 1 }, "first pass missing")
	_ = os.WriteFile(file, []byte("b"), 0o644)
	eventually(t, 5*time.Second, 20*time.Millisecond, func() bool { return passes.Load() == 2 }, "second pass missing")
}

func TestWatch_MissingDir(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "notes.json"), 0, quietLogger(), nil)
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
