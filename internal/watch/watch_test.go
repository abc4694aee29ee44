package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunRebuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	var rebuilds atomic.Int32
	done := make(chan struct{}, 16)

	w := New(Config{
		Patterns: []string{filepath.Join(dir, "*.log")},
		Debounce: 50 * time.Millisecond,
		Rebuild: func(context.Context) error {
			rebuilds.Add(1)
			done <- struct{}{}
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	// A burst of writes collapses into one rebuild.
	p := filepath.Join(dir, "app.log")
	for i := range 5 {
		if err := os.WriteFile(p, []byte{byte('a' + i), '\n'}, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	// Non-matching files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("no rebuild after writes")
	}
	time.Sleep(200 * time.Millisecond)
	if n := rebuilds.Load(); n != 1 {
		t.Errorf("rebuilds = %d, want 1", n)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunPolls(t *testing.T) {
	done := make(chan struct{}, 16)
	w := New(Config{
		Patterns:     []string{filepath.Join(t.TempDir(), "*.log")},
		PollInterval: 20 * time.Millisecond,
		Rebuild: func(context.Context) error {
			done <- struct{}{}
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	for range 2 {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("poll did not trigger a rebuild")
		}
	}
}
