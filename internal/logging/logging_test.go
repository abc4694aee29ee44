package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger == nil {
		t.Fatal("Discard() returned nil")
	}

	// Should not panic when logging.
	logger.Info("test message")
	logger.Debug("debug message")
}

func TestDefault(t *testing.T) {
	t.Run("nil returns discard", func(t *testing.T) {
		logger := Default(nil)
		if logger == nil {
			t.Fatal("Default(nil) returned nil")
		}
		// Verify it's a discard logger by checking Enabled returns false.
		if logger.Enabled(context.Background(), slog.LevelInfo) {
			t.Error("Default(nil) should return a discard logger")
		}
	})

	t.Run("non-nil returns same logger", func(t *testing.T) {
		var buf bytes.Buffer
		original := slog.New(slog.NewTextHandler(&buf, nil))
		result := Default(original)
		if result != original {
			t.Error("Default should return the same logger when non-nil")
		}
	})
}

func TestFor(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(NewComponentFilterHandler(slog.NewTextHandler(&buf, nil), slog.LevelInfo))
	For(base, "search").Info("finished")
	if !strings.Contains(buf.String(), "component=search") {
		t.Errorf("output %q lacks component attribute", buf.String())
	}
	if For(nil, "search").Enabled(context.Background(), slog.LevelError) {
		t.Error("For(nil) should discard")
	}
}

// captureHandler captures log records for testing.
// Uses a shared records pointer so WithAttrs clones share the same storage.
type captureHandler struct {
	mu      *sync.Mutex
	records *[]slog.Record
	attrs   []slog.Attr
}

func newCaptureHandler() *captureHandler {
	var mu sync.Mutex
	var records []slog.Record
	return &captureHandler{
		mu:      &mu,
		records: &records,
	}
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	*h.records = append(*h.records, r)
	return nil
}

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)
	return &captureHandler{
		mu:      h.mu,
		records: h.records, // Share the same records slice.
		attrs:   newAttrs,
	}
}

func (h *captureHandler) WithGroup(name string) slog.Handler {
	return h
}

func (h *captureHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(*h.records)
}

func TestComponentFilterHandler_Filtering(t *testing.T) {
	type entry struct {
		component string // empty logs without the attribute
		level     slog.Level
		want      bool
	}
	tests := []struct {
		name    string
		setup   func(f *ComponentFilterHandler)
		entries []entry
	}{
		{
			name: "default level",
			entries: []entry{
				{"translate", slog.LevelInfo, true},
				{"translate", slog.LevelDebug, false},
				{"translate", slog.LevelWarn, true},
				{"", slog.LevelInfo, true},
				{"", slog.LevelDebug, false},
			},
		},
		{
			name:  "component override",
			setup: func(f *ComponentFilterHandler) { f.SetLevel("search", slog.LevelDebug) },
			entries: []entry{
				{"search", slog.LevelDebug, true},
				{"translate", slog.LevelDebug, false},
			},
		},
		{
			name: "cleared override",
			setup: func(f *ComponentFilterHandler) {
				f.SetLevel("search", slog.LevelDebug)
				f.ClearLevel("search")
				f.ClearLevel("never-set")
			},
			entries: []entry{
				{"search", slog.LevelDebug, false},
				{"never-set", slog.LevelInfo, true},
			},
		},
		{
			name:  "raised default",
			setup: func(f *ComponentFilterHandler) { f.SetDefaultLevel(slog.LevelError) },
			entries: []entry{
				{"watch", slog.LevelWarn, false},
				{"watch", slog.LevelError, true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capture := newCaptureHandler()
			filter := NewComponentFilterHandler(capture, slog.LevelInfo)
			if tt.setup != nil {
				tt.setup(filter)
			}
			logger := slog.New(filter)
			for _, e := range tt.entries {
				before := capture.count()
				if e.component == "" {
					logger.Log(context.Background(), e.level, "msg")
				} else {
					logger.Log(context.Background(), e.level, "msg", ComponentKey, e.component)
				}
				if got := capture.count() > before; got != e.want {
					t.Errorf("%s at %v: logged = %v, want %v", e.component, e.level, got, e.want)
				}
			}
		})
	}
}

func TestComponentFilterHandler_Level(t *testing.T) {
	filter := NewComponentFilterHandler(nil, slog.LevelInfo)
	filter.SetLevel("search", slog.LevelDebug)
	if level := filter.Level("unknown"); level != slog.LevelInfo {
		t.Errorf("unknown = %v, want INFO", level)
	}
	if level := filter.Level("search"); level != slog.LevelDebug {
		t.Errorf("search = %v, want DEBUG", level)
	}
	if level := filter.DefaultLevel(); level != slog.LevelInfo {
		t.Errorf("default = %v, want INFO", level)
	}
}

// The component can come from With as well as from the record, and groups
// must not hide it.
func TestComponentFilterHandler_ScopedLoggers(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	filter := NewComponentFilterHandler(base, slog.LevelInfo)
	filter.SetLevel("search", slog.LevelDebug)

	For(slog.New(filter), "search").WithGroup("req").Debug("search debug")
	For(slog.New(filter), "translate").Debug("translate debug")

	out := buf.String()
	if !strings.Contains(out, "search debug") {
		t.Errorf("missing search debug line: %s", out)
	}
	if strings.Contains(out, "translate debug") {
		t.Errorf("unexpected translate debug line: %s", out)
	}
}

func TestComponentFilterHandler_Concurrent(t *testing.T) {
	capture := newCaptureHandler()
	filter := NewComponentFilterHandler(capture, slog.LevelInfo)
	logger := slog.New(filter)

	const goroutines, iterations = 8, 100
	var wg sync.WaitGroup
	for range goroutines {
		wg.Go(func() {
			for range iterations {
				logger.Info("message", ComponentKey, "index")
			}
		})
		wg.Go(func() {
			for range iterations {
				filter.SetLevel("index", slog.LevelDebug)
				filter.ClearLevel("index")
			}
		})
	}
	wg.Wait()

	if count := capture.count(); count != goroutines*iterations {
		t.Errorf("records = %d, want %d", count, goroutines*iterations)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestComponentFilterHandler_Apply(t *testing.T) {
	filter := NewComponentFilterHandler(nil, slog.LevelInfo)
	if err := filter.Apply("warn, search=debug,translate=ERROR"); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := filter.DefaultLevel(); got != slog.LevelWarn {
		t.Errorf("DefaultLevel = %v, want WARN", got)
	}
	if got := filter.Level("search"); got != slog.LevelDebug {
		t.Errorf("search level = %v, want DEBUG", got)
	}
	if got := filter.Level("translate"); got != slog.LevelError {
		t.Errorf("translate level = %v, want ERROR", got)
	}
	if got := filter.Level("watch"); got != slog.LevelWarn {
		t.Errorf("watch level = %v, want WARN", got)
	}

	if err := filter.Apply("search=chatty"); err == nil {
		t.Error("expected error for unknown level")
	}
}
