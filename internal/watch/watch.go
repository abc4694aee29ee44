// Package watch rebuilds an index when the files of its corpus change.
//
// The static directory prefixes of the corpus glob patterns are watched
// with fsnotify. Events for matching files are debounced, so a burst of
// writes causes one rebuild. An optional poll interval re-runs the rebuild
// even without events, for filesystems that do not deliver notifications.
package watch

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"gramsift/internal/corpus"
	"gramsift/internal/logging"
)

// DefaultDebounce is how long the watcher waits after the last event.
const DefaultDebounce = 500 * time.Millisecond

// RebuildFunc rebuilds the index. Its error is logged and watching continues.
type RebuildFunc func(ctx context.Context) error

// Config configures a Watcher.
type Config struct {
	Patterns     []string
	Debounce     time.Duration // 0 means DefaultDebounce
	PollInterval time.Duration // 0 disables polling
	Rebuild      RebuildFunc
	Logger       *slog.Logger
}

// Watcher calls a rebuild function when corpus files change.
type Watcher struct {
	patterns     []string
	debounce     time.Duration
	pollInterval time.Duration
	rebuild      RebuildFunc
	logger       *slog.Logger
}

// New returns a watcher.
func New(cfg Config) *Watcher {
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		patterns:     cfg.Patterns,
		debounce:     debounce,
		pollInterval: cfg.PollInterval,
		rebuild:      cfg.Rebuild,
		logger:       logging.For(cfg.Logger, "watch"),
	}
}

// Run watches until ctx is cancelled. It returns nil on cancellation and an
// error only if the watcher could not be started.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Watch parent directories for new file creation.
	for _, dir := range corpus.WatchDirs(w.patterns) {
		if err := watcher.Add(dir); err != nil {
			w.logger.Warn("failed to watch directory", "dir", dir, "error", err)
		}
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	var tickCh <-chan time.Time
	if w.pollInterval > 0 {
		ticker := time.NewTicker(w.pollInterval)
		tickCh = ticker.C
		defer ticker.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("corpus changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("fsnotify error", "error", err)

		case <-timer.C:
			w.run(ctx, "change")

		case <-tickCh:
			w.run(ctx, "poll")
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return corpus.Matches(event.Name, w.patterns)
}

func (w *Watcher) run(ctx context.Context, trigger string) {
	start := time.Now()
	if err := w.rebuild(ctx); err != nil {
		if ctx.Err() == nil {
			w.logger.Warn("rebuild failed", "trigger", trigger, "error", err)
		}
		return
	}
	w.logger.Info("index rebuilt", "trigger", trigger, "duration", time.Since(start))
}
