package gramindex

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"gramsift/internal/callgroup"
	"gramsift/internal/logging"
)

// Loader opens index files and caches them until the file changes.
// Concurrent loads of the same path share one read.
type Loader struct {
	logger *slog.Logger
	group  callgroup.Group[string, *Index]

	mu     sync.Mutex
	cached map[string]cacheEntry
}

type cacheEntry struct {
	modTime time.Time
	size    int64
	ix      *Index
}

// NewLoader returns a loader. A nil logger discards output.
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{
		logger: logging.For(logger, "gramindex"),
		cached: make(map[string]cacheEntry),
	}
}

// Load returns the index at path, reading it only if it changed since the
// last load.
func (l *Loader) Load(ctx context.Context, path string) (*Index, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	e, ok := l.cached[path]
	l.mu.Unlock()
	if ok && e.modTime.Equal(info.ModTime()) && e.size == info.Size() {
		return e.ix, nil
	}

	return l.group.Do(ctx, path, func() (*Index, error) {
		start := time.Now()
		ix, err := Open(path)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.cached[path] = cacheEntry{modTime: info.ModTime(), size: info.Size(), ix: ix}
		l.mu.Unlock()
		l.logger.Debug("index loaded",
			"path", path,
			"docs", ix.Len(),
			"grams", ix.Grams(),
			"duration", time.Since(start))
		return ix, nil
	})
}

// Forget drops the cached index for path.
func (l *Loader) Forget(path string) {
	l.mu.Lock()
	delete(l.cached, path)
	l.mu.Unlock()
}
