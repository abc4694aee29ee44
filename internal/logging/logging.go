// Package logging holds the slog plumbing for gramsift.
//
// Loggers are passed in, never global. A component scopes its logger once,
// at construction, with For. Only main configures handlers and levels; the
// per-component levels live in ComponentFilterHandler.
//
// Keep logging out of the hot paths (folding, gram extraction, posting
// merges). Index build and load, search completion, translation fallback
// and internal defects are the places that log.
package logging

import "log/slog"

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Default returns logger, or a discard logger when logger is nil.
func Default(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return Discard()
}

// For returns logger scoped to the named component. A nil logger yields a
// discard logger. The "component" attribute is what ComponentFilterHandler
// keys its levels on.
//
//	func NewEngine(logger *slog.Logger) *Engine {
//	    return &Engine{logger: logging.For(logger, "search")}
//	}
func For(logger *slog.Logger, component string) *slog.Logger {
	return Default(logger).With(ComponentKey, component)
}
