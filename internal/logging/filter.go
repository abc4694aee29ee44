package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// ComponentKey is the attribute that names the component a record comes from.
const ComponentKey = "component"

// levelTable is shared by a ComponentFilterHandler and every handler derived
// from it through WithAttrs/WithGroup, so level changes apply everywhere.
type levelTable struct {
	mu           sync.RWMutex
	defaultLevel slog.Level
	levels       map[string]slog.Level
}

func (t *levelTable) level(component string) slog.Level {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if l, ok := t.levels[component]; ok {
		return l
	}
	return t.defaultLevel
}

// minLevel is the lowest level any component is enabled at.
func (t *levelTable) minLevel() slog.Level {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m := t.defaultLevel
	for _, l := range t.levels {
		m = min(m, l)
	}
	return m
}

// ComponentFilterHandler filters records by a per-component minimum level.
// The component is taken from the "component" attribute, either attached
// with Logger.With or passed on the record. Records without a component
// use the default level.
type ComponentFilterHandler struct {
	next      slog.Handler
	table     *levelTable
	component string
}

// NewComponentFilterHandler wraps next, passing records at or above
// defaultLevel unless a component override says otherwise.
func NewComponentFilterHandler(next slog.Handler, defaultLevel slog.Level) *ComponentFilterHandler {
	return &ComponentFilterHandler{
		next: next,
		table: &levelTable{
			defaultLevel: defaultLevel,
			levels:       make(map[string]slog.Level),
		},
	}
}

// SetLevel overrides the minimum level for one component.
func (h *ComponentFilterHandler) SetLevel(component string, level slog.Level) {
	h.table.mu.Lock()
	h.table.levels[component] = level
	h.table.mu.Unlock()
}

// ClearLevel removes a component override.
func (h *ComponentFilterHandler) ClearLevel(component string) {
	h.table.mu.Lock()
	delete(h.table.levels, component)
	h.table.mu.Unlock()
}

// Level returns the effective minimum level for a component.
func (h *ComponentFilterHandler) Level(component string) slog.Level {
	return h.table.level(component)
}

// DefaultLevel returns the level used for components without an override.
func (h *ComponentFilterHandler) DefaultLevel() slog.Level {
	h.table.mu.RLock()
	defer h.table.mu.RUnlock()
	return h.table.defaultLevel
}

// SetDefaultLevel changes the level used for components without an override.
func (h *ComponentFilterHandler) SetDefaultLevel(level slog.Level) {
	h.table.mu.Lock()
	h.table.defaultLevel = level
	h.table.mu.Unlock()
}

// Apply parses a level spec and applies it. The spec is a comma-separated
// list of "level" (the default) and "component=level" entries, e.g.
// "warn,search=debug".
func (h *ComponentFilterHandler) Apply(spec string) error {
	for entry := range strings.SplitSeq(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		component, lvl, found := strings.Cut(entry, "=")
		if !found {
			lvl = component
		}
		level, err := ParseLevel(lvl)
		if err != nil {
			return err
		}
		if found {
			h.SetLevel(strings.TrimSpace(component), level)
		} else {
			h.SetDefaultLevel(level)
		}
	}
	return nil
}

func (h *ComponentFilterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.component != "" {
		if level < h.table.level(h.component) {
			return false
		}
	} else if level < h.table.minLevel() {
		// The record may still carry a component; Handle decides.
		return false
	}
	return h.next == nil || h.next.Enabled(ctx, level)
}

func (h *ComponentFilterHandler) Handle(ctx context.Context, r slog.Record) error {
	component := h.component
	if component == "" {
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == ComponentKey {
				component = a.Value.String()
				return false
			}
			return true
		})
	}
	if r.Level < h.table.level(component) {
		return nil
	}
	if h.next == nil {
		return nil
	}
	return h.next.Handle(ctx, r)
}

func (h *ComponentFilterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	for _, a := range attrs {
		if a.Key == ComponentKey {
			c.component = a.Value.String()
		}
	}
	if h.next != nil {
		c.next = h.next.WithAttrs(attrs)
	}
	return &c
}

func (h *ComponentFilterHandler) WithGroup(name string) slog.Handler {
	c := *h
	if h.next != nil {
		c.next = h.next.WithGroup(name)
	}
	return &c
}

// ParseLevel parses "debug", "info", "warn" or "error" (any case).
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(s))
	return l, err
}
