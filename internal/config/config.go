// Package config provides configuration persistence for gramsift.
//
// Config holds the translator bounds, the target query syntax, and the
// named corpora that indexes are built from. CLI flags override the loaded
// values for a single invocation; they are never written back.
package config

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"
	"unicode/utf8"

	"gramsift/internal/corpus"
	"gramsift/internal/serializer"
	"gramsift/internal/translate"
)

var (
	ErrCorpusNotFound = errors.New("corpus not found")
	ErrInvalidCorpus  = errors.New("invalid corpus config")
)

// Store persists and loads configuration.
//
// Store does not validate config semantics. It only ensures the data can
// be serialized and deserialized. Validation is done by Config.Validate
// before use.
type Store interface {
	// Load reads the full configuration. Returns nil if nothing exists (bootstrap signal).
	Load(ctx context.Context) (*Config, error)

	// Save replaces the full configuration.
	Save(ctx context.Context, cfg *Config) error

	// Corpora
	GetCorpus(ctx context.Context, name string) (*CorpusConfig, error)
	ListCorpora(ctx context.Context) (map[string]CorpusConfig, error)
	PutCorpus(ctx context.Context, name string, cfg CorpusConfig) error
	DeleteCorpus(ctx context.Context, name string) error
}

// Config describes how patterns are translated and which corpora exist.
type Config struct {
	Translate translate.Config        `json:"translate"`
	Syntax    SyntaxConfig            `json:"syntax"`
	Corpora   map[string]CorpusConfig `json:"corpora,omitempty"`
}

// SyntaxConfig is the JSON form of serializer.Syntax.
type SyntaxConfig struct {
	Field    string `json:"field,omitempty"`
	And      string `json:"and"`
	Or       string `json:"or"`
	MatchAll string `json:"matchAll"`
	Reserved string `json:"reserved"`
	Escape   string `json:"escape"` // a single rune
}

// CorpusConfig describes the files an index is built from.
type CorpusConfig struct {
	// Patterns are glob patterns; "**" matches any number of directories.
	Patterns []string `json:"patterns"`

	// Unit is "line" (default) or "file".
	Unit string `json:"unit,omitempty"`

	// PollInterval re-indexes on a timer while watching, e.g. "30s".
	// Empty disables polling.
	PollInterval string `json:"pollInterval,omitempty"`
}

// NewSyntaxConfig converts a serializer.Syntax.
func NewSyntaxConfig(s serializer.Syntax) SyntaxConfig {
	return SyntaxConfig{
		Field:    s.Field,
		And:      s.And,
		Or:       s.Or,
		MatchAll: s.MatchAll,
		Reserved: s.Reserved,
		Escape:   string(s.Escape),
	}
}

// Syntax converts to a serializer.Syntax and validates it.
func (c SyntaxConfig) Syntax() (serializer.Syntax, error) {
	r, size := utf8.DecodeRuneInString(c.Escape)
	if size == 0 || size != len(c.Escape) || r == utf8.RuneError {
		return serializer.Syntax{}, fmt.Errorf("%w: escape must be a single rune, got %q", serializer.ErrInvalidSyntax, c.Escape)
	}
	s := serializer.Syntax{
		Field:    c.Field,
		And:      c.And,
		Or:       c.Or,
		MatchAll: c.MatchAll,
		Reserved: c.Reserved,
		Escape:   r,
	}
	if err := s.Validate(); err != nil {
		return serializer.Syntax{}, err
	}
	return s, nil
}

// ParsedUnit returns the corpus document unit.
func (c CorpusConfig) ParsedUnit() (corpus.Unit, error) {
	return corpus.ParseUnit(c.Unit)
}

// ParsedPollInterval returns the poll interval, zero when unset.
func (c CorpusConfig) ParsedPollInterval() (time.Duration, error) {
	if c.PollInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("%w: poll interval: %w", ErrInvalidCorpus, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: negative poll interval %s", ErrInvalidCorpus, d)
	}
	return d, nil
}

// Validate checks a single corpus.
func (c CorpusConfig) Validate() error {
	if len(c.Patterns) == 0 {
		return fmt.Errorf("%w: no patterns", ErrInvalidCorpus)
	}
	if _, err := c.ParsedUnit(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCorpus, err)
	}
	_, err := c.ParsedPollInterval()
	return err
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if err := c.Translate.Validate(); err != nil {
		return err
	}
	if _, err := c.Syntax.Syntax(); err != nil {
		return err
	}
	for _, name := range slices.Sorted(maps.Keys(c.Corpora)) {
		if err := ValidateCorpusName(name); err != nil {
			return err
		}
		if err := c.Corpora[name].Validate(); err != nil {
			return fmt.Errorf("corpus %q: %w", name, err)
		}
	}
	return nil
}

// ValidateCorpusName checks that name can be used as an index file name.
func ValidateCorpusName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("%w: name %q", ErrInvalidCorpus, name)
	}
	for _, r := range name {
		if r == '/' || r == '\\' || r == 0 {
			return fmt.Errorf("%w: name %q contains %q", ErrInvalidCorpus, name, r)
		}
	}
	return nil
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	if c.Corpora != nil {
		out.Corpora = make(map[string]CorpusConfig, len(c.Corpora))
		for name, cc := range c.Corpora {
			out.Corpora[name] = cc.Clone()
		}
	}
	return &out
}

// Clone returns a deep copy of c.
func (c CorpusConfig) Clone() CorpusConfig {
	c.Patterns = slices.Clone(c.Patterns)
	return c
}
