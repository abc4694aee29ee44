package translate

import (
	"errors"
	"fmt"

	"gramsift/internal/gram"
	"gramsift/internal/regexinfo"
)

// Defaults.
const (
	DefaultGramLength   = gram.DefaultLength
	DefaultMaxExactSize = 7
	DefaultMaxSetSize   = 20
	DefaultMaxClauses   = 64
)

var ErrInvalidConfig = errors.New("invalid translator config")

// Config bounds a translation. It is passed explicitly to every call; there
// is no package-level state.
type Config struct {
	GramLength   int `json:"gramLength"`   // runes per gram
	MaxExactSize int `json:"maxExactSize"` // longest exact string, in runes
	MaxSetSize   int `json:"maxSetSize"`   // most strings in any affix set
	MaxClauses   int `json:"maxClauses"`   // DNF branch budget for the canonical form
}

// DefaultConfig returns the default bounds.
func DefaultConfig() Config {
	return Config{
		GramLength:   DefaultGramLength,
		MaxExactSize: DefaultMaxExactSize,
		MaxSetSize:   DefaultMaxSetSize,
		MaxClauses:   DefaultMaxClauses,
	}
}

// Validate reports the first out-of-range field.
func (c Config) Validate() error {
	switch {
	case c.GramLength < 1:
		return fmt.Errorf("%w: gram length %d < 1", ErrInvalidConfig, c.GramLength)
	case c.MaxExactSize < c.GramLength:
		return fmt.Errorf("%w: max exact size %d < gram length %d", ErrInvalidConfig, c.MaxExactSize, c.GramLength)
	case c.MaxSetSize < 1:
		return fmt.Errorf("%w: max set size %d < 1", ErrInvalidConfig, c.MaxSetSize)
	case c.MaxClauses < 1:
		return fmt.Errorf("%w: max clauses %d < 1", ErrInvalidConfig, c.MaxClauses)
	}
	return nil
}

func (c Config) info() regexinfo.Config {
	return regexinfo.Config{
		GramLength:   c.GramLength,
		MaxExactSize: c.MaxExactSize,
		MaxSetSize:   c.MaxSetSize,
	}
}
