// Package translate turns a regular expression into a gram query that an
// inverted gram index can answer.
//
// The query is sound: any document the regex matches satisfies it. It may
// also admit documents the regex does not match, so callers verify every
// candidate with the real regex.
//
// Pipeline:
//
//	pattern -> rxast.Parse -> regexinfo.Fold -> Build -> serializer.Serialize
package translate

import (
	"errors"
	"fmt"
	"log/slog"

	"gramsift/internal/gramquery"
	"gramsift/internal/logging"
	"gramsift/internal/regexinfo"
	"gramsift/internal/rxast"
	"gramsift/internal/serializer"
)

// ErrSerializerDefect marks a serialized query that the index could not
// parse. It is an internal bug, never a reason to fall back.
var ErrSerializerDefect = errors.New("serializer produced an unparseable query")

// TranslationError reports a pattern that could not be translated because
// it could not be parsed.
type TranslationError struct {
	Pattern string
	Err     error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translate %q: %v", e.Pattern, e.Err)
}

func (e *TranslationError) Unwrap() error {
	return e.Err
}

// Result is a translated pattern.
type Result struct {
	Pattern  string           `json:"pattern"`
	Query    *gramquery.Query `json:"query"`
	String   string           `json:"string"`   // serialized index query
	Fallback bool             `json:"fallback"` // pattern failed to parse; Query is match-all
}

// Translator holds a validated config and target syntax.
// It has no mutable state and is safe for concurrent use.
type Translator struct {
	cfg    Config
	syn    serializer.Syntax
	logger *slog.Logger
}

// New returns a Translator. logger may be nil.
func New(cfg Config, syn serializer.Syntax, logger *slog.Logger) (*Translator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := syn.Validate(); err != nil {
		return nil, err
	}
	return &Translator{
		cfg:    cfg,
		syn:    syn,
		logger: logging.For(logger, "translate"),
	}, nil
}

// Config returns the translator's bounds.
func (t *Translator) Config() Config { return t.cfg }

// Syntax returns the target query syntax.
func (t *Translator) Syntax() serializer.Syntax { return t.syn }

// Translate parses pattern and translates it. A pattern that does not parse
// returns a *TranslationError.
func (t *Translator) Translate(pattern string, caseInsensitive bool) (*Result, error) {
	node, err := rxast.Parse(pattern, caseInsensitive)
	if err != nil {
		return nil, &TranslationError{Pattern: pattern, Err: err}
	}
	r := t.TranslateNode(node)
	r.Pattern = pattern
	return r, nil
}

// TranslateNode translates an already parsed expression. It never fails.
func (t *Translator) TranslateNode(node rxast.Node) *Result {
	q := Build(regexinfo.Fold(node, t.cfg.info()), t.cfg)
	return &Result{
		Pattern: node.String(),
		Query:   q,
		String:  serializer.Serialize(q, t.syn),
	}
}

// Analyze returns the Info of the parsed pattern. It exists for tooling that
// wants to show the intermediate analysis.
func (t *Translator) Analyze(pattern string, caseInsensitive bool) (regexinfo.Info, error) {
	node, err := rxast.Parse(pattern, caseInsensitive)
	if err != nil {
		return regexinfo.Info{}, &TranslationError{Pattern: pattern, Err: err}
	}
	return regexinfo.Fold(node, t.cfg.info()), nil
}

// TranslateOrFallback translates pattern, substituting the match-all query
// when it cannot be parsed. Results stay correct, only slower.
func (t *Translator) TranslateOrFallback(pattern string, caseInsensitive bool) *Result {
	r, err := t.Translate(pattern, caseInsensitive)
	if err == nil {
		return r
	}
	t.logger.Warn("regex translation failed, scanning all documents", "pattern", pattern, "error", err)
	fb := t.Fallback()
	fb.Pattern = pattern
	return fb
}

// Fallback returns the unfiltered match-all result.
func (t *Translator) Fallback() *Result {
	return &Result{
		Query:    gramquery.MatchAll(),
		String:   serializer.Serialize(gramquery.MatchAll(), t.syn),
		Fallback: true,
	}
}
