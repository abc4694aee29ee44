// Package search runs a regex over a gram index in two stages.
//
// The pattern is translated to a gram query, serialized, and issued to the
// index once. The index returns candidate documents, and the verifier runs
// the real regex over each candidate. Translation is sound, so the two
// stages together return exactly the documents a full scan would.
package search

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"gramsift/internal/gramindex"
	"gramsift/internal/logging"
	"gramsift/internal/translate"
	"gramsift/internal/verify"
)

var ErrGramLengthMismatch = errors.New("index and translator gram lengths differ")

// Request is one search.
type Request struct {
	Pattern         string `json:"pattern"`
	CaseInsensitive bool   `json:"caseInsensitive"`
	Limit           int    `json:"limit"` // 0 means no limit
}

// Stats describes a finished or in-progress search. The fields are updated
// while the result sequence is consumed.
type Stats struct {
	Candidates int  `json:"candidates"` // documents returned by the index
	Examined   int  `json:"examined"`   // candidates run through the verifier
	Verified   int  `json:"verified"`   // hits yielded
	Documents  int  `json:"documents"`  // documents in the index
	Fallback   bool `json:"fallback"`   // pattern was not translatable; every document is a candidate
}

// Plan is the translation of a request, without verification.
type Plan struct {
	Translation *translate.Result `json:"translation"`
	Reason      string            `json:"reason,omitempty"` // why the plan falls back, if it does
	Candidates  int               `json:"candidates"`
	Documents   int               `json:"documents"`
}

// Selectivity is the fraction of documents the index rules out.
func (p *Plan) Selectivity() float64 {
	if p.Documents == 0 {
		return 0
	}
	return 1 - float64(p.Candidates)/float64(p.Documents)
}

// Engine searches one index. It is safe for concurrent use.
type Engine struct {
	ix     *gramindex.Index
	tr     *translate.Translator
	logger *slog.Logger
}

// NewEngine returns an engine. The translator must use the index's gram
// length. logger may be nil.
func NewEngine(ix *gramindex.Index, tr *translate.Translator, logger *slog.Logger) (*Engine, error) {
	if ix.GramLength() != tr.Config().GramLength {
		return nil, fmt.Errorf("%w: index %d, translator %d", ErrGramLengthMismatch, ix.GramLength(), tr.Config().GramLength)
	}
	return &Engine{
		ix:     ix,
		tr:     tr,
		logger: logging.For(logger, "search"),
	}, nil
}

// Index returns the engine's index.
func (e *Engine) Index() *gramindex.Index { return e.ix }

// Plan translates req and counts the candidates the index would return.
func (e *Engine) Plan(req Request) (*Plan, error) {
	res, err := e.tr.Translate(req.Pattern, req.CaseInsensitive)
	reason := ""
	if err != nil {
		res = e.tr.Fallback()
		res.Pattern = req.Pattern
		reason = err.Error()
	}
	ords, err := e.candidates(res)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Translation: res,
		Reason:      reason,
		Candidates:  len(ords),
		Documents:   e.ix.Len(),
	}, nil
}

// Search returns the hits for req in ordinal order, and stats that fill in
// as the sequence is consumed. The sequence yields at most one error and
// then stops. A pattern the verifier cannot compile is reported as that
// error before any candidate is read.
func (e *Engine) Search(ctx context.Context, req Request) (iter.Seq2[verify.Hit, error], *Stats) {
	stats := &Stats{Documents: e.ix.Len()}

	seq := func(yield func(verify.Hit, error) bool) {
		start := time.Now()
		v, err := verify.New(req.Pattern, req.CaseInsensitive)
		if err != nil {
			yield(verify.Hit{}, err)
			return
		}
		res := e.tr.TranslateOrFallback(req.Pattern, req.CaseInsensitive)
		stats.Fallback = res.Fallback

		ords, err := e.candidates(res)
		if err != nil {
			yield(verify.Hit{}, err)
			return
		}
		stats.Candidates = len(ords)

		for h, err := range v.Filter(e.source(ctx, ords, stats)) {
			if err != nil {
				yield(verify.Hit{}, err)
				return
			}
			stats.Verified++
			if !yield(h, nil) {
				break
			}
			if req.Limit > 0 && stats.Verified >= req.Limit {
				break
			}
		}
		e.logger.Debug("search finished",
			"pattern", req.Pattern,
			"query", res.String,
			"candidates", stats.Candidates,
			"examined", stats.Examined,
			"hits", stats.Verified,
			"duration", time.Since(start))
	}
	return seq, stats
}

// candidates issues the serialized query to the index.
func (e *Engine) candidates(res *translate.Result) ([]uint64, error) {
	ords, err := e.ix.SearchString(res.String, e.tr.Syntax())
	if err != nil {
		e.logger.Error("index rejected serialized query", "query", res.String, "error", err)
		return nil, fmt.Errorf("%w: %q: %w", translate.ErrSerializerDefect, res.String, err)
	}
	return ords, nil
}

// source streams candidate documents until ctx ends.
func (e *Engine) source(ctx context.Context, ords []uint64, stats *Stats) iter.Seq2[verify.Candidate, error] {
	return func(yield func(verify.Candidate, error) bool) {
		for _, ord := range ords {
			if err := ctx.Err(); err != nil {
				yield(verify.Candidate{}, err)
				return
			}
			stats.Examined++
			if !yield(verify.Candidate{Ord: ord, Doc: e.ix.Doc(ord)}, nil) {
				return
			}
		}
	}
}

// Collect drains seq into a slice, stopping after limit hits when limit is
// positive.
func Collect(seq iter.Seq2[verify.Hit, error], limit int) ([]verify.Hit, error) {
	var hits []verify.Hit
	for h, err := range seq {
		if err != nil {
			return hits, err
		}
		hits = append(hits, h)
		if limit > 0 && len(hits) >= limit {
			break
		}
	}
	return hits, nil
}
