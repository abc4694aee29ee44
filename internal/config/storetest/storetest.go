// Package storetest provides a shared conformance test suite for
// config.Store implementations. Each backend (file, memory) wires this
// suite to verify it satisfies the full Store contract.
package storetest

import (
	"context"
	"errors"
	"slices"
	"testing"

	"gramsift/internal/config"
)

// TestStore runs the full conformance suite against a Store implementation.
// newStore must return a fresh, empty store for each sub-test.
func TestStore(t *testing.T, newStore func(t *testing.T) config.Store) {
	t.Run("LoadEmpty", func(t *testing.T) {
		s := newStore(t)
		cfg, err := s.Load(context.Background())
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg != nil {
			t.Fatalf("expected nil config from empty store, got %+v", cfg)
		}
	})

	t.Run("SaveLoad", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		want := config.DefaultConfig()
		want.Translate.MaxClauses = 8
		want.Syntax.Field = "body"
		want.Corpora = map[string]config.CorpusConfig{
			"logs": {Patterns: []string{"/var/log/**/*.log"}, PollInterval: "30s"},
		}
		if err := s.Save(ctx, want); err != nil {
			t.Fatalf("Save: %v", err)
		}

		got, err := s.Load(ctx)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got == nil {
			t.Fatal("expected config, got nil")
		}
		if got.Translate != want.Translate {
			t.Errorf("Translate = %+v, want %+v", got.Translate, want.Translate)
		}
		if got.Syntax != want.Syntax {
			t.Errorf("Syntax = %+v, want %+v", got.Syntax, want.Syntax)
		}
		logs := got.Corpora["logs"]
		if !slices.Equal(logs.Patterns, []string{"/var/log/**/*.log"}) || logs.PollInterval != "30s" {
			t.Errorf("corpus logs = %+v", logs)
		}
	})

	t.Run("SaveIsolatesCaller", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		cfg := config.DefaultConfig()
		cfg.Corpora = map[string]config.CorpusConfig{"a": {Patterns: []string{"x"}}}
		if err := s.Save(ctx, cfg); err != nil {
			t.Fatalf("Save: %v", err)
		}
		cfg.Corpora["a"].Patterns[0] = "mutated"

		got, err := s.GetCorpus(ctx, "a")
		if err != nil {
			t.Fatalf("GetCorpus: %v", err)
		}
		if got == nil || got.Patterns[0] != "x" {
			t.Errorf("GetCorpus = %+v, want pattern x", got)
		}
	})

	t.Run("PutGetCorpus", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		cc := config.CorpusConfig{Patterns: []string{"*.txt"}, Unit: "file"}
		if err := s.PutCorpus(ctx, "docs", cc); err != nil {
			t.Fatalf("PutCorpus: %v", err)
		}

		got, err := s.GetCorpus(ctx, "docs")
		if err != nil {
			t.Fatalf("GetCorpus: %v", err)
		}
		if got == nil {
			t.Fatal("expected corpus, got nil")
		}
		if got.Unit != "file" || !slices.Equal(got.Patterns, cc.Patterns) {
			t.Errorf("GetCorpus = %+v, want %+v", got, cc)
		}

		// Putting into an empty store bootstraps the rest of the config.
		cfg, err := s.Load(ctx)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("config after PutCorpus is invalid: %v", err)
		}
	})

	t.Run("GetMissingCorpus", func(t *testing.T) {
		s := newStore(t)
		got, err := s.GetCorpus(context.Background(), "nope")
		if err != nil {
			t.Fatalf("GetCorpus: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("ListCorpora", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for _, name := range []string{"a", "b", "c"} {
			if err := s.PutCorpus(ctx, name, config.CorpusConfig{Patterns: []string{name + "/*"}}); err != nil {
				t.Fatalf("PutCorpus(%s): %v", name, err)
			}
		}
		list, err := s.ListCorpora(ctx)
		if err != nil {
			t.Fatalf("ListCorpora: %v", err)
		}
		if len(list) != 3 || list["b"].Patterns[0] != "b/*" {
			t.Errorf("ListCorpora = %+v", list)
		}
	})

	t.Run("DeleteCorpus", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		if err := s.PutCorpus(ctx, "a", config.CorpusConfig{Patterns: []string{"x"}}); err != nil {
			t.Fatalf("PutCorpus: %v", err)
		}
		if err := s.DeleteCorpus(ctx, "a"); err != nil {
			t.Fatalf("DeleteCorpus: %v", err)
		}
		if got, _ := s.GetCorpus(ctx, "a"); got != nil {
			t.Errorf("corpus still present: %+v", got)
		}
		if err := s.DeleteCorpus(ctx, "a"); !errors.Is(err, config.ErrCorpusNotFound) {
			t.Errorf("second DeleteCorpus = %v, want ErrCorpusNotFound", err)
		}
	})
}
