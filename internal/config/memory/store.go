// Package memory provides an in-memory config.Store implementation.
package memory

import (
	"context"
	"fmt"
	"sync"

	"gramsift/internal/config"
)

// Store is an in-memory config.Store.
// Used when no home directory is available, and in tests.
type Store struct {
	mu  sync.RWMutex
	cfg *config.Config
}

var _ config.Store = (*Store)(nil)

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{}
}

// Load returns a copy of the stored configuration.
// Returns nil if no configuration has been saved.
func (s *Store) Load(ctx context.Context) (*config.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone(), nil
}

// Save stores a copy of cfg.
func (s *Store) Save(ctx context.Context, cfg *config.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg.Clone()
	return nil
}

func (s *Store) GetCorpus(ctx context.Context, name string) (*config.CorpusConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cfg == nil {
		return nil, nil
	}
	cc, ok := s.cfg.Corpora[name]
	if !ok {
		return nil, nil
	}
	cc = cc.Clone()
	return &cc, nil
}

func (s *Store) ListCorpora(ctx context.Context) (map[string]config.CorpusConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cfg == nil {
		return nil, nil
	}
	return s.cfg.Clone().Corpora, nil
}

func (s *Store) PutCorpus(ctx context.Context, name string, cc config.CorpusConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil {
		s.cfg = config.DefaultConfig()
	}
	if s.cfg.Corpora == nil {
		s.cfg.Corpora = make(map[string]config.CorpusConfig)
	}
	s.cfg.Corpora[name] = cc.Clone()
	return nil
}

func (s *Store) DeleteCorpus(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil {
		return fmt.Errorf("%w: %q", config.ErrCorpusNotFound, name)
	}
	if _, ok := s.cfg.Corpora[name]; !ok {
		return fmt.Errorf("%w: %q", config.ErrCorpusNotFound, name)
	}
	delete(s.cfg.Corpora, name)
	return nil
}
