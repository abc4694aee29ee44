// Package file provides a file-based config.Store implementation.
//
// Configuration is persisted as a versioned JSON envelope:
//
//	{"version": 1, "config": { ... }}
//
// All mutations load the full file, mutate in memory, and atomically flush
// the entire file.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gramsift/internal/config"
)

const currentVersion = 1

// envelope is the versioned on-disk format.
type envelope struct {
	Version int            `json:"version"`
	Config  *config.Config `json:"config"`
}

// Store is a file-based config.Store.
// Writes are atomic via temp file + rename with round-trip validation.
type Store struct {
	path string
	mu   sync.Mutex
}

var _ config.Store = (*Store)(nil)

// NewStore creates a store backed by the JSON file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the config file path.
func (s *Store) Path() string { return s.path }

// Load reads the full configuration from disk.
// Returns nil if the file does not exist.
func (s *Store) Load(ctx context.Context) (*config.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save replaces the configuration on disk.
func (s *Store) Save(ctx context.Context, cfg *config.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flush(cfg)
}

// load reads and parses the config file. Returns nil,nil if not found.
func (s *Store) load() (*config.Config, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if env.Version == 0 {
		return nil, fmt.Errorf("unversioned config file detected; delete %s to bootstrap a fresh config", s.path)
	}

	if env.Version > currentVersion {
		return nil, fmt.Errorf("config file version %d is newer than supported version %d", env.Version, currentVersion)
	}

	if env.Version < currentVersion {
		if err := migrateFile(s.path, data, env.Version); err != nil {
			return nil, fmt.Errorf("migrate config: %w", err)
		}
		// Re-read after migration.
		data, err = os.ReadFile(s.path)
		if err != nil {
			return nil, fmt.Errorf("read migrated config: %w", err)
		}
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("parse migrated config: %w", err)
		}
	}

	return env.Config, nil
}

// loadOrDefault loads the config, returning the default Config if the file doesn't exist.
func (s *Store) loadOrDefault() (*config.Config, error) {
	cfg, err := s.load()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if cfg.Corpora == nil {
		cfg.Corpora = make(map[string]config.CorpusConfig)
	}
	return cfg, nil
}

// flush atomically writes the config to disk with round-trip validation.
func (s *Store) flush(cfg *config.Config) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	env := envelope{Version: currentVersion, Config: cfg}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	// Round-trip validation: re-read and verify valid JSON.
	check, err := os.ReadFile(tmpPath)
	if err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("read-back temp file: %w", err)
	}
	var verify envelope
	if err := json.Unmarshal(check, &verify); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("round-trip validation failed: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename config file: %w", err)
	}

	return nil
}

// Corpora

func (s *Store) GetCorpus(ctx context.Context, name string) (*config.CorpusConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, err := s.load()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, nil
	}
	cc, ok := cfg.Corpora[name]
	if !ok {
		return nil, nil
	}
	return &cc, nil
}

func (s *Store) ListCorpora(ctx context.Context) (map[string]config.CorpusConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, err := s.load()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, nil
	}
	return cfg.Corpora, nil
}

func (s *Store) PutCorpus(ctx context.Context, name string, cc config.CorpusConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, err := s.loadOrDefault()
	if err != nil {
		return err
	}
	cfg.Corpora[name] = cc.Clone()
	return s.flush(cfg)
}

func (s *Store) DeleteCorpus(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, err := s.loadOrDefault()
	if err != nil {
		return err
	}
	if _, ok := cfg.Corpora[name]; !ok {
		return fmt.Errorf("%w: %q", config.ErrCorpusNotFound, name)
	}
	delete(cfg.Corpora, name)
	return s.flush(cfg)
}
