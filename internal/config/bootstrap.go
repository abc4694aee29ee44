package config

import (
	"context"

	"gramsift/internal/serializer"
	"gramsift/internal/translate"
)

// DefaultConfig returns the bootstrap configuration for first run: default
// translator bounds, Lucene classic syntax, and no corpora.
func DefaultConfig() *Config {
	return &Config{
		Translate: translate.DefaultConfig(),
		Syntax:    NewSyntaxConfig(serializer.DefaultSyntax()),
	}
}

// Bootstrap writes the default configuration to a store. Call this when
// Load returns nil (no config exists).
func Bootstrap(ctx context.Context, store Store) (*Config, error) {
	cfg := DefaultConfig()
	if err := store.Save(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrBootstrap loads the configuration, bootstrapping the store first
// if it is empty. The result is validated.
func LoadOrBootstrap(ctx context.Context, store Store) (*Config, error) {
	cfg, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		if cfg, err = Bootstrap(ctx, store); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
