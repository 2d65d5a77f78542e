package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if SEISEKI_CONFIG is set
//  3. env (prefix SEISEKI_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("SEISEKI_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: SEISEKI_STORE_DRIVER, SEISEKI_QUEUE_THRESHOLD, ...
	// Map env keys like SEISEKI_QUEUE_THRESHOLD -> queue_threshold (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("SEISEKI_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "seiseki_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if cfg.QueueThreshold <= 0 {
		return nil, fmt.Errorf("%w: queue_threshold must be positive", ErrInvalidConfig)
	}
	if cfg.WorkerCount <= 0 {
		return nil, fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	}
	switch cfg.StoreDriver {
	case "memory", "sqlite":
	default:
		return nil, fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, cfg.StoreDriver)
	}
	return &cfg, nil
}
