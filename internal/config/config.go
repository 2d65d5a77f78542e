// Package config defines process configuration and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// QueueThreshold sets the insert queue's auto-flush size.
	QueueThreshold int `koanf:"queue_threshold"`

	// WorkerCount sets the number of conversion workers.
	WorkerCount int `koanf:"worker_count"`

	// StoreDriver selects the score store backend: memory or sqlite.
	StoreDriver string `koanf:"store_driver"`

	// StorePath is the sqlite database path when StoreDriver is sqlite.
	StorePath string `koanf:"store_path"`

	// KaiBaseURL and KaiToken configure Kai-network API imports.
	KaiBaseURL string `koanf:"kai_base_url"`
	KaiToken   string `koanf:"kai_token"`

	// KaiService is the network display name stamped on imported scores
	// (FLO, EAG, MIN).
	KaiService string `koanf:"kai_service"`

	// ArtemisDSN is the MySQL DSN of an ARTEMiS server; must include
	// parseTime=true.
	ArtemisDSN string `koanf:"artemis_dsn"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		QueueThreshold: 500,
		WorkerCount:    runtime.NumCPU() * 2,
		StoreDriver:    "memory",
		StorePath:      "seiseki.db",
		KaiService:     "FLO",
	}
}
