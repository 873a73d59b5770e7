// SPDX-License-Identifier: Apache-2.0

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for listsync.
// It aggregates all sub-configurations and is populated by merging values
// from environment variables and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings such as the version string.
	App App `envPrefix:"APP_"`

	// Remote holds the remote store endpoint settings.
	Remote Remote `envPrefix:"REMOTE_"`

	// Storage holds configuration for the durable local store.
	Storage Storage `envPrefix:"STORAGE_"`

	// Workers holds configuration for background jobs (periodic sync,
	// connectivity probing).
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables.
	// Populated via the CONFIG environment variable or the --config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// Version is the semantic version string of the running application.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Remote holds the endpoint settings for the remote store REST API.
type Remote struct {
	// BaseURL is the remote store base URL (e.g. "https://x.supabase.co").
	// Env: REMOTE_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// APIKey is the API key attached to every remote request.
	// Env: REMOTE_API_KEY
	APIKey string `env:"API_KEY"`

	// RequestTimeout is the default timeout for outbound remote requests.
	// Env: REMOTE_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Storage holds the durable local store settings.
type Storage struct {
	// DB holds the local SQLite connection settings.
	DB DB `envPrefix:"DB_"`
}

// DB contains local database connection settings.
type DB struct {
	// DSN is the SQLite file path used for the durable local store.
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Workers contains background job settings.
type Workers struct {
	// SyncInterval defines how often the background sync job drains the
	// mutation queue. Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// ProbeInterval defines how often the connectivity prober pings the
	// remote store. Zero disables probing. Env: WORKERS_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`
}

// ClientConfig is the validated runtime view of [StructuredConfig] consumed
// by the composition root.
type ClientConfig struct {
	// App contains application-level client settings.
	App App
	// Remote contains remote store endpoint settings.
	Remote Remote
	// Storage contains local storage settings.
	Storage Storage
	// Workers contains background job settings.
	Workers Workers
}

// GetClientConfig builds and validates the client configuration.
//
// Values are merged in increasing priority: built-in defaults, then the
// optional JSON file, then environment variables. jsonPath overrides the
// CONFIG environment variable when non-empty.
func GetClientConfig(jsonPath string) (*ClientConfig, error) {
	cfg, err := newConfigBuilder().
		withDefaults().
		withJSON(jsonPath).
		withEnv().
		build()
	if err != nil {
		return nil, err
	}

	clientCfg := &ClientConfig{
		App:     cfg.App,
		Remote:  cfg.Remote,
		Storage: cfg.Storage,
		Workers: cfg.Workers,
	}
	if err := clientCfg.validate(); err != nil {
		return nil, err
	}
	return clientCfg, nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Remote.BaseURL == "" || cfg.Remote.RequestTimeout <= 0 {
		return ErrInvalidRemoteConfigs
	}

	if cfg.Workers.SyncInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
