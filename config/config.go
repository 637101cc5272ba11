// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

var (
	// ErrInvalidConfig is returned when a configuration fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds the settings shared by every claimdesk command.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Search  SearchConfig  `yaml:"search"`
	Server  ServerConfig  `yaml:"server"`
}

// StorageConfig selects where records live.
type StorageConfig struct {
	// Backend is "badger" or "sqlite".
	// Default: "badger"
	Backend string `yaml:"backend"`

	// Path is the BadgerDB directory or the SQLite database file.
	// Default: "claimdesk.db"
	Path string `yaml:"path"`
}

// SearchConfig tunes the global search.
type SearchConfig struct {
	// Limit is the number of rows read from each collection per query.
	// Default: 5
	Limit int `yaml:"limit"`

	// Debounce is the delay between the last keystroke and the search.
	// Default: 300ms
	Debounce time.Duration `yaml:"debounce"`

	// PartialResults keeps the results of one collection when the other
	// collection's read fails. Default: false
	PartialResults bool `yaml:"partial_results"`

	// CacheTTL memoizes successful searches. Zero disables the cache.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// PoolSize is the number of workers used for collection reads.
	// Zero means one per CPU.
	PoolSize int `yaml:"pool_size"`
}

// ServerConfig configures the live search server.
type ServerConfig struct {
	// Addr is the listen address.
	// Default: ":8080"
	Addr string `yaml:"addr"`

	// QueriesPerSecond is the sustained query rate per websocket connection.
	// Default: 10
	QueriesPerSecond float64 `yaml:"queries_per_second"`

	// Burst is the number of queries a connection may send at once.
	// Default: 5
	Burst int `yaml:"burst"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBackend sets the storage backend.
func WithBackend(backend string) ConfigOption {
	return func(c *Config) {
		c.Storage.Backend = backend
	}
}

// WithPath sets the database path.
func WithPath(path string) ConfigOption {
	return func(c *Config) {
		c.Storage.Path = path
	}
}

// WithLimit sets the per-collection row limit.
func WithLimit(limit int) ConfigOption {
	return func(c *Config) {
		c.Search.Limit = limit
	}
}

// WithDebounce sets the search box debounce delay.
func WithDebounce(delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.Search.Debounce = delay
	}
}

// WithPartialResults enables or disables partial results.
func WithPartialResults(enabled bool) ConfigOption {
	return func(c *Config) {
		c.Search.PartialResults = enabled
	}
}

// WithCacheTTL sets the search cache lifetime.
func WithCacheTTL(ttl time.Duration) ConfigOption {
	return func(c *Config) {
		c.Search.CacheTTL = ttl
	}
}

// WithPoolSize sets the number of read workers.
func WithPoolSize(size int) ConfigOption {
	return func(c *Config) {
		c.Search.PoolSize = size
	}
}

// WithAddr sets the server listen address.
func WithAddr(addr string) ConfigOption {
	return func(c *Config) {
		c.Server.Addr = addr
	}
}

// WithRateLimit sets the per-connection query rate and burst.
func WithRateLimit(queriesPerSecond float64, burst int) ConfigOption {
	return func(c *Config) {
		c.Server.QueriesPerSecond = queriesPerSecond
		c.Server.Burst = burst
	}
}

// DefaultConfig returns a Config for a local BadgerDB store.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: BackendBadger,
			Path:    "claimdesk.db",
		},
		Search: SearchConfig{
			Limit:    5,
			Debounce: 300 * time.Millisecond,
		},
		Server: ServerConfig{
			Addr:             ":8080",
			QueriesPerSecond: 10,
			Burst:            5,
		},
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithBackend(BackendSQLite),
//	    WithPath("/var/lib/claimdesk/records.db"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	cfg.Apply(opts...)
	return cfg
}

// Apply applies options on top of the current values.
func (c *Config) Apply(opts ...ConfigOption) {
	for _, opt := range opts {
		opt(c)
	}
}

// Load reads a YAML file over the default values and validates the result.
// Keys missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize ensures the configuration is in a canonical form.
func (c *Config) Normalize() {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.Storage.Path = strings.TrimSpace(c.Storage.Path)
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Storage.Backend {
	case BackendBadger, BackendSQLite:
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfig, c.Storage.Backend)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("%w: storage path is required", ErrInvalidConfig)
	}
	if c.Search.Limit <= 0 {
		return fmt.Errorf("%w: search limit must be greater than 0", ErrInvalidConfig)
	}
	if c.Search.Debounce < 0 {
		return fmt.Errorf("%w: debounce must not be negative", ErrInvalidConfig)
	}
	if c.Search.CacheTTL < 0 {
		return fmt.Errorf("%w: cache TTL must not be negative", ErrInvalidConfig)
	}
	if c.Search.PoolSize < 0 {
		return fmt.Errorf("%w: pool size must not be negative", ErrInvalidConfig)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server address is required", ErrInvalidConfig)
	}
	if c.Server.QueriesPerSecond <= 0 || c.Server.Burst <= 0 {
		return fmt.Errorf("%w: server rate limit and burst must be greater than 0", ErrInvalidConfig)
	}
	return nil
}
