// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that fetch over the network.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `mapstructure:"user_agent" json:"user_agent" yaml:"user_agent"`

	// MaxRetries bounds retries on 429 and 503 responses (default 3).
	MaxRetries int `mapstructure:"max_retries" json:"max_retries" yaml:"max_retries"`
}

// DataConfig locates the per-journal-per-year data files.
type DataConfig struct {
	HTTPConfig `mapstructure:",squash" yaml:",inline"`

	// Root is a directory or an http(s) base URL holding <Journal>_<year>.csv files.
	Root string `mapstructure:"root" json:"root" yaml:"root"`

	// Years is the supported year range. It is a deployment setting, not a flag.
	Years []int `mapstructure:"years" json:"years" yaml:"years"`

	// MaxConcurrentFetches limits in-flight file fetches per journal. Zero means no limit.
	MaxConcurrentFetches int `mapstructure:"max_concurrent_fetches" json:"max_concurrent_fetches" yaml:"max_concurrent_fetches"`

	// SecretsDir holds plain-text secret files; "data-token" is sent as a bearer token.
	SecretsDir string `mapstructure:"secrets_dir" json:"secrets_dir" yaml:"secrets_dir"`
}

// SearchConfig holds settings for the query engine and the result cache.
type SearchConfig struct {
	// CacheCapacity is the number of cached query results (default 100).
	CacheCapacity int `mapstructure:"cache_capacity" json:"cache_capacity" yaml:"cache_capacity"`

	// Collation is the BCP 47 tag used to order titles (default "zh-Hant").
	Collation string `mapstructure:"collation" json:"collation" yaml:"collation"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	// Locale selects status message strings: "zh-TW" or "en".
	Locale string `mapstructure:"locale" json:"locale" yaml:"locale"`

	// Debounce is the quiet period after keyword/year input before searching (default 300ms).
	Debounce time.Duration `mapstructure:"debounce" json:"debounce" yaml:"debounce"`

	// InitialWindow is the number of results rendered after a search (default 50).
	InitialWindow int `mapstructure:"initial_window" json:"initial_window" yaml:"initial_window"`

	// WindowStep is the number of results revealed per scroll expansion (default 25).
	WindowStep int `mapstructure:"window_step" json:"window_step" yaml:"window_step"`

	// StatusClearDelay is how long a load failure message stays visible (default 3s).
	StatusClearDelay time.Duration `mapstructure:"status_clear_delay" json:"status_clear_delay" yaml:"status_clear_delay"`

	// SessionIdleTimeout closes sessions without activity (default 30m).
	SessionIdleTimeout time.Duration `mapstructure:"session_idle_timeout" json:"session_idle_timeout" yaml:"session_idle_timeout"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" json:"addr" yaml:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" json:"read_timeout" yaml:"read_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" json:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout" yaml:"shutdown_timeout"`

	// MetricsPath is where Prometheus metrics are exposed; empty disables them.
	MetricsPath string `mapstructure:"metrics_path" json:"metrics_path" yaml:"metrics_path"`
}

// ScrapeConfig holds settings for building the data files from econpapers.
type ScrapeConfig struct {
	HTTPConfig `mapstructure:",squash" yaml:",inline"`

	// OutDir receives the generated CSV files (default "data").
	OutDir string `mapstructure:"out_dir" json:"out_dir" yaml:"out_dir"`

	// LedgerPath is the SQLite file remembering finished pages and files.
	LedgerPath string `mapstructure:"ledger_path" json:"ledger_path" yaml:"ledger_path"`

	// RequestsPerSecond throttles requests to the listing site (default 2).
	RequestsPerSecond float64 `mapstructure:"requests_per_second" json:"requests_per_second" yaml:"requests_per_second"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is the minimum level (trace, debug, info, warn, error).
	Level string `mapstructure:"level" json:"level" yaml:"level"`

	// Format is "json" or "console".
	Format string `mapstructure:"format" json:"format" yaml:"format"`

	// Output is "stdout" or "stderr".
	Output string `mapstructure:"output" json:"output" yaml:"output"`
}

// Config groups every component's configuration.
type Config struct {
	Data    DataConfig    `mapstructure:"data" json:"data" yaml:"data"`
	Search  SearchConfig  `mapstructure:"search" json:"search" yaml:"search"`
	UI      UIConfig      `mapstructure:"ui" json:"ui" yaml:"ui"`
	Server  ServerConfig  `mapstructure:"server" json:"server" yaml:"server"`
	Scrape  ScrapeConfig  `mapstructure:"scrape" json:"scrape" yaml:"scrape"`
	Logging LoggingConfig `mapstructure:"logging" json:"logging" yaml:"logging"`
}
