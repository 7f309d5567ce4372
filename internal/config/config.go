// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads paper-search settings from file, environment and
// defaults into types.Config.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/pdiddy/paper-search/internal/catalog"
	"github.com/pdiddy/paper-search/pkg/types"
)

// Name is the config file base name and the env prefix source.
const Name = "paper-search"

// EnvPrefix prefixes environment overrides, e.g. PAPER_SEARCH_DATA_ROOT.
const EnvPrefix = "PAPER_SEARCH"

const defaultUserAgent = "paper-search/0.1"

// SetDefaults registers every key with its default value. Keys must be
// registered for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data.root", "data")
	v.SetDefault("data.years", catalog.DefaultYears)
	v.SetDefault("data.timeout", 30*time.Second)
	v.SetDefault("data.user_agent", defaultUserAgent)
	v.SetDefault("data.max_retries", 3)
	v.SetDefault("data.max_concurrent_fetches", 0)
	v.SetDefault("data.secrets_dir", ".secrets")

	v.SetDefault("search.cache_capacity", 100)
	v.SetDefault("search.collation", "zh-Hant")

	v.SetDefault("ui.locale", "zh-TW")
	v.SetDefault("ui.debounce", 300*time.Millisecond)
	v.SetDefault("ui.initial_window", 50)
	v.SetDefault("ui.window_step", 25)
	v.SetDefault("ui.status_clear_delay", 3*time.Second)
	v.SetDefault("ui.session_idle_timeout", 30*time.Minute)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.metrics_path", "/metrics")

	v.SetDefault("scrape.out_dir", "data")
	v.SetDefault("scrape.ledger_path", ".cache/scrape.db")
	v.SetDefault("scrape.requests_per_second", 2.0)
	v.SetDefault("scrape.timeout", 30*time.Second)
	v.SetDefault("scrape.user_agent", defaultUserAgent)
	v.SetDefault("scrape.max_retries", 3)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
}

// Configure prepares v: defaults, environment overrides and the search path
// for paper-search.yaml.
func Configure(v *viper.Viper, file string, searchPaths ...string) {
	SetDefaults(v)
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(Name)
		v.SetConfigType("yaml")
		for _, p := range searchPaths {
			v.AddConfigPath(p)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load unmarshals v into a validated configuration.
func Load(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Data.Years = catalog.Years(cfg.Data.Years)
	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func Validate(cfg types.Config) error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(cfg.Data.Root != "", "data.root must not be empty")
	for _, y := range cfg.Data.Years {
		check(y > 0, "data.years: invalid year %d", y)
	}
	check(cfg.Data.MaxConcurrentFetches >= 0, "data.max_concurrent_fetches must not be negative")
	check(cfg.Data.MaxRetries >= 0, "data.max_retries must not be negative")

	check(cfg.Search.CacheCapacity > 0, "search.cache_capacity must be positive, got %d", cfg.Search.CacheCapacity)
	if _, err := language.Parse(cfg.Search.Collation); err != nil {
		errs = append(errs, fmt.Errorf("search.collation %q: %w", cfg.Search.Collation, err))
	}

	check(cfg.UI.Debounce >= 0, "ui.debounce must not be negative")
	check(cfg.UI.InitialWindow > 0, "ui.initial_window must be positive")
	check(cfg.UI.WindowStep > 0, "ui.window_step must be positive")
	check(cfg.UI.StatusClearDelay >= 0, "ui.status_clear_delay must not be negative")

	check(cfg.Server.Addr != "", "server.addr must not be empty")
	check(cfg.Server.MetricsPath == "" || strings.HasPrefix(cfg.Server.MetricsPath, "/"),
		"server.metrics_path must start with /")

	check(cfg.Scrape.RequestsPerSecond > 0, "scrape.requests_per_second must be positive")

	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "console", "pretty":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q: want json or console", cfg.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
