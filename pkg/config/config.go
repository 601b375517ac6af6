// Package config loads and validates application configuration from YAML
// files with environment-variable overrides, following the same
// layered-default + env-override shape as the platform this repo grew
// from. Configuration is built once at startup and treated as
// immutable thereafter: nothing below spawn/serve mutates a *Config
// after Load returns, per SPEC_FULL.md's "global mutable config"
// design note.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Env selects the deployment profile named on the CLI (--env).
type Env string

const (
	Development Env = "development"
	Production  Env = "production"
	Testing     Env = "testing"
)

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Search  SearchConfig  `yaml:"search"`
	Cache   CacheConfig   `yaml:"cache"`
	Redis   RedisConfig   `yaml:"redis"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Env     Env           `yaml:"env"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	StaticDir       string        `yaml:"staticDir"`
	Compress        bool          `yaml:"compress"`
}

// SearchConfig mirrors §6's configuration surface table.
type SearchConfig struct {
	SendScore             bool    `yaml:"sendScore"`
	SendHiddenFields      bool    `yaml:"sendHiddenFields"`
	MaxResultScore        float64 `yaml:"maxResultScore"`
	DefaultSearchLimit    int     `yaml:"defaultSearchLimit"`
	MaxSearchLimit        int     `yaml:"maxSearchLimit"`
	PrettyPrintSortedKeys bool    `yaml:"prettyPrintSortedKeys"`
}

// CacheConfig controls the on-disk scraped-corpus JSON cache.
type CacheConfig struct {
	Directory            string `yaml:"directory"`
	UseCaching           bool   `yaml:"useCaching"`
	WarnAboutHTTPVersion bool   `yaml:"warnAboutHttpVersion"`
	ResourcesDir         string `yaml:"resourcesDir"`
}

// RedisConfig is optional: when Addr is empty, no secondary cache
// mirror is wired in (see SPEC_FULL.md §4).
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// CachePath joins the configured resources dir and cache directory
// segment, sanitising the latter as §6's "Cache file layout" requires.
func (c CacheConfig) CachePath(sanitise func(string) string) string {
	return c.ResourcesDir + string(os.PathSeparator) + sanitise(c.Directory)
}

// Load reads a YAML config file (if provided), applies the named
// deployment profile's defaults, and finally applies MC426_*
// environment overrides.
func Load(path string, env Env) (*Config, error) {
	cfg := defaultConfig(env)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// defaultConfig returns a Config with the defaults from §6, further
// adjusted per the --env profile from §6's CLI surface: development
// enables send_score/send_hidden_fields and pretty JSON; production
// binds 0.0.0.0 and sets Server.Compress. No server code reads
// Compress, so responses are sent uncompressed in every profile.
func defaultConfig(env Env) *Config {
	cfg := &Config{
		Env: env,
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			StaticDir:       "Public",
		},
		Search: SearchConfig{
			SendScore:          false,
			SendHiddenFields:   false,
			MaxResultScore:     0.99,
			DefaultSearchLimit: 25,
			MaxSearchLimit:     100,
		},
		Cache: CacheConfig{
			Directory:            "Cache",
			UseCaching:           true,
			WarnAboutHTTPVersion: true,
			ResourcesDir:         ".",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}

	switch env {
	case Development:
		cfg.Search.SendScore = true
		cfg.Search.SendHiddenFields = true
		cfg.Search.PrettyPrintSortedKeys = true
		cfg.Logging.Format = "text"
		cfg.Logging.Level = "debug"
	case Production:
		cfg.Server.Addr = "0.0.0.0:8080"
		cfg.Server.Compress = true
	case Testing:
		cfg.Cache.UseCaching = false
		cfg.Logging.Level = "warn"
	}
	return cfg
}

// applyEnvOverrides reads MC426_* environment variables and overrides
// the corresponding config fields, matching the teacher's SP_*
// env-override convention.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MC426_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("MC426_SERVER_STATIC_DIR"); v != "" {
		cfg.Server.StaticDir = v
	}
	if v := os.Getenv("MC426_SEARCH_DEFAULT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.DefaultSearchLimit = n
		}
	}
	if v := os.Getenv("MC426_SEARCH_MAX_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.MaxSearchLimit = n
		}
	}
	if v := os.Getenv("MC426_SEARCH_SEND_SCORE"); v != "" {
		cfg.Search.SendScore = v == "true"
	}
	if v := os.Getenv("MC426_CACHE_DIRECTORY"); v != "" {
		cfg.Cache.Directory = v
	}
	if v := os.Getenv("MC426_CACHE_RESOURCES_DIR"); v != "" {
		cfg.Cache.ResourcesDir = v
	}
	if v := os.Getenv("MC426_CACHE_USE_CACHING"); v != "" {
		cfg.Cache.UseCaching = v == "true"
	}
	if v := os.Getenv("MC426_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("MC426_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("MC426_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MC426_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
