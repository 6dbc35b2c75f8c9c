// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Backend modes.
const (
	// ModeRemote talks to a huddle-backend server over HTTP.
	ModeRemote = "remote"
	// ModeEmbedded opens the SQLite store in-process.
	ModeEmbedded = "embedded"
)

// Log formats.
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

// EnvVar names the environment variable Load reads.
const EnvVar = "HUDDLE_CONFIG"

// maxPageSize mirrors the backend's page size cap.
const maxPageSize = 200

// Config is the master configuration for Huddle.
type Config struct {
	// Environment identifies the deployment type.
	Environment Environment `yaml:"environment"`

	// Backend selects and locates the chat backend.
	Backend BackendConfig `yaml:"backend"`

	// Client configures the CLI and viewer.
	Client ClientConfig `yaml:"client"`

	// Server configures huddle-backend serve.
	Server ServerConfig `yaml:"server"`

	// Logging configures the slog handler.
	Logging LoggingConfig `yaml:"logging"`

	// Per-environment overrides, applied after the base config.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per
// environment. Zero fields leave the base value in place.
type ConfigOverrides struct {
	Backend *BackendConfig `yaml:"backend,omitempty"`
	Client  *ClientConfig  `yaml:"client,omitempty"`
	Server  *ServerConfig  `yaml:"server,omitempty"`
	Logging *LoggingConfig `yaml:"logging,omitempty"`
}

// BackendConfig selects the backend.
type BackendConfig struct {
	// Mode is "remote" or "embedded".
	Mode string `yaml:"mode"`

	// URL is the huddle-backend base URL in remote mode.
	URL string `yaml:"url"`

	// StorePath is the SQLite database used in embedded mode and by
	// huddle-backend serve.
	StorePath string `yaml:"store_path"`
}

// ClientConfig configures the CLI and viewer.
type ClientConfig struct {
	// Origin is the public web origin used to build invite links.
	Origin string `yaml:"origin"`

	// PageSize is the number of messages fetched per feed page.
	PageSize int `yaml:"page_size"`

	// SessionFile stores the bearer token between CLI invocations.
	SessionFile string `yaml:"session_file"`
}

// ServerConfig configures the reference backend server.
type ServerConfig struct {
	// Address is the TCP listen address.
	Address string `yaml:"address"`

	// JoinInterval is the steady-state time between join attempts
	// allowed per user; JoinBurst attempts may be made at once.
	JoinInterval time.Duration `yaml:"join_interval"`
	JoinBurst    int           `yaml:"join_burst"`

	// MaxWatchTimeout caps how long a watch long-poll is held.
	MaxWatchTimeout time.Duration `yaml:"max_watch_timeout"`

	// MaxMediaSize bounds attachment uploads in bytes.
	MaxMediaSize int64 `yaml:"max_media_size"`

	// MediaURLPrefix, when set, makes media URLs absolute, e.g.
	// "https://chat.example.com/v1/media/".
	MediaURLPrefix string `yaml:"media_url_prefix"`

	// ShutdownTimeout bounds the drain of in-flight requests.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	// Level is a slog level name: debug, info, warn, or error.
	Level string `yaml:"level"`

	// Format is "auto" (text on a terminal, JSON otherwise), "text",
	// or "json".
	Format string `yaml:"format"`
}

// SlogLevel parses Level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}

// Default returns the default configuration. Commands run without a
// config file use it as is; LoadFile merges the file over it.
func Default() *Config {
	return &Config{
		Environment: Development,
		Backend: BackendConfig{
			Mode:      ModeRemote,
			URL:       "http://localhost:8750",
			StorePath: "${HOME}/.local/share/huddle/huddle.db",
		},
		Client: ClientConfig{
			Origin:      "http://localhost:8750",
			PageSize:    20,
			SessionFile: "${HOME}/.config/huddle/session",
		},
		Server: ServerConfig{
			Address:         "127.0.0.1:8750",
			JoinInterval:    2 * time.Second,
			JoinBurst:       5,
			MaxWatchTimeout: 60 * time.Second,
			MaxMediaSize:    8 << 20,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: FormatAuto,
		},
	}
}

// Load loads configuration from the file named by HUDDLE_CONFIG. It
// fails when the variable is unset.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your huddle.yaml config file, or use --config flag", EnvVar)
	}
	return LoadFile(configPath)
}

// Resolve loads flagPath when set, else the file named by
// HUDDLE_CONFIG when set, else returns Default with variables
// expanded.
func Resolve(flagPath string) (*Config, error) {
	switch {
	case flagPath != "":
		return LoadFile(flagPath)
	case os.Getenv(EnvVar) != "":
		return Load()
	default:
		cfg := Default()
		cfg.applyEnvironmentOverrides()
		cfg.expandVariables()
		return cfg, nil
	}
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		if overrides == nil {
			overrides = &ConfigOverrides{
				Logging: &LoggingConfig{Format: FormatJSON},
			}
		}
	}
	if overrides == nil {
		return
	}

	if o := overrides.Backend; o != nil {
		override(&c.Backend.Mode, o.Mode)
		override(&c.Backend.URL, o.URL)
		override(&c.Backend.StorePath, o.StorePath)
	}
	if o := overrides.Client; o != nil {
		override(&c.Client.Origin, o.Origin)
		override(&c.Client.PageSize, o.PageSize)
		override(&c.Client.SessionFile, o.SessionFile)
	}
	if o := overrides.Server; o != nil {
		override(&c.Server.Address, o.Address)
		override(&c.Server.JoinInterval, o.JoinInterval)
		override(&c.Server.JoinBurst, o.JoinBurst)
		override(&c.Server.MaxWatchTimeout, o.MaxWatchTimeout)
		override(&c.Server.MaxMediaSize, o.MaxMediaSize)
		override(&c.Server.MediaURLPrefix, o.MediaURLPrefix)
		override(&c.Server.ShutdownTimeout, o.ShutdownTimeout)
	}
	if o := overrides.Logging; o != nil {
		override(&c.Logging.Level, o.Level)
		override(&c.Logging.Format, o.Format)
	}
}

func override[T comparable](field *T, value T) {
	var zero T
	if value != zero {
		*field = value
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Backend.URL = expandVars(c.Backend.URL, vars)
	c.Backend.StorePath = expandVars(c.Backend.StorePath, vars)
	c.Client.Origin = expandVars(c.Client.Origin, vars)
	c.Client.SessionFile = expandVars(c.Client.SessionFile, vars)
	c.Server.MediaURLPrefix = expandVars(c.Server.MediaURLPrefix, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	switch c.Backend.Mode {
	case ModeRemote:
		if err := validateHTTPURL(c.Backend.URL); err != nil {
			errs = append(errs, fmt.Errorf("backend.url: %w", err))
		}
	case ModeEmbedded:
		if c.Backend.StorePath == "" {
			errs = append(errs, fmt.Errorf("backend.store_path is required in embedded mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("backend.mode must be one of: %v", []string{ModeRemote, ModeEmbedded}))
	}

	if err := validateHTTPURL(c.Client.Origin); err != nil {
		errs = append(errs, fmt.Errorf("client.origin: %w", err))
	}
	if c.Client.PageSize < 1 || c.Client.PageSize > maxPageSize {
		errs = append(errs, fmt.Errorf("client.page_size must be between 1 and %d", maxPageSize))
	}
	if c.Client.SessionFile == "" {
		errs = append(errs, fmt.Errorf("client.session_file is required"))
	}

	if c.Server.Address == "" {
		errs = append(errs, fmt.Errorf("server.address is required"))
	}
	if c.Server.JoinInterval <= 0 {
		errs = append(errs, fmt.Errorf("server.join_interval must be positive"))
	}
	if c.Server.JoinBurst < 1 {
		errs = append(errs, fmt.Errorf("server.join_burst must be at least 1"))
	}
	if c.Server.MaxWatchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.max_watch_timeout must be positive"))
	}
	if c.Server.MaxMediaSize <= 0 {
		errs = append(errs, fmt.Errorf("server.max_media_size must be positive"))
	}
	if c.Server.MediaURLPrefix != "" {
		if err := validateHTTPURL(c.Server.MediaURLPrefix); err != nil {
			errs = append(errs, fmt.Errorf("server.media_url_prefix: %w", err))
		}
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	formats := []string{FormatAuto, FormatText, FormatJSON}
	if !slices.Contains(formats, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be one of: %v", formats))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func validateHTTPURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%q is not an absolute http or https URL", raw)
	}
	return nil
}

// EnsureDir creates the parent directory of path, for the session file
// and the embedded store.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("config: creating %s: %w", dir, err)
	}
	return nil
}
