// Package config provides YAML configuration parsing for a live feed.
//
// This package enables running the feed as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	title: Team Feed
//	port: 3200
//	data_dir: ${LIVEFEED_DATA:-./data}
//	log_level: info
//	session_buffer: 64
//	write_timeout: 5s
//	allowed_origins:
//	  - http://localhost:5173
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort          = 3200
	defaultDataDir       = "./data"
	defaultLogLevel      = "info"
	defaultSessionBuffer = 64
	defaultWriteTimeout  = 5 * time.Second

	minWriteTimeout  = 100 * time.Millisecond
	maxWriteTimeout  = time.Minute
	maxSessionBuffer = 10000
)

// defaultAllowedOrigins is the development frontend origin.
var defaultAllowedOrigins = []string{"http://localhost:5173"}

// Config is the root configuration structure for a feed server.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is reported by /api/info. Defaults to "Live Feed" if not set.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 3200.
	Port int `yaml:"port"`

	// DataDir holds the users.json and posts.json snapshots.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	DataDir string `yaml:"data_dir"`

	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `yaml:"log_level"`

	// SessionBuffer is the number of pushes buffered per viewer before the
	// viewer is dropped. Defaults to 64.
	SessionBuffer int `yaml:"session_buffer"`

	// WriteTimeout bounds every push write. Defaults to 5s.
	WriteTimeout Duration `yaml:"write_timeout"`

	// AllowedOrigins lists browser origins accepted by the API and push
	// channels. "*" allows any origin. Values support environment variable
	// substitution.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Level returns the parsed log level.
func (c *Config) Level() slog.Level {
	lvl, _ := ParseLevel(c.LogLevel)
	return lvl
}

// ParseLevel parses a log level name. The empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level must be debug, info, warn or error, got %q", s)
	}
	return lvl, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		sub := envVarPattern.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}

		name := sub[1]
		hasDefault := len(sub) > 2 && sub[2] != ""
		def := ""
		if hasDefault && len(sub) > 3 {
			def = sub[3]
		}

		value, ok := os.LookupEnv(name)
		if !ok {
			if hasDefault {
				return def
			}
			firstErr = fmt.Errorf("environment variable %q is not set", name)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses a YAML configuration file.
//
// Returns an error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in DataDir and AllowedOrigins. Defaults
// are applied to every unset field. An empty document is a valid config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.DataDir == "" {
		c.DataDir = defaultDataDir
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.SessionBuffer == 0 {
		c.SessionBuffer = defaultSessionBuffer
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = Duration(defaultWriteTimeout)
	}
	// nil means unset; an explicit empty list disables browser origins
	if c.AllowedOrigins == nil {
		c.AllowedOrigins = append([]string(nil), defaultAllowedOrigins...)
	}
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	dir, err := expandEnvVars(c.DataDir)
	if err != nil {
		return fmt.Errorf("data_dir: %w", err)
	}
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	c.DataDir = dir

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.SessionBuffer < 1 || c.SessionBuffer > maxSessionBuffer {
		return fmt.Errorf("session_buffer must be between 1 and %d, got %d", maxSessionBuffer, c.SessionBuffer)
	}

	if d := c.WriteTimeout.Duration(); d < minWriteTimeout || d > maxWriteTimeout {
		return fmt.Errorf("write_timeout must be between %s and %s, got %s", minWriteTimeout, maxWriteTimeout, d)
	}

	for i, o := range c.AllowedOrigins {
		expanded, err := expandEnvVars(o)
		if err != nil {
			return fmt.Errorf("allowed_origins[%d]: %w", i, err)
		}
		if err := validateOrigin(expanded); err != nil {
			return fmt.Errorf("allowed_origins[%d]: %w", i, err)
		}
		c.AllowedOrigins[i] = strings.TrimSuffix(expanded, "/")
	}

	return nil
}

// validateOrigin accepts "*" or a scheme://host[:port] origin.
func validateOrigin(o string) error {
	if o == "*" {
		return nil
	}
	u, err := url.Parse(o)
	if err != nil {
		return fmt.Errorf("invalid origin %q: %w", o, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("origin %q must use http or https", o)
	}
	if u.Host == "" {
		return fmt.Errorf("origin %q has no host", o)
	}
	if u.Path != "" && u.Path != "/" {
		return fmt.Errorf("origin %q must not have a path", o)
	}
	return nil
}
