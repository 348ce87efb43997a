// Package config loads the console configuration from JSON or YAML files
// and environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvBackendURL = "TOOLCONSOLE_BACKEND_URL"
	EnvLogLevel   = "TOOLCONSOLE_LOG_LEVEL"
	EnvLocale     = "TOOLCONSOLE_LOCALE"

	DefaultBackendURL = "http://localhost:8000"
	DefaultAddr       = "127.0.0.1:8090"
	DefaultRenderer   = "vanilla"
	DefaultLogLevel   = "info"
	DefaultLocale     = "en"

	// LabelsKey labels fields with their parameter key, LabelsHuman with a
	// title-cased split of it ("MAX_ROWS" becomes "Max Rows").
	LabelsKey   = "key"
	LabelsHuman = "human"
)

// Config is the console configuration.
type Config struct {
	Backend  BackendConfig `json:"backend" yaml:"backend"`
	Log      LogConfig     `json:"log" yaml:"log"`
	Server   ServerConfig  `json:"server" yaml:"server"`
	Theme    ThemeConfig   `json:"theme" yaml:"theme"`
	Renderer string        `json:"renderer" yaml:"renderer"`
	Labels   string        `json:"labels" yaml:"labels"`
	// Locale selects the catalog for console chrome and notices ("en", "zh").
	Locale string `json:"locale" yaml:"locale"`
}

type BackendConfig struct {
	URL string `json:"url" yaml:"url"`
	// Timeout is a time.ParseDuration string. Empty means no timeout.
	Timeout string `json:"timeout" yaml:"timeout"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	JSON  bool   `json:"json" yaml:"json"`
}

type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// ThemeConfig selects the theme tokens handed to the HTML renderer.
type ThemeConfig struct {
	Name    string            `json:"name" yaml:"name"`
	Variant string            `json:"variant" yaml:"variant"`
	Tokens  map[string]string `json:"tokens" yaml:"tokens"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Backend:  BackendConfig{URL: DefaultBackendURL},
		Log:      LogConfig{Level: DefaultLogLevel},
		Server:   ServerConfig{Addr: DefaultAddr},
		Theme:    ThemeConfig{Name: "default", Variant: "light"},
		Renderer: DefaultRenderer,
		Labels:   LabelsKey,
		Locale:   DefaultLocale,
	}
}

// Load reads path (when set), applies environment overrides and validates
// the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := Parse(data, path, &cfg); err != nil {
			return Config{}, err
		}
	}
	cfg = ApplyEnv(cfg, os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes data as JSON, falling back to YAML, on top of the values
// already present in cfg.
func Parse(data []byte, source string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil target")
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	jsonTarget := *cfg
	if err := json.Unmarshal(data, &jsonTarget); err == nil {
		*cfg = jsonTarget
		return nil
	}

	yamlTarget := *cfg
	if err := yaml.Unmarshal(data, &yamlTarget); err == nil {
		*cfg = yamlTarget
		return nil
	}

	return fmt.Errorf("config: parse %s: invalid JSON or YAML", source)
}

// ApplyEnv overlays environment overrides using lookup.
func ApplyEnv(cfg Config, lookup func(string) (string, bool)) Config {
	if lookup == nil {
		return cfg
	}
	if value, ok := lookup(EnvBackendURL); ok && strings.TrimSpace(value) != "" {
		cfg.Backend.URL = strings.TrimSpace(value)
	}
	if value, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(value) != "" {
		cfg.Log.Level = strings.TrimSpace(value)
	}
	if value, ok := lookup(EnvLocale); ok && strings.TrimSpace(value) != "" {
		cfg.Locale = strings.TrimSpace(value)
	}
	return cfg
}

// Validate checks the fields the console cannot run without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Backend.URL) == "" {
		return errors.New("config: backend.url is required")
	}
	if _, err := c.BackendTimeout(); err != nil {
		return err
	}
	switch c.Labels {
	case "", LabelsKey, LabelsHuman:
	default:
		return fmt.Errorf("config: labels must be %q or %q, got %q", LabelsKey, LabelsHuman, c.Labels)
	}
	return nil
}

// BackendTimeout parses Backend.Timeout.
func (c Config) BackendTimeout() (time.Duration, error) {
	raw := strings.TrimSpace(c.Backend.Timeout)
	if raw == "" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: backend.timeout: %w", err)
	}
	if timeout < 0 {
		return 0, fmt.Errorf("config: backend.timeout must not be negative")
	}
	return timeout, nil
}
