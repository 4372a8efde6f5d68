// Package config loads and validates the ngdocs configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	Title    string         `yaml:"title"`
	Source   SourceConfig   `yaml:"source"`
	Output   OutputConfig   `yaml:"output"`
	Theme    ThemeConfig    `yaml:"theme"`
	Includes IncludesConfig `yaml:"includes"`
	Assets   AssetsConfig   `yaml:"assets"`
	Graphs   GraphsConfig   `yaml:"graphs"`
	Watch    WatchConfig    `yaml:"watch"`
	Serve    ServeConfig    `yaml:"serve"`
	History  HistoryConfig  `yaml:"history"`
	Notify   NotifyConfig   `yaml:"notify"`
}

// SourceConfig locates the analyzed source tree and the analyzer's graph
// export.
type SourceConfig struct {
	// Dir is the root of the watched source tree.
	Dir string `yaml:"dir"`
	// Graph is the path of the JSON dependency graph export.
	Graph string `yaml:"graph"`
	// Extension is the single source extension considered by the watcher.
	Extension string `yaml:"extension,omitempty"`
}

// OutputConfig controls where the site is written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean,omitempty"`
}

// ThemeConfig selects the visual theme.
type ThemeConfig struct {
	Name string `yaml:"name,omitempty"`
}

// IncludesConfig points at the additional-documentation manifest.
type IncludesConfig struct {
	Manifest string `yaml:"manifest,omitempty"`
}

// AssetsConfig points at a folder copied verbatim into the output root.
type AssetsConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// GraphsConfig controls dependency graph generation.
type GraphsConfig struct {
	Disabled bool `yaml:"disabled,omitempty"`
}

// WatchConfig controls the rebuild coordinator.
type WatchConfig struct {
	Enabled bool `yaml:"enabled,omitempty"`
	// DebounceMS is the quiet period before a rebuild fires, per event
	// class.
	DebounceMS int `yaml:"debounce_ms,omitempty"`
	// ResyncInterval, when set (e.g. "10m"), schedules periodic full
	// rebuilds as a safety net for missed filesystem events.
	ResyncInterval string `yaml:"resync_interval,omitempty"`
}

// ServeConfig controls the local static file server.
type ServeConfig struct {
	Enabled bool `yaml:"enabled,omitempty"`
	Port    int  `yaml:"port,omitempty"`
	Metrics bool `yaml:"metrics,omitempty"`
}

// HistoryConfig controls the build history store.
type HistoryConfig struct {
	// Path of the sqlite database; empty disables history.
	Path string `yaml:"path,omitempty"`
}

// NotifyConfig controls build event publishing.
type NotifyConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// Load reads, expands and validates a configuration file. A .env file next
// to the working directory is loaded first so ${VAR} references in the YAML
// resolve.
func Load(path string) (*Config, error) {
	// Best effort; a missing .env is the normal case.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Title == "" {
		c.Title = "Application documentation"
	}
	if c.Source.Extension == "" {
		c.Source.Extension = ".ts"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "./documentation"
	}
	if c.Theme.Name == "" {
		c.Theme.Name = "default"
	}
	if c.Watch.DebounceMS <= 0 {
		c.Watch.DebounceMS = 300
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = 8080
	}
	if c.Notify.Subject == "" {
		c.Notify.Subject = "ngdocs.builds"
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Source.Dir == "" {
		return fmt.Errorf("source.dir is required")
	}
	if c.Source.Graph == "" {
		return fmt.Errorf("source.graph is required")
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("serve.port %d out of range", c.Serve.Port)
	}
	if c.Notify.Enabled && c.Notify.URL == "" {
		return fmt.Errorf("notify.url is required when notify is enabled")
	}
	if c.Watch.ResyncInterval != "" {
		if _, err := time.ParseDuration(c.Watch.ResyncInterval); err != nil {
			return fmt.Errorf("watch.resync_interval: %w", err)
		}
	}
	return nil
}

// Resync returns the parsed resync interval, zero when disabled.
func (c *Config) Resync() time.Duration {
	if c.Watch.ResyncInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Watch.ResyncInterval)
	if err != nil {
		return 0
	}
	return d
}

// Debounce returns the watch debounce as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}
