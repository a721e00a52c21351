// Package config provides YAML-based configuration loading for Marketlens.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Marketlens configuration, loaded from marketlens.yaml.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Notify  NotifyConfig  `yaml:"notify"`
}

// StorageConfig holds connection settings for the experiment log store.
// Driver "sqlite" reads exported experiment files from Dir; driver
// "mysql" reads per-experiment databases from a live SQL server.
type StorageConfig struct {
	Driver              string `yaml:"driver"`
	Dir                 string `yaml:"dir"`
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	User                string `yaml:"user"`
	Password            string `yaml:"password"`
	FetchTimeoutSeconds int    `yaml:"fetch_timeout_seconds"`
}

// FetchTimeout returns the bulk-fetch deadline as a duration.
func (s StorageConfig) FetchTimeout() time.Duration {
	return time.Duration(s.FetchTimeoutSeconds) * time.Second
}

// ViewerConfig holds settings for the read-only viewer API server.
type ViewerConfig struct {
	Port        int    `yaml:"port"`
	Experiment  string `yaml:"experiment"`
	RefreshCron string `yaml:"refresh_cron"` // optional 5-field cron for report precompute
}

// NotifyConfig holds chat notification settings for report summaries.
type NotifyConfig struct {
	SlackToken     string `yaml:"slack_token"`
	SlackChannel   string `yaml:"slack_channel"`
	DiscordToken   string `yaml:"discord_token"`
	DiscordChannel string `yaml:"discord_channel"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "experiments"
	}
	if c.Storage.Host == "" {
		c.Storage.Host = "127.0.0.1"
	}
	if c.Storage.Port == 0 {
		c.Storage.Port = 3306
	}
	if c.Storage.User == "" {
		c.Storage.User = "root"
	}
	if c.Storage.FetchTimeoutSeconds == 0 {
		c.Storage.FetchTimeoutSeconds = 30
	}
	if c.Viewer.Port == 0 {
		c.Viewer.Port = 8080
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Storage.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("storage.driver %q is not supported (sqlite, mysql)", c.Storage.Driver))
	}
	if c.Storage.FetchTimeoutSeconds < 0 {
		errs = append(errs, "storage.fetch_timeout_seconds must not be negative")
	}
	if c.Viewer.Port < 0 || c.Viewer.Port > 65535 {
		errs = append(errs, "viewer.port must be between 0 and 65535")
	}
	if c.Notify.SlackToken != "" && c.Notify.SlackChannel == "" {
		errs = append(errs, "notify.slack_channel is required when slack_token is set")
	}
	if c.Notify.DiscordToken != "" && c.Notify.DiscordChannel == "" {
		errs = append(errs, "notify.discord_channel is required when discord_token is set")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
