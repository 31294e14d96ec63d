// Package config loads the YAML configuration that names the crawl targets
// and tunes the pipeline.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"internradar/internal/model"
	"internradar/internal/source"
)

// Config is the root configuration for internradar.
type Config struct {
	PollInterval time.Duration // how often a crawl cycle runs
	OwnerTimeout time.Duration // per-owner crawl budget; zero disables
	DatabasePath string
	Politeness   source.Politeness
	Metrics      MetricsConfig
	Notification NotificationConfig
	Companies    []CompanyConfig
	Sources      []SourceConfig
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // e.g. ":9090"; empty disables the endpoint
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log", "slack", or "none"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// CompanyConfig describes a single company careers page. Company cadences are
// configured in hours.
type CompanyConfig struct {
	Name         string
	URL          string
	SourceType   string
	Selector     string
	CadenceHours int
	Enabled      bool
}

// SourceConfig describes a named job-board source. Source cadences are
// configured in minutes and carry a priority tier (lower crawls first).
type SourceConfig struct {
	Name           string
	URL            string
	SourceType     string
	CadenceMinutes int
	Priority       int
	Enabled        bool
}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as
// strings).
type rawConfig struct {
	PollInterval string              `yaml:"poll_interval"`
	OwnerTimeout string              `yaml:"owner_timeout"`
	DatabasePath string              `yaml:"database_path"`
	Politeness   rawPolitenessConfig `yaml:"politeness"`
	Metrics      MetricsConfig       `yaml:"metrics"`
	Notification NotificationConfig  `yaml:"notification"`
	Companies    []rawCompanyConfig  `yaml:"companies"`
	Sources      []rawSourceConfig   `yaml:"sources"`
}

type rawPolitenessConfig struct {
	MinDelay         string `yaml:"min_delay"`
	MaxDelay         string `yaml:"max_delay"`
	RateLimitBackoff string `yaml:"rate_limit_backoff"`
}

type rawCompanyConfig struct {
	Name         string `yaml:"name"`
	URL          string `yaml:"url"`
	SourceType   string `yaml:"source_type"`
	Selector     string `yaml:"selector"`
	CadenceHours int    `yaml:"cadence_hours"`
	Enabled      bool   `yaml:"enabled"`
}

type rawSourceConfig struct {
	Name           string `yaml:"name"`
	URL            string `yaml:"url"`
	SourceType     string `yaml:"source_type"`
	CadenceMinutes int    `yaml:"cadence_minutes"`
	Priority       int    `yaml:"priority"`
	Enabled        bool   `yaml:"enabled"`
}

const (
	defaultPollInterval = 15 * time.Minute
	defaultOwnerTimeout = 5 * time.Minute
	defaultDatabasePath = "internradar.db"
)

// Load reads and parses the YAML config file at path, validates it, and
// returns Config. Environment variables in the file are expanded first.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := &Config{
		PollInterval: defaultPollInterval,
		OwnerTimeout: defaultOwnerTimeout,
		DatabasePath: raw.DatabasePath,
		Metrics:      raw.Metrics,
		Notification: raw.Notification,
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = defaultDatabasePath
	}

	if raw.PollInterval != "" {
		cfg.PollInterval, err = time.ParseDuration(raw.PollInterval)
		if err != nil {
			return nil, fmt.Errorf("parse poll_interval %q: %w", raw.PollInterval, err)
		}
	}
	if raw.OwnerTimeout != "" {
		cfg.OwnerTimeout, err = time.ParseDuration(raw.OwnerTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse owner_timeout %q: %w", raw.OwnerTimeout, err)
		}
	}

	cfg.Politeness, err = parsePoliteness(raw.Politeness)
	if err != nil {
		return nil, err
	}

	for _, c := range raw.Companies {
		sourceType := c.SourceType
		if sourceType == "" {
			sourceType = "careerpage"
		}
		cfg.Companies = append(cfg.Companies, CompanyConfig{
			Name:         c.Name,
			URL:          c.URL,
			SourceType:   sourceType,
			Selector:     c.Selector,
			CadenceHours: c.CadenceHours,
			Enabled:      c.Enabled,
		})
	}
	for _, s := range raw.Sources {
		sourceType := s.SourceType
		if sourceType == "" {
			sourceType = "board"
		}
		cfg.Sources = append(cfg.Sources, SourceConfig{
			Name:           s.Name,
			URL:            s.URL,
			SourceType:     sourceType,
			CadenceMinutes: s.CadenceMinutes,
			Priority:       s.Priority,
			Enabled:        s.Enabled,
		})
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parsePoliteness(raw rawPolitenessConfig) (source.Politeness, error) {
	var p source.Politeness
	var err error
	if raw.MinDelay != "" {
		p.MinDelay, err = time.ParseDuration(raw.MinDelay)
		if err != nil {
			return p, fmt.Errorf("parse politeness.min_delay %q: %w", raw.MinDelay, err)
		}
	}
	if raw.MaxDelay != "" {
		p.MaxDelay, err = time.ParseDuration(raw.MaxDelay)
		if err != nil {
			return p, fmt.Errorf("parse politeness.max_delay %q: %w", raw.MaxDelay, err)
		}
	}
	if raw.RateLimitBackoff != "" {
		p.RateLimitBackoff, err = time.ParseDuration(raw.RateLimitBackoff)
		if err != nil {
			return p, fmt.Errorf("parse politeness.rate_limit_backoff %q: %w", raw.RateLimitBackoff, err)
		}
	}
	return p, nil
}

// ToOwners converts the configured companies and sources into owner records
// ready for the store. Disabled entries become inactive owners so an owner
// removed from rotation keeps its history.
func (c *Config) ToOwners() []model.Owner {
	var owners []model.Owner
	for _, co := range c.Companies {
		owners = append(owners, model.Owner{
			Name:       co.Name,
			Kind:       model.OwnerCompany,
			URL:        co.URL,
			SourceType: co.SourceType,
			Selector:   co.Selector,
			Cadence:    time.Duration(co.CadenceHours) * time.Hour,
			Active:     co.Enabled,
		})
	}
	for _, so := range c.Sources {
		owners = append(owners, model.Owner{
			Name:       so.Name,
			Kind:       model.OwnerBoard,
			URL:        so.URL,
			SourceType: so.SourceType,
			Cadence:    time.Duration(so.CadenceMinutes) * time.Minute,
			Priority:   so.Priority,
			Active:     so.Enabled,
		})
	}
	return owners
}

func validate(cfg *Config) error {
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %v", cfg.PollInterval)
	}
	if cfg.OwnerTimeout < 0 {
		return fmt.Errorf("owner_timeout must not be negative, got %v", cfg.OwnerTimeout)
	}

	enabled := 0
	seen := make(map[string]struct{})
	for _, c := range cfg.Companies {
		if c.Name == "" || c.URL == "" {
			return fmt.Errorf("every company needs a name and url")
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("duplicate owner name %q", c.Name)
		}
		seen[c.Name] = struct{}{}
		if c.CadenceHours <= 0 {
			return fmt.Errorf("company %q: cadence_hours must be positive", c.Name)
		}
		if c.Enabled {
			enabled++
		}
	}
	for _, s := range cfg.Sources {
		if s.Name == "" || s.URL == "" {
			return fmt.Errorf("every source needs a name and url")
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("duplicate owner name %q", s.Name)
		}
		seen[s.Name] = struct{}{}
		if s.CadenceMinutes <= 0 {
			return fmt.Errorf("source %q: cadence_minutes must be positive", s.Name)
		}
		if s.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one company or source must be enabled")
	}

	switch cfg.Notification.Type {
	case "", "none", "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	default:
		return fmt.Errorf("unknown notification.type %q", cfg.Notification.Type)
	}

	return nil
}
