// Package config loads and validates the dagrun YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nomis52/dagrun/schedule"
)

const (
	// Default task settings
	defaultRetries    = 1
	defaultRetryDelay = 5 * time.Second

	// Default monitoring settings
	defaultMetricsPrefix = "dagrun"
	defaultJobName       = "dagrun"
	defaultListenAddr    = ":9153"

	// Default history settings
	defaultHistoryDir     = "runs"
	defaultHistoryMaxRuns = 50

	// Default logging settings
	defaultLogLevel  = "info"
	defaultLogFormat = "json"
	defaultLogOutput = "stdout"
)

// Config represents the complete application configuration
type Config struct {
	Defaults   DefaultsConfig   `yaml:"defaults"`
	Logging    LoggingConfig    `yaml:"logging"`
	History    HistoryConfig    `yaml:"history"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Pipelines  []PipelineConfig `yaml:"pipelines"`
}

// DefaultsConfig holds fallback task settings applied when a task omits them
type DefaultsConfig struct {
	Retries    int           `yaml:"retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// LoggingConfig defines logging behavior settings
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	Output    string `yaml:"output"`
	AddSource bool   `yaml:"add_source"`
}

// HistoryConfig controls on-disk run history retention
type HistoryConfig struct {
	Dir     string `yaml:"dir"`
	MaxRuns int    `yaml:"max_runs"`
}

// MonitoringConfig holds metrics settings. Mode selects between "push"
// (remote write to a VictoriaMetrics/Prometheus endpoint), "scrape"
// (expose a /metrics endpoint on Listen) and "off".
type MonitoringConfig struct {
	Mode          string `yaml:"mode"`
	URL           string `yaml:"url"`
	MetricsPrefix string `yaml:"metrics_prefix"`
	JobName       string `yaml:"jobname"`
	Listen        string `yaml:"listen"`
}

// PipelineConfig describes a single pipeline: its tasks and the
// dependencies between them
type PipelineConfig struct {
	ID       string       `yaml:"id"`
	Schedule string       `yaml:"schedule"`
	Tasks    []TaskConfig `yaml:"tasks"`
}

// TaskConfig describes one task within a pipeline
type TaskConfig struct {
	ID         string         `yaml:"id"`
	Type       string         `yaml:"type"`
	Retries    int            `yaml:"retries"`
	RetryDelay time.Duration  `yaml:"retry_delay"`
	DependsOn  []string       `yaml:"depends_on"`
	Params     map[string]any `yaml:"params"`
}

// Validate performs basic validation on the configuration
func (c *Config) Validate() error {
	switch c.Monitoring.Mode {
	case "push":
		if c.Monitoring.URL == "" {
			return fmt.Errorf("monitoring URL is required in push mode")
		}
	case "scrape", "off":
	default:
		return fmt.Errorf("unknown monitoring mode %q", c.Monitoring.Mode)
	}
	if c.History.MaxRuns <= 0 {
		return fmt.Errorf("history max_runs must be positive")
	}
	if len(c.Pipelines) == 0 {
		return fmt.Errorf("at least one pipeline is required")
	}

	seen := make(map[string]bool)
	for _, p := range c.Pipelines {
		if p.ID == "" {
			return fmt.Errorf("pipeline ID is required")
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate pipeline %q", p.ID)
		}
		seen[p.ID] = true
		if p.Schedule != "" {
			if err := schedule.Validate(p.Schedule); err != nil {
				return fmt.Errorf("pipeline %q: invalid schedule: %w", p.ID, err)
			}
		}
		if len(p.Tasks) == 0 {
			return fmt.Errorf("pipeline %q has no tasks", p.ID)
		}
		for _, t := range p.Tasks {
			if t.ID == "" {
				return fmt.Errorf("pipeline %q: task ID is required", p.ID)
			}
			if t.Type == "" {
				return fmt.Errorf("pipeline %q: task %q has no type", p.ID, t.ID)
			}
			if t.Retries < 0 {
				return fmt.Errorf("pipeline %q: task %q: retries must not be negative", p.ID, t.ID)
			}
		}
	}
	return nil
}

// SetDefaults sets reasonable default values for optional fields
func (c *Config) SetDefaults() {
	if c.Defaults.Retries == 0 {
		c.Defaults.Retries = defaultRetries
	}
	if c.Defaults.RetryDelay == 0 {
		c.Defaults.RetryDelay = defaultRetryDelay
	}
	if c.History.Dir == "" {
		c.History.Dir = defaultHistoryDir
	}
	if c.History.MaxRuns == 0 {
		c.History.MaxRuns = defaultHistoryMaxRuns
	}
	if c.Monitoring.Mode == "" {
		c.Monitoring.Mode = "off"
	}
	if c.Monitoring.MetricsPrefix == "" {
		c.Monitoring.MetricsPrefix = defaultMetricsPrefix
	}
	if c.Monitoring.JobName == "" {
		c.Monitoring.JobName = defaultJobName
	}
	if c.Monitoring.Listen == "" {
		c.Monitoring.Listen = defaultListenAddr
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Logging.Output == "" {
		c.Logging.Output = defaultLogOutput
	}

	// Task-level settings fall back to the defaults stanza.
	for pi := range c.Pipelines {
		for ti := range c.Pipelines[pi].Tasks {
			t := &c.Pipelines[pi].Tasks[ti]
			if t.Retries == 0 {
				t.Retries = c.Defaults.Retries
			}
			if t.RetryDelay == 0 {
				t.RetryDelay = c.Defaults.RetryDelay
			}
		}
	}
}

// LoadConfig reads the YAML config file at the given path and returns a Config struct
func LoadConfig(path string) (Config, error) {
	var cfg Config
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
