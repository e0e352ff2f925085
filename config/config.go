// Package config loads the lazy lifecycle demo configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Default gate settings.
	defaultTickCount       = 2
	defaultDeadline        = 3 * time.Second
	defaultHistoryCapacity = 64

	// Default demo host simulation settings.
	defaultCycleSpec    = "* * * * *"
	defaultTickInterval = 16 * time.Millisecond
	defaultResumeDelay  = 50 * time.Millisecond

	// Default monitoring settings.
	defaultListenAddr = ":9464"

	// Default logging settings.
	defaultLogLevel  = "info"
	defaultLogFormat = "text"
	defaultLogOutput = "stdout"
)

// Config represents the complete demo configuration.
type Config struct {
	Lazy       LazyConfig       `yaml:"lazy"`
	Demo       DemoConfig       `yaml:"demo"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LazyConfig holds the gate parameters handed to the orchestrator.
type LazyConfig struct {
	// TickCount is the number of render ticks that count as the first
	// meaningful render.
	TickCount int `yaml:"tick_count"`

	// Deadline bounds how long dispatch can be deferred when ticks never
	// arrive.
	Deadline time.Duration `yaml:"deadline"`

	// HistoryCapacity bounds countdown down-event diagnostics.
	HistoryCapacity int `yaml:"history_capacity"`
}

// DemoConfig drives the simulated host component.
type DemoConfig struct {
	// CycleSpec is the cron schedule for launching fresh activation cycles.
	CycleSpec string `yaml:"cycle_spec"`

	// TickInterval is the simulated render tick period.
	TickInterval time.Duration `yaml:"tick_interval"`

	// ResumeDelay is how long the simulated component takes to reach resumed
	// after a cycle begins.
	ResumeDelay time.Duration `yaml:"resume_delay"`
}

// MonitoringConfig holds the metrics endpoint settings.
type MonitoringConfig struct {
	// ListenAddr is the address the /metrics HTTP server binds to.
	ListenAddr string `yaml:"listen_addr"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	Output    string `yaml:"output"`
	AddSource bool   `yaml:"add_source"`
}

// LoadConfig reads, parses and validates the configuration at path, applying
// defaults for unset fields.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// SetDefaults fills in defaults for unset fields.
func (c *Config) SetDefaults() {
	if c.Lazy.TickCount == 0 {
		c.Lazy.TickCount = defaultTickCount
	}
	if c.Lazy.Deadline == 0 {
		c.Lazy.Deadline = defaultDeadline
	}
	if c.Lazy.HistoryCapacity == 0 {
		c.Lazy.HistoryCapacity = defaultHistoryCapacity
	}
	if c.Demo.CycleSpec == "" {
		c.Demo.CycleSpec = defaultCycleSpec
	}
	if c.Demo.TickInterval == 0 {
		c.Demo.TickInterval = defaultTickInterval
	}
	if c.Demo.ResumeDelay == 0 {
		c.Demo.ResumeDelay = defaultResumeDelay
	}
	if c.Monitoring.ListenAddr == "" {
		c.Monitoring.ListenAddr = defaultListenAddr
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
}

// Validate performs basic validation on the configuration.
func (c *Config) Validate() error {
	if c.Lazy.TickCount < 1 {
		return fmt.Errorf("lazy tick_count must be at least 1, got %d", c.Lazy.TickCount)
	}
	if c.Lazy.Deadline <= 0 {
		return fmt.Errorf("lazy deadline must be positive, got %v", c.Lazy.Deadline)
	}
	if c.Lazy.HistoryCapacity < 0 {
		return fmt.Errorf("lazy history_capacity must not be negative, got %d", c.Lazy.HistoryCapacity)
	}
	if c.Demo.TickInterval <= 0 {
		return fmt.Errorf("demo tick_interval must be positive, got %v", c.Demo.TickInterval)
	}
	if c.Demo.ResumeDelay < 0 {
		return fmt.Errorf("demo resume_delay must not be negative, got %v", c.Demo.ResumeDelay)
	}
	return nil
}
