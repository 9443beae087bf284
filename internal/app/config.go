package app

import (
	"errors"
	"fmt"

	"github.com/vk/taskgrid/internal/config"
)

const (
	defaultLogLevel  = "info"
	defaultLogFormat = "text"
	defaultWorkers   = 1
)

var (
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validLogFormats = map[string]bool{"text": true, "json": true}
)

// Config holds all the necessary configuration for an App instance to run.
// Zero values mean "not set on the command line" and are filled from the
// configuration files, then from defaults.
type Config struct {
	ConfigPaths []string // hcl files or directories

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	Workers         int
	DOTOutput       string
	SnapshotOutput  string
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.LogLevel != "" && !validLogLevels[c.LogLevel] {
		errs = append(errs, fmt.Errorf("invalid log level %q (want debug, info, warn or error)", c.LogLevel))
	}
	if c.LogFormat != "" && !validLogFormats[c.LogFormat] {
		errs = append(errs, fmt.Errorf("invalid log format %q (want text or json)", c.LogFormat))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.HealthcheckPort < 0 || c.HealthcheckPort > 65535 {
		errs = append(errs, fmt.Errorf("healthcheck port %d is out of range", c.HealthcheckPort))
	}
	return errors.Join(errs...)
}

// merge fills unset fields from the file settings, then from defaults.
func (c Config) merge(s config.Settings) Config {
	if c.LogLevel == "" {
		c.LogLevel = s.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = s.LogFormat
	}
	if c.Workers == 0 {
		c.Workers = s.Workers
	}
	if c.HealthcheckPort == 0 {
		c.HealthcheckPort = s.HealthcheckPort
	}
	if c.DOTOutput == "" {
		c.DOTOutput = s.DOTOutput
	}
	if c.SnapshotOutput == "" {
		c.SnapshotOutput = s.SnapshotOutput
	}

	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = defaultLogFormat
	}
	if c.Workers == 0 {
		c.Workers = defaultWorkers
	}
	return c
}
