// Package config loads anchorscope configuration from file, environment,
// and defaults.
package config

import (
	"errors"
	"fmt"
)

// Default configuration values.
const (
	DefaultWorkers = 0 // 0 means NumCPU
	DefaultFormat  = "text"

	DefaultCyclomaticYellow = 5
	DefaultCyclomaticRed    = 10
	DefaultCognitiveYellow  = 3
	DefaultCognitiveRed     = 5
)

// Sentinel validation errors.
var (
	ErrInvalidFormat     = errors.New("invalid output format")
	ErrInvalidThresholds = errors.New("thresholds must satisfy 0 < yellow < red")
	ErrNegativeWorkers   = errors.New("workers must not be negative")
)

var validFormats = map[string]struct{}{
	"text": {},
	"json": {},
	"yaml": {},
}

// Thresholds holds the yellow/red boundaries for one metric.
type Thresholds struct {
	Yellow int `mapstructure:"yellow"`
	Red    int `mapstructure:"red"`
}

func (t Thresholds) validate(name string) error {
	if t.Yellow <= 0 || t.Red <= t.Yellow {
		return fmt.Errorf("%w: %s yellow=%d red=%d", ErrInvalidThresholds, name, t.Yellow, t.Red)
	}

	return nil
}

// Config is the root configuration.
type Config struct {
	// Workers caps the parallel file workers; 0 means NumCPU.
	Workers int `mapstructure:"workers"`

	// Format is the default report format: text, json, or yaml.
	Format string `mapstructure:"format"`

	// MetricsAddr, when set, serves a Prometheus /metrics endpoint on the
	// given address for the duration of the run.
	MetricsAddr string `mapstructure:"metrics_addr"`

	Cyclomatic Thresholds `mapstructure:"cyclomatic"`
	Cognitive  Thresholds `mapstructure:"cognitive"`
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeWorkers, c.Workers)
	}

	if _, ok := validFormats[c.Format]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Format)
	}

	if err := c.Cyclomatic.validate("cyclomatic"); err != nil {
		return err
	}

	return c.Cognitive.validate("cognitive")
}
