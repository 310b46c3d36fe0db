package retry

import (
	"errors"
	"time"
)

// Config defines the configuration for the retry mechanism.
type Config struct {
	Enable      bool          `mapstructure:"enable"`       // Enable retry
	Attempts    int           `mapstructure:"attempts"`     // Total number of attempts
	Interval    time.Duration `mapstructure:"interval"`     // Wait before the second attempt
	Multiplier  float64       `mapstructure:"multiplier"`   // Growth factor between waits
	MaxInterval time.Duration `mapstructure:"max_interval"` // Upper bound for a single wait
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() *Config {
	return &Config{
		Enable:      true,
		Attempts:    3,
		Interval:    2 * time.Second,
		Multiplier:  2,
		MaxInterval: 30 * time.Second,
	}
}

// Validate validates the retry configuration.
func (cfg *Config) Validate() error {
	if cfg == nil || !cfg.Enable {
		return nil
	}
	if cfg.Attempts <= 0 {
		return errors.New("attempts must be greater than zero")
	}
	if cfg.Interval < 0 || cfg.MaxInterval < 0 {
		return errors.New("intervals cannot be negative")
	}
	if cfg.Multiplier != 0 && cfg.Multiplier < 1 {
		return errors.New("multiplier must be at least 1")
	}
	return nil
}
