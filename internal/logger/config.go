package logger

import "fmt"

// Config represents logging configuration
type Config struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, console
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

// DefaultConfig returns console-only info logging
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "console",
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
	}
}

// SetDefaults fills zero values and returns cfg
func (cfg *Config) SetDefaults() *Config {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format == "" {
		cfg.Format = "console"
	}
	if cfg.MaxSize == 0 {
		cfg.MaxSize = 100
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = 3
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 28
	}
	return cfg
}

// Validate validates logging configuration
func (cfg *Config) Validate() error {
	if cfg.MaxSize <= 0 {
		return fmt.Errorf("max_size must be positive")
	}
	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", cfg.Level)
	}
	switch cfg.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s", cfg.Format)
	}
	return nil
}
