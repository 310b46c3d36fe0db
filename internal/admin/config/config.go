// Package config loads the admin CLI configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"inkpress/internal/logger"

	"github.com/spf13/viper"
)

// AppName is the config file name searched for when no path is given
const AppName = "inkpress-admin"

// Config represents the admin CLI configuration
type Config struct {
	Server ServerConfig  `mapstructure:"server"`
	Log    logger.Config `mapstructure:"log"`
}

// ServerConfig locates the admin server
type ServerConfig struct {
	Address string        `mapstructure:"address"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoadConfig loads the CLI configuration. A missing file is not an error
// when path is empty.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(AppName)
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/inkpress")
	}
	v.SetConfigType("yaml")

	v.SetEnvPrefix("INKPRESS_ADMIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("server.address")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	setDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

func setDefaults(config *Config) {
	if config.Server.Address == "" {
		config.Server.Address = "http://localhost:8080"
	}
	config.Server.Address = strings.TrimRight(config.Server.Address, "/")
	if config.Server.Timeout == 0 {
		config.Server.Timeout = 3 * time.Minute
	}
	if config.Log.Level == "" {
		config.Log.Level = "warn"
	}
	config.Log.SetDefaults()
}

func validateConfig(config *Config) error {
	u, err := url.Parse(config.Server.Address)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server address must be an http(s) URL: %q", config.Server.Address)
	}
	if config.Server.Timeout < 0 {
		return errors.New("server timeout cannot be negative")
	}
	return config.Log.Validate()
}
