package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"inkpress/internal/git"
	"inkpress/internal/logger"

	"github.com/spf13/viper"
)

// AppName is the name of the application
const AppName = "inkpress"

// Config represents the complete admin server configuration
type Config struct {
	Server ServerConfig  `mapstructure:"server"`
	Site   SiteConfig    `mapstructure:"site"`
	Git    git.Config    `mapstructure:"git"`
	API    APIConfig     `mapstructure:"api"`
	Notify NotifyConfig  `mapstructure:"notify"`
	Log    logger.Config `mapstructure:"log"`
}

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SiteConfig locates the files of the blog repository.
// Relative paths are resolved against Root, which must be the git work tree.
type SiteConfig struct {
	Root         string `mapstructure:"root"`
	HomepageFile string `mapstructure:"homepage_file"`
	SettingsFile string `mapstructure:"settings_file"`
	DataDir      string `mapstructure:"data_dir"`
	ContentDir   string `mapstructure:"content_dir"`
	LogsDir      string `mapstructure:"logs_dir"`
}

// Path resolves p against the site root
func (s SiteConfig) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.Root, p)
}

// APIConfig represents the API configuration
type APIConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

// CORSConfig represents the CORS configuration
type CORSConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	MaxAge         int      `mapstructure:"max_age"`
}

// NotifyConfig represents deploy notification configuration
type NotifyConfig struct {
	Webhook WebhookConfig `mapstructure:"webhook"`
}

// WebhookConfig represents the webhook notification configuration
type WebhookConfig struct {
	Enabled    bool              `mapstructure:"enabled"`
	URL        string            `mapstructure:"url"`
	Secret     string            `mapstructure:"secret"`
	Timeout    time.Duration     `mapstructure:"timeout"`
	MaxRetries int               `mapstructure:"max_retries"`
	Headers    map[string]string `mapstructure:"headers"`
}

// LoadConfig loads server configuration from file. An empty path searches
// the working directory and the usual config locations for inkpress.yaml.
// Keys present in the file can be overridden with INKPRESS_ prefixed environment
// variables, e.g. INKPRESS_GIT_BRANCH.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(AppName)
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/" + AppName)
		v.AddConfigPath("/etc/" + AppName)
	}
	v.SetConfigType("yaml")

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

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

// setDefaults sets default values for configuration
func setDefaults(config *Config) {
	if config.Server.Address == "" {
		config.Server.Address = ":8080"
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = 30 * time.Second
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = 5 * time.Minute
	}
	if config.Server.IdleTimeout == 0 {
		config.Server.IdleTimeout = 2 * time.Minute
	}
	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = 30 * time.Second
	}

	if config.Site.Root == "" {
		config.Site.Root = "."
	}
	if config.Site.HomepageFile == "" {
		config.Site.HomepageFile = "config/homepage.json"
	}
	if config.Site.SettingsFile == "" {
		config.Site.SettingsFile = "config/settings.json"
	}
	if config.Site.DataDir == "" {
		config.Site.DataDir = "content/data"
	}
	if config.Site.ContentDir == "" {
		config.Site.ContentDir = "content/posts"
	}
	if config.Site.LogsDir == "" {
		config.Site.LogsDir = "logs/deployments"
	}

	if config.Git.Binary == "" {
		config.Git.Binary = "git"
	}
	if config.Git.Remote == "" {
		config.Git.Remote = "origin"
	}
	if config.Git.CommitMessage == "" {
		config.Git.CommitMessage = "Update site configuration via admin panel"
	}
	if config.Git.Timeout == 0 {
		config.Git.Timeout = 2 * time.Minute
	}
	if config.Git.Push.Enable && config.Git.Push.Attempts == 0 {
		config.Git.Push.Attempts = 3
		config.Git.Push.Interval = 2 * time.Second
		config.Git.Push.Multiplier = 2
	}

	if config.API.CORS.MaxAge == 0 {
		config.API.CORS.MaxAge = 86400
	}
	if len(config.API.CORS.AllowedMethods) == 0 {
		config.API.CORS.AllowedMethods = []string{
			"GET", "POST", "PUT", "DELETE", "OPTIONS",
		}
	}
	if len(config.API.CORS.AllowedHeaders) == 0 {
		config.API.CORS.AllowedHeaders = []string{
			"Content-Type", "Authorization", "X-Request-ID",
		}
	}

	if config.Notify.Webhook.Timeout == 0 {
		config.Notify.Webhook.Timeout = 10 * time.Second
	}
	if config.Notify.Webhook.MaxRetries == 0 {
		config.Notify.Webhook.MaxRetries = 3
	}

	config.Log.SetDefaults()
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if err := config.Log.Validate(); err != nil {
		return fmt.Errorf("invalid log config: %w", err)
	}

	if err := config.Git.Push.Validate(); err != nil {
		return fmt.Errorf("invalid git push retry config: %w", err)
	}

	if config.Git.Timeout < 0 {
		return fmt.Errorf("git timeout cannot be negative")
	}

	if config.Notify.Webhook.Enabled && config.Notify.Webhook.URL == "" {
		return fmt.Errorf("webhook url is required when webhook notifications are enabled")
	}

	if config.API.CORS.Enabled && len(config.API.CORS.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin is required when CORS is enabled")
	}

	return nil
}
