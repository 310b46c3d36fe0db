package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inkpress.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, "site:\n  root: /srv/blog\n"))
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.Server.Address)
		assert.Equal(t, "/srv/blog", cfg.Site.Root)
		assert.Equal(t, "/srv/blog/config/homepage.json", cfg.Site.Path(cfg.Site.HomepageFile))
		assert.Equal(t, "/srv/blog/content/data", cfg.Site.Path(cfg.Site.DataDir))
		assert.Equal(t, "/srv/blog/logs/deployments", cfg.Site.Path(cfg.Site.LogsDir))
		assert.Equal(t, "git", cfg.Git.Binary)
		assert.Equal(t, "origin", cfg.Git.Remote)
		assert.Equal(t, 2*time.Minute, cfg.Git.Timeout)
		assert.Equal(t, "info", cfg.Log.Level)
	})

	t.Run("overrides", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, `
server:
  address: 127.0.0.1:9000
site:
  root: /srv/blog
  logs_dir: /var/log/inkpress
git:
  branch: main
  author_name: Site Admin
  push:
    enable: true
log:
  level: debug
`))
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1:9000", cfg.Server.Address)
		assert.Equal(t, "/var/log/inkpress", cfg.Site.Path(cfg.Site.LogsDir))
		assert.Equal(t, "main", cfg.Git.Branch)
		assert.Equal(t, "Site Admin", cfg.Git.AuthorName)
		assert.Equal(t, 3, cfg.Git.Push.Attempts)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("webhook requires url", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "notify:\n  webhook:\n    enabled: true\n"))
		assert.ErrorContains(t, err, "webhook url is required")
	})

	t.Run("invalid log level", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "log:\n  level: loud\n"))
		assert.ErrorContains(t, err, "invalid log level")
	})

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
