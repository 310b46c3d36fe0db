package store

import (
	"inkpress/internal/types"

	"go.uber.org/zap"
)

// HomepageStore persists the homepage layout document
type HomepageStore = DocStore[types.HomepageConfig]

// SettingsStore persists the site settings document
type SettingsStore = DocStore[types.SiteSettings]

// NewHomepageStore creates the homepage store backed by path
func NewHomepageStore(path string, logger *zap.Logger) *HomepageStore {
	return New("homepage", path, types.DefaultHomepageConfig, logger)
}

// NewSettingsStore creates the site settings store backed by path
func NewSettingsStore(path string, logger *zap.Logger) *SettingsStore {
	return New("settings", path, types.DefaultSiteSettings, logger)
}
