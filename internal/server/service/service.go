package service

import (
	"context"
	"fmt"
	"time"

	"inkpress/internal/server/config"
	"inkpress/internal/server/content"
	"inkpress/internal/server/publish"
	"inkpress/internal/server/store"
	"inkpress/internal/types"
	"inkpress/internal/validator"

	"go.uber.org/zap"
)

// Service implements the admin operations on top of the site stores
type Service struct {
	config    *config.Config
	homepage  *store.HomepageStore
	settings  *store.SettingsStore
	content   *content.Store
	publisher *publish.Publisher
	validator *validator.Validator
	logger    *zap.Logger
	startTime time.Time
}

// NewService creates new service instance. Saved documents are mirrored to
// the data directory and published through publisher.
func NewService(cfg *config.Config, publisher *publish.Publisher, logger *zap.Logger) *Service {
	site := cfg.Site

	svc := &Service{
		config:    cfg,
		homepage:  store.NewHomepageStore(site.Path(site.HomepageFile), logger),
		settings:  store.NewSettingsStore(site.Path(site.SettingsFile), logger),
		content:   content.NewStore(site.Path(site.ContentDir), logger),
		publisher: publisher,
		validator: validator.New(),
		logger:    logger.Named("service"),
		startTime: time.Now(),
	}

	svc.homepage.OnWrite(func(ctx context.Context, doc types.HomepageConfig) error {
		return publisher.Materialize(ctx, svc.homepage.Name(), doc)
	})
	svc.settings.OnWrite(func(ctx context.Context, doc types.SiteSettings) error {
		return publisher.Materialize(ctx, svc.settings.Name(), doc)
	})

	return svc
}

// Stop waits for background publishes to finish
func (s *Service) Stop(ctx context.Context) error {
	return s.publisher.Stop(ctx)
}

// HomepageConfig returns the homepage document merged over its default
func (s *Service) HomepageConfig() types.HomepageConfig {
	return s.homepage.Read()
}

// SaveHomepageConfig validates and persists the homepage document
func (s *Service) SaveHomepageConfig(ctx context.Context, doc types.HomepageConfig) error {
	if err := s.validator.Struct(doc); err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidInput, err)
	}
	return s.homepage.Write(ctx, doc)
}

// Settings returns the site settings merged over their default
func (s *Service) Settings() types.SiteSettings {
	return s.settings.Read()
}

// SaveSettings validates and persists the site settings
func (s *Service) SaveSettings(ctx context.Context, doc types.SiteSettings) error {
	if err := s.validator.Struct(doc); err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidInput, err)
	}
	return s.settings.Write(ctx, doc)
}

// Posts lists the posts of the site
func (s *Service) Posts() ([]content.Post, error) {
	return s.content.List()
}

// PostContent returns the body of the post matching slug
func (s *Service) PostContent(slug string) (string, error) {
	return s.content.ReadBody(slug)
}

// SavePostContent replaces a post body and publishes in the background
func (s *Service) SavePostContent(_ context.Context, slug, body string) error {
	if err := s.validator.Var(slug, "required,slug"); err != nil {
		return fmt.Errorf("%w: slug must be a lowercase slug", types.ErrInvalidInput)
	}
	if err := s.content.WriteBody(slug, body); err != nil {
		return err
	}

	s.publisher.PublishAsync(fmt.Sprintf("Update post %s via admin panel", slug))
	return nil
}

// PostPreview renders the post matching slug to HTML
func (s *Service) PostPreview(slug string) (string, error) {
	return s.content.Preview(slug)
}

// Deploy validates a batch and hands it to the publisher
func (s *Service) Deploy(ctx context.Context, changes []types.PendingChange) (*types.DeployResponse, error) {
	if len(changes) == 0 {
		return nil, types.ErrNoChanges
	}

	for i, c := range changes {
		if c.Payload == nil || c.Payload.Category() != c.Category {
			return nil, fmt.Errorf("%w: changes[%d]: %v", types.ErrInvalidInput, i, types.ErrPayloadMismatch)
		}
		if err := s.validator.Struct(c.Payload); err != nil {
			return nil, fmt.Errorf("%w: changes[%d]: %v", types.ErrInvalidInput, i, err)
		}
	}

	resp, err := s.publisher.BatchDeploy(ctx, changes)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Batch deployed",
		zap.String("deployment_id", resp.DeploymentID),
		zap.Int("changes", len(changes)),
		zap.String("message", resp.Message))
	return resp, nil
}

// History returns past deployments, newest first
func (s *Service) History(limit int, since time.Time) ([]types.AuditRecord, error) {
	return s.publisher.History(limit, since)
}
