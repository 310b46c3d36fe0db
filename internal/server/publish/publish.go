// Package publish regenerates render-facing data files and publishes the
// site repository through git.
package publish

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"inkpress/internal/git"
	"inkpress/internal/server/store"
	"inkpress/internal/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier receives deploy events
type Notifier interface {
	NotifyDeploy(ctx context.Context, event types.DeployEvent) error
}

// Options configures a Publisher
type Options struct {
	DataDir       string        // render-facing data files
	LogsDir       string        // audit records
	CommitMessage string        // message of background publishes
	Timeout       time.Duration // bound for background publishes
}

// Publisher materializes documents and publishes the repository
type Publisher struct {
	opts     Options
	repo     *git.Repo
	notifier Notifier
	logger   *zap.Logger

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	now   func() time.Time
	newID func() string
}

// New creates a publisher. notifier may be nil.
func New(opts Options, repo *git.Repo, notifier Notifier, logger *zap.Logger) *Publisher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Publisher{
		opts:     opts,
		repo:     repo,
		notifier: notifier,
		logger:   logger.Named("publish"),
		ctx:      ctx,
		cancel:   cancel,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// Materialize writes doc to <DataDir>/<name>.json and starts a background
// publish of the repository. The publish outcome is logged, never returned.
func (p *Publisher) Materialize(_ context.Context, name string, doc any) error {
	path := filepath.Join(p.opts.DataDir, name+".json")
	if err := store.WriteJSON(path, doc); err != nil {
		return fmt.Errorf("failed to write %s data file: %w", name, err)
	}

	p.logger.Info("Data file regenerated",
		zap.String("document", name),
		zap.String("path", path))

	p.PublishAsync(p.opts.CommitMessage)
	return nil
}

// PublishAsync runs one add/commit/push cycle without blocking the caller
func (p *Publisher) PublishAsync(message string) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ctx := p.ctx
		if p.opts.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(p.ctx, p.opts.Timeout)
			defer cancel()
		}

		res := p.repo.Publish(ctx, message)
		p.logResult("Background publish", res)
	}()
}

func (p *Publisher) logResult(msg string, res git.Result) {
	fields := []zap.Field{
		zap.String("outcome", string(res.Outcome)),
		zap.String("commit", res.Commit),
	}
	if res.Err != nil {
		fields = append(fields, zap.String("stage", string(res.Stage)), zap.Error(res.Err))
		p.logger.Warn(msg+" incomplete", fields...)
		return
	}
	p.logger.Info(msg+" finished", fields...)
}

// Stop waits for in-flight background work. When ctx expires first the
// remaining git commands are killed.
func (p *Publisher) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return ctx.Err()
	}
}

// Check reports whether publishing can work
func (p *Publisher) Check(ctx context.Context) error {
	return p.repo.Check(ctx)
}
