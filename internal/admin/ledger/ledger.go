// Package ledger holds the pending changes of one admin session until they
// are deployed or undone.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"inkpress/internal/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client performs the server calls of a deploy or undo
type Client interface {
	// Apply saves payload through the endpoint of its category
	Apply(ctx context.Context, payload types.Payload) error
	// DeployBatch submits changes to the batch deploy endpoint
	DeployBatch(ctx context.Context, changes []types.PendingChange) (*types.DeployResponse, error)
}

// Notifier surfaces outcomes to the operator
type Notifier interface {
	Info(msg string)
	Success(msg string)
	Warning(msg string)
	Error(msg string, err error)
}

// Ledger is an ordered set of pending changes with at most one entry per
// category. It is owned by a single session.
type Ledger struct {
	client   Client
	notifier Notifier
	logger   *zap.Logger

	mu        sync.Mutex
	changes   []types.PendingChange
	deploying bool
	undoing   bool

	now   func() time.Time
	newID func() string
}

// New creates an empty ledger
func New(client Client, notifier Notifier, logger *zap.Logger) *Ledger {
	return &Ledger{
		client:   client,
		notifier: notifier,
		logger:   logger.Named("ledger"),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// Add records a change, replacing any pending change of the same category.
// The new entry is placed last. original may be nil, in which case undo
// skips the entry.
func (l *Ledger) Add(category types.Category, description string, payload, original types.Payload) (types.PendingChange, error) {
	if !category.Valid() {
		return types.PendingChange{}, fmt.Errorf("%w: %q", types.ErrInvalidCategory, category)
	}
	if payload == nil || payload.Category() != category {
		return types.PendingChange{}, fmt.Errorf("payload: %w", types.ErrPayloadMismatch)
	}
	if original != nil && original.Category() != category {
		return types.PendingChange{}, fmt.Errorf("original payload: %w", types.ErrPayloadMismatch)
	}

	change := types.PendingChange{
		ID:              l.newID(),
		Category:        category,
		Description:     description,
		Payload:         payload,
		OriginalPayload: original,
		CreatedAt:       l.now(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.changes[:0]
	for _, c := range l.changes {
		if c.Category != category {
			kept = append(kept, c)
		}
	}
	l.changes = append(kept, change)

	l.logger.Debug("Pending change added",
		zap.String("id", change.ID),
		zap.String("category", category.String()),
		zap.String("description", description))
	return change, nil
}

// Remove drops the change with id. Unknown ids are ignored.
func (l *Ledger) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, c := range l.changes {
		if c.ID == id {
			l.changes = append(l.changes[:i], l.changes[i+1:]...)
			return
		}
	}
}

// Clear drops every pending change
func (l *Ledger) Clear() {
	l.mu.Lock()
	l.changes = nil
	l.mu.Unlock()
}

// Changes returns a copy of the pending changes in deploy order
func (l *Ledger) Changes() []types.PendingChange {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]types.PendingChange(nil), l.changes...)
}

// Len returns the number of pending changes
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.changes)
}

// IsDeploying reports whether a deploy is in flight
func (l *Ledger) IsDeploying() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deploying
}

// IsUndoing reports whether an undo is in flight
func (l *Ledger) IsUndoing() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.undoing
}

// begin sets flag unless a deploy or undo is already running and returns
// the snapshot to operate on
func (l *Ledger) begin(flag *bool) ([]types.PendingChange, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.deploying || l.undoing {
		return nil, types.ErrBusy
	}
	*flag = true
	return append([]types.PendingChange(nil), l.changes...), nil
}

func (l *Ledger) end(flag *bool) {
	l.mu.Lock()
	*flag = false
	l.mu.Unlock()
}

// settle removes the given changes. Entries added while the operation was
// running stay pending.
func (l *Ledger) settle(done []types.PendingChange) {
	ids := make(map[string]struct{}, len(done))
	for _, c := range done {
		ids[c.ID] = struct{}{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.changes[:0]
	for _, c := range l.changes {
		if _, ok := ids[c.ID]; !ok {
			kept = append(kept, c)
		}
	}
	l.changes = kept
}

// DeployAll applies every pending change and then submits them as one
// batch. The ledger is left untouched unless every call succeeds. An empty
// ledger reports false without contacting the server.
func (l *Ledger) DeployAll(ctx context.Context) (bool, error) {
	changes, err := l.begin(&l.deploying)
	if err != nil {
		l.notifier.Warning("A deploy or undo is already running")
		return false, err
	}
	defer l.end(&l.deploying)

	if len(changes) == 0 {
		l.notifier.Info("Nothing to deploy")
		return false, nil
	}

	for _, c := range changes {
		if err := l.client.Apply(ctx, c.Payload); err != nil {
			err = fmt.Errorf("apply %s: %w", c.Summary(), err)
			l.notifier.Error("Deploy failed", err)
			return false, err
		}
	}

	resp, err := l.client.DeployBatch(ctx, changes)
	if err == nil && !resp.Success {
		err = fmt.Errorf("batch deploy rejected: %s", resp.Message)
	}
	if err != nil {
		l.notifier.Error("Deploy failed", err)
		return false, err
	}

	l.settle(changes)

	l.logger.Info("Changes deployed",
		zap.String("deployment_id", resp.DeploymentID),
		zap.Int("changes", len(changes)))
	l.notifier.Success(resp.Message)
	if resp.Warning != "" {
		l.notifier.Warning(resp.Warning)
	}
	return true, nil
}

// UndoAll restores the captured original of every pending change and drops
// them all. Changes without an original are dropped without a restore call.
// Undo does not create a batch deploy.
func (l *Ledger) UndoAll(ctx context.Context) (bool, error) {
	changes, err := l.begin(&l.undoing)
	if err != nil {
		l.notifier.Warning("A deploy or undo is already running")
		return false, err
	}
	defer l.end(&l.undoing)

	if len(changes) == 0 {
		l.notifier.Info("Nothing to undo")
		return false, nil
	}

	restored := 0
	for _, c := range changes {
		if !c.HasOriginal() {
			continue
		}
		if err := l.client.Apply(ctx, c.OriginalPayload); err != nil {
			err = fmt.Errorf("restore %s: %w", c.Summary(), err)
			l.notifier.Error("Undo failed", err)
			return false, err
		}
		restored++
	}

	l.settle(changes)

	l.logger.Info("Changes undone",
		zap.Int("restored", restored),
		zap.Int("dropped", len(changes)-restored))
	l.notifier.Success(fmt.Sprintf("Restored %d change(s)", restored))
	return true, nil
}
