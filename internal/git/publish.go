package git

import (
	"context"
	"sync"

	"inkpress/internal/retry"

	"go.uber.org/zap"
)

// Outcome is the result of a publish attempt
type Outcome string

const (
	OutcomeCommitted          Outcome = "committed"
	OutcomeCommittedNotPushed Outcome = "committed_not_pushed"
	OutcomeNothingToCommit    Outcome = "nothing_to_commit"
	OutcomeFailed             Outcome = "failed"
)

// Stage names the step a publish attempt failed in
type Stage string

const (
	StageAdd    Stage = "add"
	StageDiff   Stage = "diff"
	StageCommit Stage = "commit"
	StagePush   Stage = "push"
)

// Result captures the outcome of one add/commit/push cycle
type Result struct {
	Outcome Outcome
	Stage   Stage // set when Err is set
	Commit  string
	Err     error
}

// Committed reports whether a local commit was created
func (r Result) Committed() bool {
	return r.Outcome == OutcomeCommitted || r.Outcome == OutcomeCommittedNotPushed
}

// Repo runs publish cycles against a Client. Cycles within one process are
// serialized; concurrent writers in other processes are not coordinated.
type Repo struct {
	client Client
	push   *retry.Config
	logger *zap.Logger
	mu     sync.Mutex
}

// NewRepo creates a new publishing repo wrapper
func NewRepo(client Client, push *retry.Config, logger *zap.Logger) *Repo {
	return &Repo{
		client: client,
		push:   push,
		logger: logger,
	}
}

// Publish stages everything, commits with message and pushes.
// A push failure leaves the commit in place and yields OutcomeCommittedNotPushed.
func (r *Repo) Publish(ctx context.Context, message string) Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.client.AddAll(ctx); err != nil {
		return Result{Outcome: OutcomeFailed, Stage: StageAdd, Err: err}
	}

	staged, err := r.client.HasStagedChanges(ctx)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Stage: StageDiff, Err: err}
	}
	if !staged {
		return Result{Outcome: OutcomeNothingToCommit}
	}

	commit, err := r.client.Commit(ctx, message)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Stage: StageCommit, Err: err}
	}

	err = retry.Execute(ctx, r.push, r.logger, func(ctx context.Context) error {
		if ctx.Err() != nil {
			return retry.Permanent(ctx.Err())
		}
		return r.client.Push(ctx)
	})
	if err != nil {
		return Result{Outcome: OutcomeCommittedNotPushed, Stage: StagePush, Commit: commit, Err: err}
	}

	return Result{Outcome: OutcomeCommitted, Commit: commit}
}

// Check verifies the underlying repository
func (r *Repo) Check(ctx context.Context) error {
	return r.client.Check(ctx)
}
