package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"inkpress/internal/retry"

	"go.uber.org/zap"
)

// Config describes how the admin server talks to git
type Config struct {
	Binary        string        `mapstructure:"binary"`
	Remote        string        `mapstructure:"remote"`
	Branch        string        `mapstructure:"branch"`
	AuthorName    string        `mapstructure:"author_name"`
	AuthorEmail   string        `mapstructure:"author_email"`
	CommitMessage string        `mapstructure:"commit_message"` // used by background publishes
	Timeout       time.Duration `mapstructure:"timeout"`        // bounds background publishes
	Push          retry.Config  `mapstructure:"push"`
}

// Client provides the git operations needed to publish the working tree
type Client interface {
	// AddAll stages every working tree modification
	AddAll(ctx context.Context) error
	// HasStagedChanges reports whether the index differs from HEAD
	HasStagedChanges(ctx context.Context) (bool, error)
	// Commit records the index and returns the new commit hash
	Commit(ctx context.Context, message string) (string, error)
	// Push publishes the current branch to the configured remote
	Push(ctx context.Context) error
	// Check verifies the repository root is a usable work tree
	Check(ctx context.Context) error
}

// ShellClient implements Client by shelling out to the git command
type ShellClient struct {
	repoRoot    string
	binary      string
	remote      string
	branch      string
	authorName  string
	authorEmail string
	logger      *zap.Logger
}

// NewShellClient creates a git client operating on repoRoot
func NewShellClient(repoRoot string, cfg Config, logger *zap.Logger) *ShellClient {
	binary := cfg.Binary
	if binary == "" {
		binary = "git"
	}
	remote := cfg.Remote
	if remote == "" {
		remote = "origin"
	}
	return &ShellClient{
		repoRoot:    repoRoot,
		binary:      binary,
		remote:      remote,
		branch:      cfg.Branch,
		authorName:  cfg.AuthorName,
		authorEmail: cfg.AuthorEmail,
		logger:      logger.Named("git"),
	}
}

// AddAll stages all modifications, additions and deletions
func (c *ShellClient) AddAll(ctx context.Context) error {
	if _, err := c.run(ctx, "add", "-A"); err != nil {
		return fmt.Errorf("git add failed: %w", err)
	}
	return nil
}

// HasStagedChanges runs "git diff --cached --quiet"; exit status 1 means changes are staged
func (c *ShellClient) HasStagedChanges(ctx context.Context) (bool, error) {
	_, err := c.run(ctx, "diff", "--cached", "--quiet")
	if err == nil {
		return false, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return true, nil
	}
	return false, fmt.Errorf("git diff failed: %w", err)
}

// Commit commits the index and returns the resulting HEAD hash
func (c *ShellClient) Commit(ctx context.Context, message string) (string, error) {
	var args []string
	if c.authorName != "" {
		args = append(args, "-c", "user.name="+c.authorName)
	}
	if c.authorEmail != "" {
		args = append(args, "-c", "user.email="+c.authorEmail)
	}
	args = append(args, "commit", "-m", message)

	if _, err := c.run(ctx, args...); err != nil {
		return "", fmt.Errorf("git commit failed: %w", err)
	}

	out, err := c.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse failed: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Push pushes to the configured remote. Without a configured branch the current HEAD is pushed.
func (c *ShellClient) Push(ctx context.Context) error {
	ref := c.branch
	if ref == "" {
		ref = "HEAD"
	}
	if _, err := c.run(ctx, "push", c.remote, ref); err != nil {
		return fmt.Errorf("git push failed: %w", err)
	}
	return nil
}

// Check verifies that the repository root is inside a git work tree
func (c *ShellClient) Check(ctx context.Context) error {
	out, err := c.run(ctx, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return fmt.Errorf("not a git work tree: %w", err)
	}
	if strings.TrimSpace(out) != "true" {
		return fmt.Errorf("not a git work tree: %s", c.repoRoot)
	}
	return nil
}

// run executes git with -C repoRoot. On failure the combined output is folded
// into the error while the *exec.ExitError stays reachable through errors.As.
func (c *ShellClient) run(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"-C", c.repoRoot}, args...)
	cmd := exec.CommandContext(ctx, c.binary, full...)
	output, err := cmd.CombinedOutput()

	c.logger.Debug("git command",
		zap.Strings("args", args),
		zap.String("output", strings.TrimSpace(string(output))),
		zap.Error(err))

	if err != nil {
		return string(output), fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return string(output), nil
}
