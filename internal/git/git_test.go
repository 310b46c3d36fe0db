package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"inkpress/internal/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func gitCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := exec.Command("git", args...).CombinedOutput()
	if err != nil {
		t.Fatalf("git %v: %v: %s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

// initRepo creates a work tree on branch main with a bare "origin" remote.
func initRepo(t *testing.T) (work, remote string) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	remote = filepath.Join(t.TempDir(), "remote.git")
	work = filepath.Join(t.TempDir(), "site")
	gitCmd(t, "init", "--bare", remote)
	gitCmd(t, "init", "-b", "main", work)
	gitCmd(t, "-C", work, "remote", "add", "origin", remote)
	return work, remote
}

func testConfig() Config {
	return Config{AuthorName: "Admin", AuthorEmail: "admin@example.com"}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestShellClient_CommitAndPush(t *testing.T) {
	ctx := context.Background()
	work, remote := initRepo(t)
	client := NewShellClient(work, testConfig(), zaptest.NewLogger(t))

	require.NoError(t, client.Check(ctx))

	writeFile(t, filepath.Join(work, "config", "homepage.json"), `{"hero":{}}`)
	require.NoError(t, client.AddAll(ctx))

	staged, err := client.HasStagedChanges(ctx)
	require.NoError(t, err)
	assert.True(t, staged)

	hash, err := client.Commit(ctx, "Update homepage")
	require.NoError(t, err)
	assert.Equal(t, gitCmd(t, "-C", work, "rev-parse", "HEAD"), hash)

	staged, err = client.HasStagedChanges(ctx)
	require.NoError(t, err)
	assert.False(t, staged)

	require.NoError(t, client.Push(ctx))
	assert.Equal(t, hash, gitCmd(t, "--git-dir", remote, "rev-parse", "main"))
}

func TestShellClient_CheckOutsideRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	client := NewShellClient(t.TempDir(), testConfig(), zaptest.NewLogger(t))
	assert.Error(t, client.Check(context.Background()))
}

func TestRepo_Publish(t *testing.T) {
	ctx := context.Background()
	noRetry := &retry.Config{}

	t.Run("real repository", func(t *testing.T) {
		work, _ := initRepo(t)
		repo := NewRepo(NewShellClient(work, testConfig(), zaptest.NewLogger(t)), noRetry, zaptest.NewLogger(t))

		writeFile(t, filepath.Join(work, "a.txt"), "a")
		res := repo.Publish(ctx, "first")
		require.NoError(t, res.Err)
		assert.Equal(t, OutcomeCommitted, res.Outcome)
		assert.NotEmpty(t, res.Commit)

		res = repo.Publish(ctx, "second")
		assert.Equal(t, OutcomeNothingToCommit, res.Outcome)
		assert.False(t, res.Committed())
	})

	t.Run("push failure keeps commit", func(t *testing.T) {
		fake := &fakeClient{staged: true, pushErr: errors.New("remote unreachable")}
		repo := NewRepo(fake, &retry.Config{Enable: true, Attempts: 2}, zaptest.NewLogger(t))

		res := repo.Publish(ctx, "msg")
		assert.Equal(t, OutcomeCommittedNotPushed, res.Outcome)
		assert.Equal(t, StagePush, res.Stage)
		assert.Equal(t, "abc123", res.Commit)
		assert.True(t, res.Committed())
		assert.Equal(t, 2, fake.pushes)
	})

	t.Run("commit failure", func(t *testing.T) {
		fake := &fakeClient{staged: true, commitErr: errors.New("hook rejected")}
		res := NewRepo(fake, noRetry, zaptest.NewLogger(t)).Publish(ctx, "msg")
		assert.Equal(t, OutcomeFailed, res.Outcome)
		assert.Equal(t, StageCommit, res.Stage)
		assert.Zero(t, fake.pushes)
	})

	t.Run("nothing staged skips commit", func(t *testing.T) {
		fake := &fakeClient{}
		res := NewRepo(fake, noRetry, zaptest.NewLogger(t)).Publish(ctx, "msg")
		assert.Equal(t, OutcomeNothingToCommit, res.Outcome)
		assert.Zero(t, fake.commits)
	})
}

type fakeClient struct {
	staged    bool
	addErr    error
	commitErr error
	pushErr   error
	commits   int
	pushes    int
}

func (f *fakeClient) AddAll(context.Context) error { return f.addErr }
func (f *fakeClient) HasStagedChanges(context.Context) (bool, error) {
	return f.staged, nil
}
func (f *fakeClient) Commit(context.Context, string) (string, error) {
	f.commits++
	if f.commitErr != nil {
		return "", f.commitErr
	}
	return "abc123", nil
}
func (f *fakeClient) Push(context.Context) error {
	f.pushes++
	return f.pushErr
}
func (f *fakeClient) Check(context.Context) error { return nil }
