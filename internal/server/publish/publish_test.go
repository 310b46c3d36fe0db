package publish

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"inkpress/internal/git"
	"inkpress/internal/retry"
	"inkpress/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeGit struct {
	mu        sync.Mutex
	staged    bool
	addErr    error
	commitErr error
	pushErr   error
	messages  []string
	pushes    int
}

func (f *fakeGit) AddAll(context.Context) error { return f.addErr }

func (f *fakeGit) HasStagedChanges(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.staged, nil
}

func (f *fakeGit) Commit(_ context.Context, msg string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	if f.commitErr != nil {
		return "", f.commitErr
	}
	return "abc123", nil
}

func (f *fakeGit) Push(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes++
	return f.pushErr
}

func (f *fakeGit) Check(context.Context) error { return nil }

func (f *fakeGit) commits() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []types.DeployEvent
}

func (n *recordingNotifier) NotifyDeploy(_ context.Context, e types.DeployEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return nil
}

func newTestPublisher(t *testing.T, client git.Client, notifier Notifier) (*Publisher, string) {
	t.Helper()
	root := t.TempDir()
	logger := zaptest.NewLogger(t)

	push := &retry.Config{Enable: false}
	p := New(Options{
		DataDir:       filepath.Join(root, "content", "data"),
		LogsDir:       filepath.Join(root, "logs", "deployments"),
		CommitMessage: "Update site configuration via admin panel",
		Timeout:       time.Minute,
	}, git.NewRepo(client, push, logger), notifier, logger)

	var seq int
	p.newID = func() string {
		seq++
		return "dep-" + string(rune('0'+seq))
	}
	return p, root
}

func sampleChanges() []types.PendingChange {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return []types.PendingChange{
		{
			ID:          "c1",
			Category:    types.CategoryHomepage,
			Description: "Update hero",
			Payload:     &types.HomepagePayload{Config: types.DefaultHomepageConfig()},
			CreatedAt:   created,
		},
		{
			ID:          "c2",
			Category:    types.CategorySettings,
			Description: "Rename site",
			Payload:     &types.SettingsPayload{Settings: types.DefaultSiteSettings()},
			CreatedAt:   created,
		},
	}
}

func auditFiles(t *testing.T, root string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(root, "logs", "deployments", "deploy-*.json"))
	require.NoError(t, err)
	return matches
}

func TestBatchDeploy_EmptyChanges(t *testing.T) {
	client := &fakeGit{staged: true}
	p, root := newTestPublisher(t, client, nil)

	resp, err := p.BatchDeploy(context.Background(), nil)
	assert.Nil(t, resp)
	assert.True(t, errors.Is(err, types.ErrNoChanges))
	assert.Empty(t, auditFiles(t, root))
	assert.Empty(t, client.commits())
}

func TestBatchDeploy_Committed(t *testing.T) {
	client := &fakeGit{staged: true}
	notifier := &recordingNotifier{}
	p, root := newTestPublisher(t, client, notifier)

	resp, err := p.BatchDeploy(context.Background(), sampleChanges())
	require.NoError(t, err)
	require.NoError(t, p.Stop(context.Background()))

	assert.True(t, resp.Success)
	assert.Equal(t, "dep-1", resp.DeploymentID)
	assert.Equal(t, 2, resp.ChangeCount)
	assert.Equal(t, "abc123", resp.Commit)
	assert.Empty(t, resp.Warning)

	require.Len(t, client.commits(), 1)
	msg := client.commits()[0]
	assert.Contains(t, msg, "homepage: Update hero")
	assert.Contains(t, msg, "settings: Rename site")
	assert.Equal(t, 1, client.pushes)

	files := auditFiles(t, root)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)

	var rec types.AuditRecord
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, "dep-1", rec.DeploymentID)
	assert.Equal(t, types.AuditStatusPending, rec.Status)
	require.Len(t, rec.Changes, 2)
	assert.Equal(t, types.CategoryHomepage, rec.Changes[0].Category)
	assert.Equal(t, "Rename site", rec.Changes[1].Description)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, string(git.OutcomeCommitted), notifier.events[0].Outcome)
}

func TestBatchDeploy_NothingToCommit(t *testing.T) {
	client := &fakeGit{staged: false}
	notifier := &recordingNotifier{}
	p, root := newTestPublisher(t, client, notifier)

	resp, err := p.BatchDeploy(context.Background(), sampleChanges())
	require.NoError(t, err)
	require.NoError(t, p.Stop(context.Background()))

	assert.True(t, resp.Success)
	assert.Equal(t, "No changes to deploy", resp.Message)
	assert.Zero(t, resp.ChangeCount)
	assert.Empty(t, client.commits(), "no commit may be attempted")
	assert.Len(t, auditFiles(t, root), 1)
	assert.Empty(t, notifier.events)
}

func TestBatchDeploy_PushFailureIsWarning(t *testing.T) {
	client := &fakeGit{staged: true, pushErr: errors.New("remote unreachable")}
	p, _ := newTestPublisher(t, client, nil)

	resp, err := p.BatchDeploy(context.Background(), sampleChanges())
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Warning, "remote unreachable")
	assert.Equal(t, "abc123", resp.Commit)
}

func TestBatchDeploy_CommitFailure(t *testing.T) {
	client := &fakeGit{staged: true, commitErr: errors.New("index locked")}
	p, _ := newTestPublisher(t, client, nil)

	resp, err := p.BatchDeploy(context.Background(), sampleChanges())
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index locked")
	assert.Zero(t, client.pushes)
}

func TestBatchDeploy_AuditFailure(t *testing.T) {
	client := &fakeGit{staged: true}
	p, root := newTestPublisher(t, client, nil)

	// a file where the logs directory should be
	require.NoError(t, os.WriteFile(filepath.Join(root, "logs"), []byte("x"), 0644))

	resp, err := p.BatchDeploy(context.Background(), sampleChanges())
	assert.Nil(t, resp)
	assert.True(t, errors.Is(err, types.ErrAudit))
	assert.Empty(t, client.commits())
}

func TestMaterialize(t *testing.T) {
	client := &fakeGit{staged: true}
	p, root := newTestPublisher(t, client, nil)

	settings := types.DefaultSiteSettings()
	require.NoError(t, p.Materialize(context.Background(), "settings", settings))
	require.NoError(t, p.Stop(context.Background()))

	data, err := os.ReadFile(filepath.Join(root, "content", "data", "settings.json"))
	require.NoError(t, err)

	var got types.SiteSettings
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, settings, got)

	assert.Equal(t, []string{"Update site configuration via admin panel"}, client.commits())
}

func TestMaterialize_PublishFailureIsNotReturned(t *testing.T) {
	client := &fakeGit{addErr: errors.New("not a git repository")}
	p, _ := newTestPublisher(t, client, nil)

	assert.NoError(t, p.Materialize(context.Background(), "homepage", types.DefaultHomepageConfig()))
	assert.NoError(t, p.Stop(context.Background()))
}

func TestHistory(t *testing.T) {
	client := &fakeGit{staged: true}
	p, _ := newTestPublisher(t, client, nil)

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		p.now = func() time.Time { return at }
		_, err := p.BatchDeploy(context.Background(), sampleChanges())
		require.NoError(t, err)
	}

	all, err := p.History(0, time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "dep-3", all[0].DeploymentID)
	assert.Equal(t, "dep-1", all[2].DeploymentID)

	limited, err := p.History(1, time.Time{})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "dep-3", limited[0].DeploymentID)

	recent, err := p.History(0, base.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestHistory_MissingDirectory(t *testing.T) {
	p, _ := newTestPublisher(t, &fakeGit{}, nil)

	records, err := p.History(10, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, records)
}
