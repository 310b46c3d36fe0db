package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"inkpress/internal/admin/client"
	"inkpress/internal/admin/config"
	"inkpress/internal/admin/ledger"
	"inkpress/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const changes = `changes:
  - category: settings
    description: Rename site
    payload:
      settings:
        title: Field Notes
        postsPerPage: 10
  - category: content
    description: New post body
    payload:
      slug: brand-new
      content: Hello
`

type fakeServer struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.paths = append(f.paths, r.Method+" "+r.URL.Path)
	f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/admin/settings":
		_ = json.NewEncoder(w).Encode(map[string]any{"settings": types.DefaultSiteSettings()})
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/content"):
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"message":"not found"}`))
	case r.URL.Path == "/api/admin/deploy/batch":
		_ = json.NewEncoder(w).Encode(types.DeployResponse{Success: true, Message: "Successfully deployed 2 change(s)"})
	default:
		_, _ = w.Write([]byte(`{"success":true,"message":"ok"}`))
	}
}

func (f *fakeServer) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

func newTestSession(t *testing.T) (*session, *fakeServer, *bytes.Buffer, string) {
	t.Helper()
	fake := &fakeServer{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	logger := zaptest.NewLogger(t)
	out := &bytes.Buffer{}
	api := client.New(&config.ServerConfig{Address: srv.URL, Timeout: 5 * time.Second}, logger)

	path := filepath.Join(t.TempDir(), "changes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(changes), 0644))

	return &session{
		api:    api,
		ledger: ledger.New(api, ledger.NewConsoleNotifier(out, logger), logger),
		out:    out,
		logger: logger,
	}, fake, out, path
}

func TestRunDeploy(t *testing.T) {
	s, fake, out, path := newTestSession(t)

	require.NoError(t, run(context.Background(), s, []string{"deploy", path}))
	assert.Zero(t, s.ledger.Len())
	assert.Contains(t, out.String(), "Successfully deployed 2 change(s)")
	assert.Equal(t, []string{
		"GET /api/admin/settings",
		"GET /api/admin/posts/brand-new/content",
		"POST /api/admin/settings",
		"PUT /api/admin/posts/brand-new/content",
		"POST /api/admin/deploy/batch",
	}, fake.calls())
}

func TestShell(t *testing.T) {
	s, fake, out, path := newTestSession(t)

	input := strings.Join([]string{"load " + path, "list", "undo", "list", "bogus", "quit"}, "\n")
	require.NoError(t, s.shell(context.Background(), strings.NewReader(input)))

	assert.Contains(t, out.String(), "settings: Rename site")
	assert.Contains(t, out.String(), "Restored 1 change(s)")
	assert.Contains(t, out.String(), "no pending changes")
	assert.Contains(t, out.String(), `unknown command "bogus"`)

	// the new post had no prior state, so undo only restores settings
	calls := fake.calls()
	assert.Contains(t, calls, "POST /api/admin/settings")
	assert.NotContains(t, calls, "PUT /api/admin/posts/brand-new/content")
	assert.NotContains(t, calls, "POST /api/admin/deploy/batch")
}

func TestRun_Errors(t *testing.T) {
	s, _, _, _ := newTestSession(t)

	assert.Error(t, run(context.Background(), s, []string{"deploy"}))
	assert.Error(t, run(context.Background(), s, []string{"history", "-1"}))
	assert.Error(t, run(context.Background(), s, []string{"frobnicate"}))
}
