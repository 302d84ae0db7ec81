package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triad/pkg/config"
	"triad/pkg/eventlog"
	"triad/pkg/logx"
	"triad/pkg/persistence"
	"triad/pkg/publish"
)

// ollamaServer answers /api/chat with replies chosen by call number.
func ollamaServer(t *testing.T, reply func(call int) string) *httptest.Server {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		n := int(calls.Add(1)) - 1
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":       "llama3.1",
			"created_at":  "2026-01-01T00:00:00Z",
			"message":     map[string]any{"role": "assistant", "content": reply(n)},
			"done":        true,
			"done_reason": "stop",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setBaseEnv(t *testing.T, host string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.EnvProvider, config.ProviderOllama)
	t.Setenv(config.EnvOllamaHost, host)
	t.Setenv(config.EnvModel, "llama3.1")
	t.Setenv(config.EnvPublisher, "")
	t.Setenv(config.EnvPersonasFile, "")
	t.Setenv(config.EnvRunDB, "")
	t.Setenv(config.EnvEventLogDir, "")
	t.Setenv(config.EnvMetricsFile, "")
	t.Setenv(config.EnvArtifactPath, filepath.Join(dir, "index.html"))
	return dir
}

func TestRunSucceedsEndToEnd(t *testing.T) {
	srv := ollamaServer(t, func(call int) string {
		if call == 1 {
			return "Here it is. APPROVED\n```html\n<h1>Hello</h1>\n```"
		}
		return "Requirements: a heading."
	})
	dir := setBaseEnv(t, srv.URL)
	t.Setenv(config.EnvRunDB, filepath.Join(dir, "runs.db"))
	t.Setenv(config.EnvEventLogDir, filepath.Join(dir, "events"))
	t.Setenv(config.EnvMetricsFile, filepath.Join(dir, "triad.prom"))

	marker := filepath.Join(dir, "published")
	script := filepath.Join(dir, "push.sh")
	require.NoError(t, os.WriteFile(script, []byte("touch "+marker+"\n"), 0o755))

	var logs bytes.Buffer
	logx.SetOutput(&logs)
	t.Cleanup(func() { logx.SetOutput(nil) })

	var out bytes.Buffer
	code := run(context.Background(), options{request: "a hello page", publishScript: script}, nil, &out, false)
	require.Equal(t, 0, code, out.String())

	html, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<h1>Hello</h1>", string(html))
	assert.FileExists(t, marker)

	text := out.String()
	assert.Contains(t, text, "[BusinessAnalyst] says:")
	assert.Contains(t, text, "[SoftwareEngineer] says:")
	assert.NotContains(t, text, "[ProductOwner] says:")
	assert.Contains(t, text, "published")

	ledger, err := persistence.Open(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	defer func() { _ = ledger.Close() }()
	counts, err := ledger.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"SUCCEEDED": 1}, counts)
	assert.Contains(t, logs.String(), "Run ledger: 1 succeeded, 0 exhausted, 0 failed")

	files, err := eventlog.ListLogFiles(filepath.Join(dir, "events"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	prom, err := os.ReadFile(filepath.Join(dir, "triad.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), "triad_llm_requests_total")
}

func TestRunExhaustedReturnsTwo(t *testing.T) {
	srv := ollamaServer(t, func(int) string { return "Not there yet." })
	dir := setBaseEnv(t, srv.URL)

	var out bytes.Buffer
	code := run(context.Background(), options{request: "a page", noPublish: true}, nil, &out, false)

	assert.Equal(t, 2, code)
	assert.Contains(t, out.String(), "no approval after 3 rounds")
	assert.Equal(t, 9, strings.Count(out.String(), " says:"))
	assert.NoFileExists(t, filepath.Join(dir, "index.html"))
}

func TestRunBackendFailureReturnsOne(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"model crashed"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()
	dir := setBaseEnv(t, srv.URL)

	var out bytes.Buffer
	code := run(context.Background(), options{request: "a page", noPublish: true}, nil, &out, false)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "backend stage")
	assert.NoFileExists(t, filepath.Join(dir, "index.html"))
}

func TestRunMissingConfigReturnsOne(t *testing.T) {
	t.Setenv(config.EnvProvider, config.ProviderAzure)
	for _, key := range []string{config.EnvAzureDeployment, config.EnvAzureEndpoint, config.EnvAzureAPIKey, config.EnvAzureAPIVersion} {
		t.Setenv(key, "")
	}

	var out bytes.Buffer
	code := run(context.Background(), options{request: "a page"}, nil, &out, false)

	assert.Equal(t, 1, code)
	assert.Empty(t, out.String(), "nothing may run before configuration is valid")
}

func TestReadRequest(t *testing.T) {
	tests := []struct {
		name        string
		opts        options
		stdin       string
		interactive bool
		want        string
		wantErr     bool
	}{
		{name: "flag wins", opts: options{request: " flag ", args: []string{"arg"}}, want: "flag"},
		{name: "positional args", opts: options{args: []string{"build", "a", "page"}}, want: "build a page"},
		{name: "prompt reads one line", stdin: "from prompt\nignored\n", interactive: true, want: "from prompt"},
		{name: "prompt without newline", stdin: "eof line", interactive: true, want: "eof line"},
		{name: "piped stdin reads everything", stdin: "line one\nline two\n", want: "line one\nline two"},
		{name: "blank input", stdin: "   \n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := readRequest(context.Background(), tt.opts, strings.NewReader(tt.stdin), &out, tt.interactive)
			if tt.wantErr {
				require.ErrorIs(t, err, errEmptyRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.interactive {
				assert.Equal(t, "Enter user request: ", out.String())
			}
		})
	}
}

func TestReadRequestStopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	var out bytes.Buffer
	_, err := readRequest(ctx, options{}, pr, &out, true)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "Enter user request: ", out.String())
}

func TestRunCancelledAtPromptReturnsOne(t *testing.T) {
	srv := ollamaServer(t, func(int) string { return "unused" })
	setBaseEnv(t, srv.URL)
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	code := run(ctx, options{}, pr, &out, true)
	assert.Equal(t, 1, code)
	assert.NotContains(t, out.String(), " says:")
}

func TestApplyOverrides(t *testing.T) {
	cfg := &config.Config{Publisher: config.PublisherGitHub, ArtifactPath: "index.html", PublishScript: "push_to_github.sh"}

	applyOverrides(cfg, options{artifactPath: "out.html", publishScript: "deploy.sh"})
	assert.Equal(t, "out.html", cfg.ArtifactPath)
	assert.Equal(t, config.PublisherScript, cfg.Publisher)
	assert.Equal(t, "deploy.sh", cfg.PublishScript)

	applyOverrides(cfg, options{noPublish: true})
	assert.Equal(t, config.PublisherNone, cfg.Publisher)
}

func TestNewPublisher(t *testing.T) {
	p, err := newPublisher(&config.Config{Publisher: config.PublisherScript, PublishScript: "push.sh"})
	require.NoError(t, err)
	script, ok := p.(*publish.ScriptPublisher)
	require.True(t, ok)
	assert.Equal(t, "push.sh", script.Script())

	p, err = newPublisher(&config.Config{Publisher: config.PublisherNone})
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = newPublisher(&config.Config{Publisher: config.PublisherGitHub, GitHub: config.GitHub{Token: "t", Repo: "no-slash"}})
	require.ErrorIs(t, err, config.ErrConfiguration)

	p, err = newPublisher(&config.Config{Publisher: config.PublisherGitHub, GitHub: config.GitHub{Token: "t", Repo: "me/site"}})
	require.NoError(t, err)
	assert.IsType(t, &publish.GitHubPublisher{}, p)
}
