package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

type gatewayFixture struct {
	mu       sync.Mutex
	sent     []map[string]string
	server   *httptest.Server
	statusJS string
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()

	f := &gatewayFixture{
		statusJS: `{"projects":[{"id":"p1","agents":[{"id":"a1","isThinking":true,"focus":"writing tests","sessionRunning":true}]}]}`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	mux.HandleFunc("GET /api/projects", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"p1","name":"Demo","description":"demo project","createdAt":"2026-08-29T10:00:00Z","agentCount":1,"activeAgentCount":0}]`))
	})
	mux.HandleFunc("GET /api/projects/p1/agents", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"a1","projectId":"p1","title":"Fix bug","status":"working","createdAt":"2026-08-29T10:00:00Z"}]`))
	})
	mux.HandleFunc("GET /api/agents/a1/messages", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"m1","agentId":"a1","role":"agent","text":"on it","timestamp":"2026-08-29T10:05:00Z","persona":"builder"}]`))
	})
	mux.HandleFunc("POST /api/agents/a1/messages", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.sent = append(f.sent, body)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("GET /api/status", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(f.statusJS))
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func setupCLIEnv(t *testing.T, gatewayURL string) {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("AGENTDECK_GATEWAY_URL", gatewayURL)
	t.Setenv("AGENTDECK_CACHE_PATH", filepath.Join(home, "cache.db"))
}

func TestVersionCommand(t *testing.T) {
	fixture := newGatewayFixture(t)
	setupCLIEnv(t, fixture.server.URL)

	stdout, _, err := executeCLI(t, "version")
	require.NoError(t, err)
	assert.NotEmpty(t, stdout)
}

func TestProjectsCommandListsFromGateway(t *testing.T) {
	fixture := newGatewayFixture(t)
	setupCLIEnv(t, fixture.server.URL)

	stdout, stderr, err := executeCLI(t, "projects")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "p1")
	assert.Contains(t, stdout, "Demo")
	assert.Empty(t, stderr)
}

func TestProjectsCommandFallsBackToPersistedCache(t *testing.T) {
	fixture := newGatewayFixture(t)
	setupCLIEnv(t, fixture.server.URL)

	_, _, err := executeCLI(t, "projects")
	require.NoError(t, err)

	// Gateway goes away; the persisted cache still answers.
	deadServer := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	deadServer.Close()
	t.Setenv("AGENTDECK_GATEWAY_URL", deadServer.URL)

	stdout, stderr, err := executeCLI(t, "projects")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Demo", "cached projects remain visible when the gateway is down")
	assert.Contains(t, stderr, "gateway unreachable")
}

func TestPersistedCacheSurvivesUnrelatedCommands(t *testing.T) {
	fixture := newGatewayFixture(t)
	setupCLIEnv(t, fixture.server.URL)

	_, _, err := executeCLI(t, "projects")
	require.NoError(t, err)

	// Commands that never fetch still persist on exit; they must write
	// back the restored snapshot, not an empty one.
	_, _, err = executeCLI(t, "version")
	require.NoError(t, err)
	_, _, err = executeCLI(t, "send", "p1", "a1", "hello")
	require.NoError(t, err)

	deadServer := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	deadServer.Close()
	t.Setenv("AGENTDECK_GATEWAY_URL", deadServer.URL)

	stdout, _, err := executeCLI(t, "projects")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Demo", "cached projects survive commands that never fetch")
}

func TestAgentsCommandListsAgents(t *testing.T) {
	fixture := newGatewayFixture(t)
	setupCLIEnv(t, fixture.server.URL)

	stdout, stderr, err := executeCLI(t, "agents", "p1")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "a1")
	assert.Contains(t, stdout, "Fix bug")
}

func TestMessagesCommandShowsConversation(t *testing.T) {
	fixture := newGatewayFixture(t)
	setupCLIEnv(t, fixture.server.URL)

	stdout, stderr, err := executeCLI(t, "messages", "a1")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "builder")
	assert.Contains(t, stdout, "on it")
}

func TestSendCommandDeliversMessage(t *testing.T) {
	fixture := newGatewayFixture(t)
	setupCLIEnv(t, fixture.server.URL)

	stdout, stderr, err := executeCLI(t, "send", "p1", "a1", "hello", "world")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "queued")

	// The root command drains background sends before returning.
	fixture.mu.Lock()
	defer fixture.mu.Unlock()
	require.Len(t, fixture.sent, 1)
	assert.Equal(t, "hello world", fixture.sent[0]["text"])
	assert.Equal(t, "p1", fixture.sent[0]["projectId"])
}

func TestStatusCommandRendersLiveTree(t *testing.T) {
	fixture := newGatewayFixture(t)
	setupCLIEnv(t, fixture.server.URL)

	stdout, stderr, err := executeCLI(t, "status")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Demo")
	assert.Contains(t, stdout, "online")
	assert.Contains(t, stdout, "Fix bug")
	assert.Contains(t, stdout, "writing tests")
	assert.Contains(t, stdout, "(1 agents, 1 active)")
}

func TestStatusCommandJSONOutput(t *testing.T) {
	fixture := newGatewayFixture(t)
	setupCLIEnv(t, fixture.server.URL)

	stdout, _, err := executeCLI(t, "status", "--json")
	require.NoError(t, err)

	var view struct {
		Connected bool
		Projects  []struct {
			Project struct{ ID string }
		}
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &view))
	assert.True(t, view.Connected)
	require.Len(t, view.Projects, 1)
	assert.Equal(t, "p1", view.Projects[0].Project.ID)
}

func TestConfigInitWritesAndRefusesOverwrite(t *testing.T) {
	fixture := newGatewayFixture(t)
	setupCLIEnv(t, fixture.server.URL)

	stdout, _, err := executeCLI(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "config.toml")

	home := os.Getenv("HOME")
	data, err := os.ReadFile(filepath.Join(home, ".agentdeck", "config.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[gateway]")
	assert.Contains(t, string(data), defaultGatewayURL)

	_, _, err = executeCLI(t, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = executeCLI(t, "config", "init", "--force")
	require.NoError(t, err)
}
