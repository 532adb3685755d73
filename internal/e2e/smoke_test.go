package e2e

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)
	server := startGatewayFixture(t)

	stdout, stderr, err := runDeck(t, binaryPath, home, server.URL, "projects")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Demo")

	stdout, stderr, err = runDeck(t, binaryPath, home, server.URL, "status")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "online")
	assert.Contains(t, stdout, "Fix bug")

	// Kill the gateway; the persisted cache still serves the list.
	server.Close()
	stdout, stderr, err = runDeck(t, binaryPath, home, server.URL, "projects")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Demo")
	assert.Contains(t, stderr, "gateway unreachable")
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "deck-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/deck")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build deck binary: %s", string(output))
	return binaryPath
}

func startGatewayFixture(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	mux.HandleFunc("GET /api/projects", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"p1","name":"Demo","createdAt":"2026-08-29T10:00:00Z","agentCount":1,"activeAgentCount":1}]`))
	})
	mux.HandleFunc("GET /api/projects/p1/agents", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"a1","projectId":"p1","title":"Fix bug","status":"working","createdAt":"2026-08-29T10:00:00Z"}]`))
	})
	mux.HandleFunc("GET /api/status", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"projects":[{"id":"p1","agents":[{"id":"a1","isThinking":true,"focus":"writing tests","sessionRunning":true}]}]}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func runDeck(t *testing.T, binaryPath, home, gatewayURL string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(),
		"HOME="+home,
		"AGENTDECK_GATEWAY_URL="+gatewayURL,
		"AGENTDECK_CACHE_PATH="+filepath.Join(home, "cache.db"),
	)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}
