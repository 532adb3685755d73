package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdeck/agentdeck/internal/domain"
	"github.com/agentdeck/agentdeck/internal/ports"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }

func testSnapshot() ports.CacheSnapshot {
	createdAt := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	return ports.CacheSnapshot{
		Projects: []domain.Project{
			{ID: "p1", Name: "Demo", Description: "demo project", CreatedAt: createdAt, AgentCount: 2, ActiveAgentCount: 1},
			{ID: "p2", Name: "Other", CreatedAt: createdAt},
		},
		Agents: map[domain.ProjectID][]domain.Agent{
			"p1": {
				{
					ID: "a1", ProjectID: "p1", Title: "Fix bug", Status: domain.AgentStatusWorking,
					CreatedAt:  createdAt,
					IsThinking: boolPtr(true), Focus: strPtr("writing tests"), SessionRunning: boolPtr(true),
				},
				{ID: "a2", ProjectID: "p1", Title: "Idle one", Status: domain.AgentStatusIdle, CreatedAt: createdAt},
			},
		},
		Messages: map[domain.AgentID][]domain.Message{
			"a1": {
				{ID: "m1", AgentID: "a1", Role: domain.RoleUser, Text: "hi", Timestamp: createdAt, Persona: ""},
				{ID: "m2", AgentID: "a1", Role: domain.RoleAgent, Text: "on it", Timestamp: createdAt.Add(time.Minute), Persona: "builder"},
			},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	snap := testSnapshot()
	require.NoError(t, store.Save(ctx, snap))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)

	require.Len(t, loaded.Projects, 2)
	assert.Equal(t, snap.Projects[0].ID, loaded.Projects[0].ID)
	assert.Equal(t, snap.Projects[0].AgentCount, loaded.Projects[0].AgentCount)
	assert.Equal(t, snap.Projects[0].ActiveAgentCount, loaded.Projects[0].ActiveAgentCount)
	assert.True(t, snap.Projects[0].CreatedAt.Equal(loaded.Projects[0].CreatedAt))

	agents := loaded.Agents["p1"]
	require.Len(t, agents, 2)
	assert.Equal(t, "Fix bug", agents[0].Title)
	require.NotNil(t, agents[0].IsThinking)
	assert.True(t, *agents[0].IsThinking)
	require.NotNil(t, agents[0].Focus)
	assert.Equal(t, "writing tests", *agents[0].Focus)
	require.NotNil(t, agents[0].SessionRunning)
	assert.True(t, *agents[0].SessionRunning)

	assert.Nil(t, agents[1].IsThinking, "unknown live state must round-trip as unknown")
	assert.Nil(t, agents[1].Focus)
	assert.Nil(t, agents[1].SessionRunning)

	messages := loaded.Messages["a1"]
	require.Len(t, messages, 2)
	assert.Equal(t, domain.MessageID("m1"), messages[0].ID, "message order must survive the round trip")
	assert.Equal(t, domain.RoleAgent, messages[1].Role)
	assert.Equal(t, "builder", messages[1].Persona)
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSnapshot()))

	replacement := ports.CacheSnapshot{
		Projects: []domain.Project{{ID: "p9", Name: "Only one", CreatedAt: time.Now().UTC()}},
		Agents:   map[domain.ProjectID][]domain.Agent{},
		Messages: map[domain.AgentID][]domain.Message{},
	}
	require.NoError(t, store.Save(ctx, replacement))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Projects, 1)
	assert.Equal(t, domain.ProjectID("p9"), loaded.Projects[0].ID)
	assert.Empty(t, loaded.Agents)
	assert.Empty(t, loaded.Messages)
}

func TestLoadFromEmptyStore(t *testing.T) {
	store := openTestStore(t)

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded.Projects)
	assert.Empty(t, loaded.Agents)
	assert.Empty(t, loaded.Messages)
}

func TestOpenCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cache.db")

	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Save(context.Background(), testSnapshot()))
}
