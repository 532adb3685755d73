package ports

import (
	"context"

	"github.com/agentdeck/agentdeck/internal/domain"
)

// CacheSnapshot is the full persisted state of the sync store's cache.
type CacheSnapshot struct {
	Projects []domain.Project
	Agents   map[domain.ProjectID][]domain.Agent
	Messages map[domain.AgentID][]domain.Message
}

// CacheStore persists cache snapshots between runs so the UI has last-known
// state before the gateway answers. Save replaces the whole snapshot.
type CacheStore interface {
	Save(ctx context.Context, snap CacheSnapshot) error
	Load(ctx context.Context) (CacheSnapshot, error)
}
