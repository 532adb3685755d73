package ports

import (
	"context"

	"github.com/agentdeck/agentdeck/internal/domain"
)

// RemoteClient is the gateway capability the sync store consumes. Every
// method that can fail does so with an error wrapping domain.NetworkError;
// the store never inspects the transport behind it. Timeouts are the
// client's concern, not the store's.
type RemoteClient interface {
	HealthCheck(ctx context.Context) (bool, error)
	ListProjects(ctx context.Context) ([]domain.Project, error)
	ListAgents(ctx context.Context, projectID domain.ProjectID) ([]domain.Agent, error)
	ListMessages(ctx context.Context, agentID domain.AgentID) ([]domain.Message, error)
	SendMessage(ctx context.Context, agentID domain.AgentID, projectID domain.ProjectID, text string) error
	GetStatus(ctx context.Context) (domain.StatusSnapshot, error)
}
