// Package gateway implements the RemoteClient port over the local agent
// gateway's HTTP+JSON API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agentdeck/agentdeck/internal/domain"
	"github.com/agentdeck/agentdeck/internal/ports"
)

const maxResponseBytes = 4 << 20

// Client talks to the gateway. A zero RequestTimeout means requests carry no
// deadline beyond the caller's context; a nil HTTPClient falls back to
// http.DefaultClient.
type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

var _ ports.RemoteClient = (*Client)(nil)

type projectPayload struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	CreatedAt        time.Time `json:"createdAt"`
	AgentCount       int       `json:"agentCount"`
	ActiveAgentCount int       `json:"activeAgentCount"`
}

type agentPayload struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"projectId"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	IsDefault      bool      `json:"isDefault"`
	IsFinished     bool      `json:"isFinished"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	IsThinking     *bool     `json:"isThinking,omitempty"`
	Focus          *string   `json:"focus,omitempty"`
	SessionRunning *bool     `json:"sessionRunning,omitempty"`
}

type messagePayload struct {
	ID        string    `json:"id"`
	AgentID   string    `json:"agentId"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Persona   string    `json:"persona,omitempty"`
}

type sendMessageRequest struct {
	ProjectID string `json:"projectId"`
	Text      string `json:"text"`
}

type healthResponse struct {
	OK bool `json:"ok"`
}

type statusResponse struct {
	Projects []struct {
		ID     string `json:"id"`
		Agents []struct {
			ID             string  `json:"id"`
			IsThinking     *bool   `json:"isThinking"`
			Focus          *string `json:"focus"`
			SessionRunning *bool   `json:"sessionRunning"`
		} `json:"agents"`
	} `json:"projects"`
}

func (c *Client) HealthCheck(ctx context.Context) (bool, error) {
	var payload healthResponse
	if err := c.getJSON(ctx, "health check", "/api/health", &payload); err != nil {
		return false, err
	}
	return payload.OK, nil
}

func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var payload []projectPayload
	if err := c.getJSON(ctx, "list projects", "/api/projects", &payload); err != nil {
		return nil, err
	}

	projects := make([]domain.Project, 0, len(payload))
	for _, p := range payload {
		projects = append(projects, domain.Project{
			ID:               domain.ProjectID(p.ID),
			Name:             p.Name,
			Description:      p.Description,
			CreatedAt:        p.CreatedAt,
			AgentCount:       p.AgentCount,
			ActiveAgentCount: p.ActiveAgentCount,
		})
	}
	return projects, nil
}

func (c *Client) ListAgents(ctx context.Context, projectID domain.ProjectID) ([]domain.Agent, error) {
	path := "/api/projects/" + url.PathEscape(string(projectID)) + "/agents"

	var payload []agentPayload
	if err := c.getJSON(ctx, "list agents", path, &payload); err != nil {
		return nil, err
	}

	agents := make([]domain.Agent, 0, len(payload))
	for _, a := range payload {
		agents = append(agents, domain.Agent{
			ID:             domain.AgentID(a.ID),
			ProjectID:      domain.ProjectID(a.ProjectID),
			Title:          a.Title,
			Description:    a.Description,
			IsDefault:      a.IsDefault,
			IsFinished:     a.IsFinished,
			Status:         a.Status,
			CreatedAt:      a.CreatedAt,
			IsThinking:     a.IsThinking,
			Focus:          a.Focus,
			SessionRunning: a.SessionRunning,
		})
	}
	return agents, nil
}

func (c *Client) ListMessages(ctx context.Context, agentID domain.AgentID) ([]domain.Message, error) {
	path := "/api/agents/" + url.PathEscape(string(agentID)) + "/messages"

	var payload []messagePayload
	if err := c.getJSON(ctx, "list messages", path, &payload); err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(payload))
	for _, m := range payload {
		messages = append(messages, domain.Message{
			ID:        domain.MessageID(m.ID),
			AgentID:   domain.AgentID(m.AgentID),
			Role:      domain.MessageRole(m.Role),
			Text:      m.Text,
			Timestamp: m.Timestamp,
			Persona:   m.Persona,
		})
	}
	return messages, nil
}

func (c *Client) SendMessage(ctx context.Context, agentID domain.AgentID, projectID domain.ProjectID, text string) error {
	path := "/api/agents/" + url.PathEscape(string(agentID)) + "/messages"

	body, err := json.Marshal(sendMessageRequest{ProjectID: string(projectID), Text: text})
	if err != nil {
		return fmt.Errorf("encode send message request: %w", err)
	}

	_, err = c.do(ctx, "send message", http.MethodPost, path, bytes.NewReader(body))
	return err
}

func (c *Client) GetStatus(ctx context.Context) (domain.StatusSnapshot, error) {
	var payload statusResponse
	if err := c.getJSON(ctx, "get status", "/api/status", &payload); err != nil {
		return domain.StatusSnapshot{}, err
	}

	snap := domain.StatusSnapshot{Projects: make([]domain.ProjectStatus, 0, len(payload.Projects))}
	for _, p := range payload.Projects {
		ps := domain.ProjectStatus{ID: domain.ProjectID(p.ID)}
		for _, a := range p.Agents {
			ps.Agents = append(ps.Agents, domain.AgentStatus{
				ID:             domain.AgentID(a.ID),
				IsThinking:     a.IsThinking,
				Focus:          a.Focus,
				SessionRunning: a.SessionRunning,
			})
		}
		snap.Projects = append(snap.Projects, ps)
	}
	return snap, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	body, err := c.do(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &domain.NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// do performs one request and returns the full response body. Non-2xx
// statuses and transport failures both surface as domain.NetworkError.
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader) ([]byte, error) {
	endpoint, err := buildURL(c.BaseURL, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &domain.NetworkError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &domain.NetworkError{Op: op, Err: fmt.Errorf("gateway returned %s", resp.Status)}
	}
	return data, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.RequestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.RequestTimeout)
}

func buildURL(baseURL, path string) (string, error) {
	if baseURL == "" {
		return "", fmt.Errorf("gateway base url is empty")
	}
	return strings.TrimRight(baseURL, "/") + path, nil
}
