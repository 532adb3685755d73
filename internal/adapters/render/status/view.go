package status

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/agentdeck/agentdeck/internal/application"
	"github.com/agentdeck/agentdeck/internal/domain"
)

type RenderOptions struct {
	ShowFinished bool
}

// View renders the overview directly, for embedding inside a live bubbletea
// model (Render runs its own program and cannot be nested).
func View(view application.Overview, opts RenderOptions) string {
	return renderView(view, opts, newStyles())
}

func renderView(view application.Overview, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Agent Deck"),
		s.header.Render(fmt.Sprintf("projects: %d · gateway: %s", len(view.Projects), connectivityLabel(view.Connected, s))),
	}

	if len(view.Projects) == 0 {
		lines = append(lines, s.empty.Render("No projects cached. Run 'deck projects' to fetch them."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, project := range view.Projects {
		lines = append(lines, s.section.Render(renderProject(project, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func connectivityLabel(connected bool, s styles) string {
	if connected {
		return s.online.Render("online")
	}
	return s.offline.Render("offline")
}

func renderProject(view application.ProjectOverview, opts RenderOptions, s styles) string {
	p := view.Project
	parts := []string{
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.project.Render(p.Name),
			" ",
			s.counters.Render(fmt.Sprintf("(%d agents, %d active)", p.AgentCount, p.ActiveAgentCount)),
		),
	}

	shown := 0
	for _, agent := range view.Agents {
		if agent.IsFinished && !opts.ShowFinished {
			continue
		}
		parts = append(parts, renderAgent(agent, s))
		shown++
	}
	if shown == 0 {
		parts = append(parts, s.empty.Render("  no agents"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderAgent(agent domain.Agent, s styles) string {
	line := lipgloss.JoinHorizontal(
		lipgloss.Top,
		"  ",
		agentBadge(agent, s),
		" ",
		s.agent.Render(agent.Title),
	)

	if agent.Focus != nil && *agent.Focus != "" {
		line = lipgloss.JoinHorizontal(lipgloss.Top, line, " ", s.focus.Render("· "+*agent.Focus))
	}
	if agent.SessionRunning != nil && *agent.SessionRunning {
		line = lipgloss.JoinHorizontal(lipgloss.Top, line, " ", s.counters.Render("[session]"))
	}

	return line
}

func agentBadge(agent domain.Agent, s styles) string {
	switch {
	case agent.IsFinished:
		return s.finished.Render("✓")
	case agent.Thinking():
		return s.thinking.Render("●")
	default:
		return s.idle.Render("○")
	}
}
