package status

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	online   lipgloss.Style
	offline  lipgloss.Style
	project  lipgloss.Style
	counters lipgloss.Style
	agent    lipgloss.Style
	thinking lipgloss.Style
	idle     lipgloss.Style
	finished lipgloss.Style
	focus    lipgloss.Style
	section  lipgloss.Style
	empty    lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		header:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		online:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		offline:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		project:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		counters: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		agent:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		thinking: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		idle:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		finished: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		focus:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("250")),
		section:  lipgloss.NewStyle().MarginTop(1),
		empty:    lipgloss.NewStyle().Faint(true),
	}
}
