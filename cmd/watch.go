package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	statusadapter "github.com/agentdeck/agentdeck/internal/adapters/render/status"
	"github.com/agentdeck/agentdeck/internal/application"
)

const watchRefresh = 500 * time.Millisecond

func newWatchCmd(app *app) *cobra.Command {
	var showFinished bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live dashboard of agent status (q to quit)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if err := app.store.FetchProjects(ctx); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: gateway unreachable, showing cached data: %v\n", err)
			}
			for _, p := range app.store.Projects() {
				if err := app.store.FetchAgents(ctx, p.ID); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
					break
				}
			}

			app.store.StartPolling(ctx, app.pollInterval)
			defer app.store.StopPolling()

			p := tea.NewProgram(
				newWatchModel(app.store, statusadapter.RenderOptions{ShowFinished: showFinished}),
				tea.WithContext(ctx),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run watch dashboard: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showFinished, "all", false, "include finished agents")

	return cmd
}

type watchRefreshMsg time.Time

type watchModel struct {
	store   *application.SyncStore
	opts    statusadapter.RenderOptions
	spinner spinner.Model
	view    application.Overview
}

func newWatchModel(store *application.SyncStore, opts statusadapter.RenderOptions) watchModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return watchModel{
		store:   store,
		opts:    opts,
		spinner: s,
		view:    store.Overview(),
	}
}

func watchRefreshTick() tea.Cmd {
	return tea.Tick(watchRefresh, func(t time.Time) tea.Msg {
		return watchRefreshMsg(t)
	})
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, watchRefreshTick())
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case watchRefreshMsg:
		m.view = m.store.Overview()
		return m, watchRefreshTick()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m watchModel) View() string {
	body := statusadapter.View(m.view, m.opts)
	footer := fmt.Sprintf("%s polling · q to quit", m.spinner.View())
	return body + "\n\n" + footer
}
