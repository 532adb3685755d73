package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentdeck/agentdeck/internal/domain"
)

func newAgentsCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "agents <project-id>",
		Short: "List agents for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID := domain.ProjectID(args[0])

			if err := app.store.FetchAgents(cmd.Context(), projectID); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: gateway unreachable, showing cached data: %v\n", err)
			}

			agents := app.store.AgentsForProject(projectID)
			if len(agents) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no agents")
				return err
			}

			for _, a := range agents {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), formatAgent(a)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func formatAgent(a domain.Agent) string {
	line := fmt.Sprintf("%s\t%s\t%s", a.ID, a.Title, agentState(a))
	if a.Focus != nil && *a.Focus != "" {
		line += "\t" + *a.Focus
	}
	return line
}

func agentState(a domain.Agent) string {
	switch {
	case a.IsFinished:
		return "finished"
	case a.Thinking():
		return "thinking"
	case a.IsThinking == nil:
		return a.Status
	default:
		return "idle"
	}
}
