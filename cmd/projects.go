package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentdeck/agentdeck/internal/domain"
)

func newProjectsCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects tracked by the gateway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// A failed fetch is not fatal: the store keeps whatever it
			// had (restored cache included) and we render that, with a
			// warning on stderr.
			if err := app.store.FetchProjects(cmd.Context()); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: gateway unreachable, showing cached data: %v\n", err)
			}

			projects := app.store.Projects()
			if len(projects) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no projects")
				return err
			}

			for _, p := range projects {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), formatProject(p)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func formatProject(p domain.Project) string {
	line := fmt.Sprintf("%s\t%s\t%d agents, %d active", p.ID, p.Name, p.AgentCount, p.ActiveAgentCount)
	if !p.CreatedAt.IsZero() {
		line += "\tcreated " + p.CreatedAt.Format(time.DateOnly)
	}
	return line
}
