package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	statusadapter "github.com/agentdeck/agentdeck/internal/adapters/render/status"
)

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool
	var showFinished bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show live agent status across all projects",
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
			if err := app.store.PollStatus(ctx); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}

			view := app.store.Overview()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}

			rendered, err := app.statusRenderer(view, statusadapter.RenderOptions{ShowFinished: showFinished})
			if err != nil {
				return fmt.Errorf("render status: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the cache overview as JSON")
	cmd.Flags().BoolVar(&showFinished, "all", false, "include finished agents")

	return cmd
}
