package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentdeck/agentdeck/internal/domain"
)

func newSendCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "send <project-id> <agent-id> <text>...",
		Short: "Send a message to an agent",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID := domain.ProjectID(args[0])
			agentID := domain.AgentID(args[1])
			text := strings.Join(args[2:], " ")

			// The append is optimistic; delivery happens in the
			// background and is drained before the process exits.
			// A delivery failure surfaces via the send-error
			// callback, never as a command error.
			msg := app.store.SendMessage(cmd.Context(), agentID, projectID, text)

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "queued %s\n", msg.ID)
			return err
		},
	}
}
