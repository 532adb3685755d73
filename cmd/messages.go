package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentdeck/agentdeck/internal/domain"
)

func newMessagesCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "messages <agent-id>",
		Short: "Show the conversation with an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agentID := domain.AgentID(args[0])

			if err := app.store.FetchMessages(cmd.Context(), agentID); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: gateway unreachable, showing cached data: %v\n", err)
			}

			messages := app.store.MessagesForAgent(agentID)
			if len(messages) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no messages")
				return err
			}

			for _, m := range messages {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), formatMessage(m)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func formatMessage(m domain.Message) string {
	who := string(m.Role)
	if m.Persona != "" {
		who = m.Persona
	}
	return fmt.Sprintf("[%s] %s: %s", m.Timestamp.Format(time.TimeOnly), who, m.Text)
}
