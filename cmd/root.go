package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "deck",
		Short:         "deck: terminal command-center for AI agent tasks",
		Long:          "deck keeps a local cache of your agent gateway's projects, agents and conversations, polls live status, and lets you chat with agents from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, _ []string) error {
		return app.shutdown(cmd.Context())
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(),
		newProjectsCmd(app),
		newAgentsCmd(app),
		newMessagesCmd(app),
		newSendCmd(app),
		newStatusCmd(app),
		newWatchCmd(app),
	)

	return rootCmd
}
