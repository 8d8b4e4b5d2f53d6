package main

import (
	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "dev"

// NewRootCmd creates the root command for tournamentd.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tournamentd",
		Short:         "Tournament ledger ABCI application",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())
		},
	}

	rootCmd.AddCommand(
		newStartCmd(),
		newTxCmd(),
		newKeysCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the application version",
			Run: func(cmd *cobra.Command, _ []string) {
				cmd.Println(Version)
			},
		},
	)
	return rootCmd
}
