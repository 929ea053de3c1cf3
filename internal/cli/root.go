// Package cli holds the ticketbot command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the ticketbot root command.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ticketbot",
		Short:         "Discord support ticket bot",
		Long:          "Runs the per-member support ticket workflow for one Discord guild, with an operator HTTP API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewTokenCommand())
	cmd.AddCommand(NewMigrateCommand())
	return cmd
}
