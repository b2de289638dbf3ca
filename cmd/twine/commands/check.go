package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [name...]",
		Short: "Compare templates with the render index and record their current state",
		Long: `Compare templates with the render index and record their current state.

Each template is reported as new, fresh, stale or missing. Without arguments,
every template held by a listable loader is checked.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := c.app.Check(cmd.Context(), args)
			if err != nil {
				return err
			}
			return printResults(cmd.OutOrStdout(), results)
		},
	}
}
