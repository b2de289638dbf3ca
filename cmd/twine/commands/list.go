package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List templates held by listable loaders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := c.app.List()
			if err != nil {
				return err
			}
			for _, name := range names {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (c *CLI) newLoadersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "loaders",
		Short: "Show the loader chain in resolution order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loaders, err := c.app.Loaders()
			if err != nil {
				return err
			}
			for i, l := range loaders {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i+1, l); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
