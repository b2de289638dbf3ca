package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print the source of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := c.app.Show(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if pathOnly, _ := cmd.Flags().GetBool("path"); pathOnly {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), src.Path)
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), src.Code)
			return err
		},
	}
	cmd.Flags().BoolP("path", "p", false, "Print where the template was loaded from instead of its source")
	return cmd
}

func (c *CLI) newKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "key <name>",
		Short: "Print the cache key of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := c.app.Key(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
			return err
		},
	}
}
