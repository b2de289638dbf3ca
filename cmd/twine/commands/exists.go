package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/twine/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newExistsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exists <name>...",
		Short: "Report whether templates exist in the chain",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := c.app.Exists(cmd.Context(), args)
			if err != nil {
				return err
			}

			var missing []string
			for i, name := range args {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%t\n", name, found[i]); err != nil {
					return err
				}
				if !found[i] {
					missing = append(missing, name)
				}
			}

			if len(missing) > 0 {
				return zerr.With(zerr.Wrap(domain.ErrTemplateNotDefined, "templates not found"), "names", missing)
			}
			return nil
		},
	}
}
