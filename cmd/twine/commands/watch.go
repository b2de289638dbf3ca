package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.trai.ch/twine/internal/app"
	"go.trai.ch/twine/internal/core/domain"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [name...]",
		Short: "Re-check templates whenever their files change",
		Long: `Re-check templates whenever their files change.

The directories of every filesystem loader in the chain are watched. After each
burst of changes the given templates, or every listable template, are checked
against the render index as with "twine check". Stop with Ctrl-C.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return c.app.Watch(cmd.Context(), args, func(results []app.CheckResult) {
				_ = printResults(out, results)
			})
		},
	}
}

func printResults(out io.Writer, results []app.CheckResult) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, r := range results {
		detail := r.CacheKey
		if r.Freshness == domain.FreshnessMissing {
			detail = r.Reason
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", r.Freshness, r.Name, detail); err != nil {
			return err
		}
	}
	return w.Flush()
}
