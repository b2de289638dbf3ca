package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/twine/internal/adapters/telemetry"
)

func (c *CLI) newTraceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trace <name>",
		Short: "Show every loader call made while resolving a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.app.Trace(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, s := range res.Spans {
				subject := s.Attributes[telemetry.AttrLoader]
				if subject == "" {
					subject = s.Attributes[telemetry.AttrTemplate]
				}
				if _, err := fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\n",
					strings.Repeat("  ", s.Depth), s.Name, subject, outcome(s), s.Duration.Round(time.Microsecond),
				); err != nil {
					return err
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}
			return res.Err
		},
	}
}

func outcome(s telemetry.SpanRecord) string {
	switch {
	case s.Err != "":
		return "error: " + s.Err
	case s.Attributes[telemetry.AttrExists] != "":
		return "exists=" + s.Attributes[telemetry.AttrExists]
	default:
		return s.Attributes[telemetry.AttrResult]
	}
}
