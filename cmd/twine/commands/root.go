// Package commands implements the CLI commands for twine.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/twine/internal/app"
	"go.trai.ch/twine/internal/build"
)

// CLI represents the command line interface for twine.
type CLI struct {
	app     *app.App
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app.
func New(a *app.App) *CLI {
	rootCmd := &cobra.Command{
		Use:           "twine",
		Short:         "Resolve templates through a chain of loaders",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the chain configuration (default: discover twine.yaml)")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			c.app.WithConfigPath(path)
		}
	}

	rootCmd.AddCommand(c.newShowCmd())
	rootCmd.AddCommand(c.newExistsCmd())
	rootCmd.AddCommand(c.newKeyCmd())
	rootCmd.AddCommand(c.newCheckCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newTraceCmd())
	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newLoadersCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects command output. Used for testing.
func (c *CLI) SetOutput(w io.Writer) {
	c.rootCmd.SetOut(w)
	c.rootCmd.SetErr(w)
}
