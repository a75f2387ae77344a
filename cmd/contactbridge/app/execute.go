package app

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/contactbridge/cmd/contactbridge/cmd"
	"github.com/agentstation/contactbridge/pkg/logging"
)

// Execute runs the contactbridge CLI with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// Format returns the requested output format.
func (a *App) Format() string {
	return a.config.Format
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "contactbridge",
		Short:   "Two-party contact synchronization",
		Version: a.version,
		Long: `Contactbridge keeps the contacts of two accounts in sync through a
shared buffer table. Each party pushes its labeled contacts into the
buffer and pulls the other party's pending rows, merging them into its
own directory.

Run it from both accounts on a schedule; a shared lock keeps the runs
from interleaving.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().BoolVarP(&a.config.Verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Quiet, "quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolVar(&a.config.NoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVarP(&a.config.Format, "format", "o", "", "output format: text, json, yaml")

	rootCmd.SetVersionTemplate("contactbridge {{.Version}}\n")

	rootCmd.AddCommand(cmd.NewSyncCommand(a))
	rootCmd.AddCommand(cmd.NewStatusCommand(a))
	rootCmd.AddCommand(cmd.NewLogCommand(a))

	return rootCmd
}

// setupCommand runs before any command: flags are parsed, so the logger
// can honor -v/-q.
func (a *App) setupCommand(_ *cobra.Command, _ []string) error {
	logger := NewLogger(a.config)
	a.logger = &logger
	logging.SetDefault(logger)
	return nil
}
