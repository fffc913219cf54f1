package cli

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds the global flags of all commands.
type RootOptions struct {
	ConfigPath string
	Format     string // "json" | "text"
	Operator   string
	Verbose    bool

	Out    io.Writer
	ErrOut io.Writer
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of schedulectl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{Out: os.Stdout, ErrOut: os.Stderr}

	cmd := &cobra.Command{
		Use:   "schedulectl",
		Short: "schedulectl - manage schedule calendars, events and logs",
		Long: `Manage schedule calendars, events and audit logs.

The store is selected by the config file (--config), without one an in-memory store is used.
Calendar stats are refreshed after every event change, "stats reconcile" bounds their staleness.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			opts.Out = cmd.OutOrStdout()
			opts.ErrOut = cmd.ErrOrStderr()

			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to the YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Operator, "operator", os.Getenv("SCHEDULECTL_OPERATOR"), "operator recorded in logs")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewCalendarsCommand(opts))
	cmd.AddCommand(NewEventsCommand(opts))
	cmd.AddCommand(NewLogsCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewApplyCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}
