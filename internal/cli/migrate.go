package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database table and indexes if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), rootOpts, func(ctx context.Context, a *app) error {
				if err := a.store.EnsureSchema(ctx); err != nil {
					return WrapExitError(ExitFailure, "migrating failed", err)
				}

				summary := map[string]string{"driver": a.store.Driver(), "status": "migrated"}

				return a.output().Print(summary, func(w io.Writer) {
					fmt.Fprintf(w, "migrated\t%s\n", a.store.Driver())
				})
			})
		},
	}
}
