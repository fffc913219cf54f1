package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/schedulestore-go/features/query/listcalendars"
	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
)

// pageFlags are shared by the list commands.
type pageFlags struct {
	Page int
	Size int
	Sort []string
}

func (p *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.Page, "page", 1, "1-based page")
	cmd.Flags().IntVar(&p.Size, "size", 20, "page size, 0 lists everything")
	cmd.Flags().StringArrayVar(&p.Sort, "sort", nil, `sort order "field,asc|desc", repeatable`)
}

func NewCalendarsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendars",
		Short: "Manage calendars",
	}

	cmd.AddCommand(newCalendarsListCommand(rootOpts))

	return cmd
}

func newCalendarsListCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &pageFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List calendars with their stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), rootOpts, func(ctx context.Context, a *app) error {
				handler, err := wrapQuery[listcalendars.Query, schedulestore.ListResult[*schedulestore.Calendar]](
					a, listcalendars.NewQueryHandler(a.store),
				)
				if err != nil {
					return err
				}

				page, err := handler.Handle(ctx, listcalendars.BuildQuery(flags.Page, flags.Size, flags.Sort...))
				if err != nil {
					return failed("listing calendars failed", err)
				}

				return printCalendars(a.output(), page)
			})
		},
	}

	flags.register(cmd)

	return cmd
}
