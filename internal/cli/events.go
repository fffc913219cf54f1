package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/schedulestore-go/features/command/deleteevent"
	"github.com/AntonStoeckl/schedulestore-go/features/query/exportcalendar"
	"github.com/AntonStoeckl/schedulestore-go/features/query/listevents"
	"github.com/AntonStoeckl/schedulestore-go/features/query/listupcomingevents"
	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
)

type eventRangeFlags struct {
	Calendar string
	Status   string
	From     string
	To       string
}

func (r *eventRangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.Calendar, "calendar", "", "calendar name")
	cmd.Flags().StringVar(&r.Status, "status", "", "event status, e.g. scheduled or cancelled")
	cmd.Flags().StringVar(&r.From, "from", "", "window start, ISO-8601")
	cmd.Flags().StringVar(&r.To, "to", "", "window end, ISO-8601")
}

func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Manage events",
	}

	cmd.AddCommand(newEventsListCommand(rootOpts))
	cmd.AddCommand(newEventsUpcomingCommand(rootOpts))
	cmd.AddCommand(newEventsDeleteCommand(rootOpts))
	cmd.AddCommand(newEventsExportCommand(rootOpts))

	return cmd
}

func newEventsListCommand(rootOpts *RootOptions) *cobra.Command {
	pages := &pageFlags{}
	window := &eventRangeFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events, optionally overlapping a window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), rootOpts, func(ctx context.Context, a *app) error {
				handler, err := wrapQuery[listevents.Query, schedulestore.ListResult[*schedulestore.Event]](
					a, listevents.NewQueryHandler(a.store),
				)
				if err != nil {
					return err
				}

				query := listevents.BuildQuery(
					window.Calendar, window.Status, window.From, window.To, pages.Page, pages.Size, pages.Sort...,
				)

				page, err := handler.Handle(ctx, query)
				if err != nil {
					return failed("listing events failed", err)
				}

				return printEvents(a.output(), page)
			})
		},
	}

	pages.register(cmd)
	window.register(cmd)

	return cmd
}

func newEventsUpcomingCommand(rootOpts *RootOptions) *cobra.Command {
	pages := &pageFlags{}
	window := &eventRangeFlags{}

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List the events of a calendar overlapping a window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), rootOpts, func(ctx context.Context, a *app) error {
				handler, err := wrapQuery[listupcomingevents.Query, schedulestore.ListResult[*schedulestore.Event]](
					a, listupcomingevents.NewQueryHandler(a.store),
				)
				if err != nil {
					return err
				}

				query := listupcomingevents.
					BuildQuery(window.Calendar, window.From, window.To, pages.Page, pages.Size, pages.Sort...).
					WithStatus(window.Status)

				page, err := handler.Handle(ctx, query)
				if err != nil {
					return failed("listing upcoming events failed", err)
				}

				return printEvents(a.output(), page)
			})
		},
	}

	pages.register(cmd)
	window.register(cmd)

	return cmd
}

func newEventsDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Mark an event as deleted and refresh its calendar's stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), rootOpts, func(ctx context.Context, a *app) error {
				listener, err := a.eventChangeListener()
				if err != nil {
					return err
				}

				handler, err := wrapCommand[deleteevent.Command](a, deleteevent.NewCommandHandler(a.store, listener))
				if err != nil {
					return err
				}

				result, err := handler.Handle(ctx, deleteevent.BuildCommand(args[0]))
				if err != nil {
					return failed("deleting the event failed", err)
				}

				return a.output().PrintResult("deleted", result)
			})
		},
	}
}

func newEventsExportCommand(rootOpts *RootOptions) *cobra.Command {
	window := &eventRangeFlags{}
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the events of a calendar as iCalendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), rootOpts, func(ctx context.Context, a *app) error {
				handler, err := wrapQuery[exportcalendar.Query, exportcalendar.Export](
					a, exportcalendar.NewQueryHandler(a.store),
				)
				if err != nil {
					return err
				}

				export, err := handler.Handle(ctx, exportcalendar.BuildQuery(window.Calendar, window.From, window.To))
				if err != nil {
					return failed("exporting the calendar failed", err)
				}

				for _, skipped := range export.Skipped {
					a.logger.Warn("event skipped, its start is not a valid time", "event", skipped)
				}

				if outputPath == "" {
					_, err = io.WriteString(a.opts.Out, export.ICS)
					return err
				}

				if err = os.WriteFile(outputPath, []byte(export.ICS), 0o644); err != nil {
					return WrapExitError(ExitFailure, fmt.Sprintf("writing %s failed", outputPath), err)
				}

				summary := map[string]any{"calendar": export.CalendarName, "events": export.EventCount, "file": outputPath}

				return a.output().Print(summary, func(w io.Writer) {
					fmt.Fprintf(w, "exported\t%s\t%d events\t%s\n", export.CalendarName, export.EventCount, outputPath)
				})
			})
		},
	}

	window.register(cmd)
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the .ics file here instead of stdout")

	return cmd
}
