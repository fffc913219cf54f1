package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/schedulestore-go/features/command/recordlog"
	"github.com/AntonStoeckl/schedulestore-go/features/query/listlogs"
	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
)

func NewLogsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Record and list audit logs",
	}

	cmd.AddCommand(newLogsListCommand(rootOpts))
	cmd.AddCommand(newLogsRecordCommand(rootOpts))

	return cmd
}

func newLogsListCommand(rootOpts *RootOptions) *cobra.Command {
	pages := &pageFlags{}
	var actionType, operator, keyword, fromDate, toDate string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List logs filtered by action, operator, keyword and date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), rootOpts, func(ctx context.Context, a *app) error {
				handler, err := wrapQuery[listlogs.Query, schedulestore.ListResult[*schedulestore.Log]](
					a, listlogs.NewQueryHandler(a.store),
				)
				if err != nil {
					return err
				}

				query := listlogs.BuildQuery(actionType, operator, keyword, fromDate, toDate, pages.Page, pages.Size, pages.Sort...)

				page, err := handler.Handle(ctx, query)
				if err != nil {
					return failed("listing logs failed", err)
				}

				return printLogs(a.output(), page)
			})
		},
	}

	pages.register(cmd)
	cmd.Flags().StringVar(&actionType, "action-type", "", "exact action type")
	cmd.Flags().StringVar(&operator, "operator-name", "", "exact operator")
	cmd.Flags().StringVar(&keyword, "keyword", "", "case-insensitive keyword")
	cmd.Flags().StringVar(&fromDate, "from-date", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&toDate, "to-date", "", "last day, YYYY-MM-DD")

	return cmd
}

func newLogsRecordCommand(rootOpts *RootOptions) *cobra.Command {
	command := recordlog.Command{}
	var file string
	var details []string

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record an operator action",
		Long: `Record an operator action. The log is built from the flags, or read as JSON from --file ("-" reads stdin).

Details are given as "field,label,oldValue,newValue", trailing parts may be omitted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file != "" {
				decoded, err := decodeCommandFile(file, cmd.InOrStdin())
				if err != nil {
					return failed("reading the log failed", err)
				}

				command = decoded
			} else {
				command.Details = parseDetails(details)
			}

			return run(cmd.Context(), rootOpts, func(ctx context.Context, a *app) error {
				handler, err := wrapCommand[recordlog.Command](a, recordlog.NewCommandHandler(a.store))
				if err != nil {
					return err
				}

				result, err := handler.Handle(ctx, command)
				if err != nil {
					return failed("recording the log failed", err)
				}

				return a.output().PrintResult("recorded", result)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON request body")
	cmd.Flags().StringVar(&command.ActionType, "action-type", "", "action type (required)")
	cmd.Flags().StringVar(&command.CalendarName, "calendar", "", "calendar name")
	cmd.Flags().StringVar(&command.EventName, "event", "", "event name")
	cmd.Flags().StringVar(&command.EventTitle, "event-title", "", "event title")
	cmd.Flags().StringVar(&command.Keyword, "keyword", "", "keyword")
	cmd.Flags().StringVar(&command.Summary, "summary", "", "summary")
	cmd.Flags().StringArrayVar(&details, "detail", nil, "change detail, repeatable")

	return cmd
}

func decodeCommandFile(path string, stdin io.Reader) (recordlog.Command, error) {
	if path == "-" {
		return recordlog.DecodeCommand(stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return recordlog.Command{}, err
	}
	defer f.Close()

	return recordlog.DecodeCommand(f)
}

func parseDetails(raw []string) []recordlog.DetailCommand {
	details := make([]recordlog.DetailCommand, 0, len(raw))

	for _, entry := range raw {
		parts := strings.SplitN(entry, ",", 4)
		for len(parts) < 4 {
			parts = append(parts, "")
		}

		details = append(details, recordlog.DetailCommand{
			Field:    parts[0],
			Label:    parts[1],
			OldValue: parts[2],
			NewValue: parts[3],
		})
	}

	return details
}
