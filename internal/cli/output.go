package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/shared/shell"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Exit codes of schedulectl.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the operation failed, e.g. a write conflict survived all retries
	ExitCommandError = 2 // invalid flags, input or configuration
)

// ExitError carries the exit code of a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Errors other than ExitError yield ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return ExitFailure
}

// failed maps a handler error onto an ExitError, input errors are command errors.
func failed(message string, err error) error {
	if shell.IsInputError(err) {
		return WrapExitError(ExitCommandError, message, err)
	}

	return WrapExitError(ExitFailure, message, err)
}

// OutputFormatter writes results as JSON or as a text table.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

func newOutputFormatter(opts *RootOptions) OutputFormatter {
	return OutputFormatter{Format: opts.Format, Writer: opts.Out}
}

// Print writes data as indented JSON, or calls text with a tab-aligned writer.
func (f OutputFormatter) Print(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		encoder := json.NewEncoder(f.Writer)
		encoder.SetIndent("", "  ")

		return encoder.Encode(data)
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	text(tw)

	return tw.Flush()
}

// PrintResult writes the outcome of a command.
func (f OutputFormatter) PrintResult(action string, result shell.HandlerResult) error {
	outcome := shell.StatusSuccess
	if result.Idempotent {
		outcome = shell.StatusIdempotent
	}

	data := map[string]any{
		"action":   action,
		"name":     result.RecordName,
		"outcome":  outcome,
		"attempts": result.RetryAttempts,
	}

	return f.Print(data, func(w io.Writer) {
		fmt.Fprintf(w, "%s\t%s\t%s\n", action, result.RecordName, outcome)
	})
}

func pageFooter[T any](w io.Writer, page schedulestore.ListResult[T]) {
	fmt.Fprintf(w, "\npage %d, size %d, total %d\n", page.Page, page.Size, page.Total)
}

func printCalendars(f OutputFormatter, page schedulestore.ListResult[*schedulestore.Calendar]) error {
	return f.Print(page, func(w io.Writer) {
		fmt.Fprintln(w, "NAME\tDISPLAY NAME\tEVENTS\tRANGE")

		for _, calendar := range page.Items {
			status := calendar.StatusOrEmpty()
			fmt.Fprintf(w, "%s\t%s\t%d\t%s..%s\n",
				calendar.Metadata.Name, calendar.Spec.DisplayName, status.EventCount,
				status.RangeStartMonth, status.RangeEndMonth)
		}

		pageFooter(w, page)
	})
}

func printEvents(f OutputFormatter, page schedulestore.ListResult[*schedulestore.Event]) error {
	return f.Print(page, func(w io.Writer) {
		fmt.Fprintln(w, "NAME\tCALENDAR\tSTART\tEND\tSTATUS\tTITLE")

		for _, event := range page.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				event.Metadata.Name, event.Spec.CalendarName, event.Spec.StartAt, event.Spec.EndAt,
				event.Spec.Status, event.Spec.Title)
		}

		pageFooter(w, page)
	})
}

func printLogs(f OutputFormatter, page schedulestore.ListResult[*schedulestore.Log]) error {
	return f.Print(page, func(w io.Writer) {
		fmt.Fprintln(w, "ACTION AT\tACTION\tOPERATOR\tCALENDAR\tEVENT\tSUMMARY")

		for _, log := range page.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				log.Spec.ActionAt, log.Spec.ActionType, log.Spec.Operator, log.Spec.CalendarName,
				log.Spec.EventName, log.Spec.Summary)
		}

		pageFooter(w, page)
	})
}
