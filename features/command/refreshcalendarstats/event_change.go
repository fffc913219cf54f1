package refreshcalendarstats

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/shared/shell"
)

// EventChangeHandler refreshes the calendars affected by an event mutation.
// It accepts any handler of Command, so an instrumented handler can be plugged in.
type EventChangeHandler struct {
	refresh shell.CoreCommandHandler[Command]
}

func NewEventChangeHandler(refresh shell.CoreCommandHandler[Command]) EventChangeHandler {
	return EventChangeHandler{refresh: refresh}
}

// HandleEventChange refreshes every calendar returned by CalendarsAffectedBy.
// All calendars are attempted, the errors are joined.
func (h EventChangeHandler) HandleEventChange(
	ctx context.Context,
	before *schedulestore.Event,
	after *schedulestore.Event,
) ([]shell.HandlerResult, error) {

	calendars := CalendarsAffectedBy(before, after)
	results := make([]shell.HandlerResult, 0, len(calendars))

	var errs []error
	for _, calendarName := range calendars {
		result, err := h.refresh.Handle(ctx, BuildCommand(calendarName))
		results = append(results, result)

		if err != nil {
			errs = append(errs, err)
		}
	}

	return results, errors.Join(errs...)
}

// HandleEventChange refreshes the affected calendars with this handler.
func (h CommandHandler) HandleEventChange(
	ctx context.Context,
	before *schedulestore.Event,
	after *schedulestore.Event,
) ([]shell.HandlerResult, error) {

	return NewEventChangeHandler(h).HandleEventChange(ctx, before, after)
}
