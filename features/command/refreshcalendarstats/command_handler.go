package refreshcalendarstats

import (
	"context"
	"errors"
	"strings"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/shared/core"
	"github.com/AntonStoeckl/schedulestore-go/shared/shell"
)

// Store is the part of a schedulestore.RecordStore the refresh needs.
type Store interface {
	shell.FetchesRecords
	shell.ListsRecords
	shell.UpdatesRecords
}

// CommandHandler recomputes and persists the stats of one calendar.
type CommandHandler struct {
	store        Store
	retryOptions []shell.RetryOption
}

func NewCommandHandler(store Store, retryOptions ...shell.RetryOption) CommandHandler {
	return CommandHandler{store: store, retryOptions: retryOptions}
}

type refreshOutcome int

const (
	outcomeUpdated refreshOutcome = iota
	outcomeUnchanged
	outcomeNoCalendar
)

// Handle refreshes the calendar. A blank name, a missing calendar or unchanged stats are idempotent no-ops.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	calendarName := strings.TrimSpace(command.CalendarName)
	if calendarName == "" {
		return shell.NewIdempotentResult("", shell.RetryMetrics{LastErrorType: "none"}), nil
	}

	ctx = schedulestore.WithStrongConsistency(ctx)

	var outcome refreshOutcome
	retryMetrics, err := shell.RetryOnConflict(
		ctx,
		func(ctx context.Context) error {
			var attemptErr error
			outcome, attemptErr = h.refresh(ctx, calendarName)

			return attemptErr
		},
		h.retryOptions...,
	)

	if err != nil {
		return shell.NewErrorResult(calendarName, retryMetrics), err
	}

	if outcome != outcomeUpdated {
		return shell.NewIdempotentResult(calendarName, retryMetrics), nil
	}

	return shell.NewSuccessResult(calendarName, retryMetrics), nil
}

// refresh is one attempt. It re-reads the calendar so the update carries the current version.
func (h CommandHandler) refresh(ctx context.Context, calendarName string) (refreshOutcome, error) {
	record, err := h.store.Fetch(ctx, schedulestore.KindCalendar, calendarName)
	if errors.Is(err, schedulestore.ErrRecordNotFound) {
		return outcomeNoCalendar, nil
	}

	if err != nil {
		return outcomeUnchanged, err
	}

	calendar, ok := record.(*schedulestore.Calendar)
	if !ok || calendar.Metadata.IsDeleting() {
		return outcomeNoCalendar, nil
	}

	records, err := h.store.ListAll(
		ctx,
		schedulestore.KindEvent,
		schedulestore.BuildFilter().AndEqual(schedulestore.FieldEventCalendarName, calendarName).Finalize(),
		schedulestore.DefaultSort(),
	)
	if err != nil {
		return outcomeUnchanged, err
	}

	stats := core.ComputeCalendarStats(schedulestore.LiveRecordsOf[*schedulestore.Event](records))
	if stats.MatchesStatus(calendar.Status) {
		return outcomeUnchanged, nil
	}

	stats.ApplyTo(calendar.StatusOrEmpty())

	if _, err = h.store.Update(ctx, calendar); err != nil {
		return outcomeUnchanged, err
	}

	return outcomeUpdated, nil
}
