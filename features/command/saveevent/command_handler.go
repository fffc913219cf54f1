package saveevent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/shared/shell"
)

// Store is the part of a schedulestore.RecordStore saving an event needs.
type Store interface {
	shell.FetchesRecords
	shell.CreatesRecords
	shell.UpdatesRecords
}

// CommandHandler executes Normalize -> check calendar -> Create or (Fetch -> Apply -> Update) -> notify.
type CommandHandler struct {
	store        Store
	listener     shell.EventChangeListener
	retryOptions []shell.RetryOption
}

// NewCommandHandler creates a handler. listener may be nil.
func NewCommandHandler(store Store, listener shell.EventChangeListener, retryOptions ...shell.RetryOption) CommandHandler {
	return CommandHandler{store: store, listener: listener, retryOptions: retryOptions}
}

// Handle saves the event. If the write succeeded but the listener failed, the result reports the
// write and the error wraps shell.ErrEventChangeNotificationFailed.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	spec, err := NormalizeSpec(command.Spec)
	if err != nil {
		return shell.NewErrorResult("", shell.SingleAttempt(err)), err
	}

	ctx = schedulestore.WithStrongConsistency(ctx)

	if err = h.ensureCalendarExists(ctx, spec.CalendarName); err != nil {
		return shell.NewErrorResult("", shell.SingleAttempt(err)), err
	}

	name := strings.TrimSpace(command.Name)
	if name == "" {
		return h.create(ctx, spec)
	}

	return h.update(ctx, name, spec)
}

func (h CommandHandler) ensureCalendarExists(ctx context.Context, calendarName string) error {
	record, err := h.store.Fetch(ctx, schedulestore.KindCalendar, calendarName)
	if errors.Is(err, schedulestore.ErrRecordNotFound) {
		return shell.NewInputError("calendar %q does not exist", calendarName)
	}

	if err != nil {
		return err
	}

	if record.Meta().IsDeleting() {
		return shell.NewInputError("calendar %q is being deleted", calendarName)
	}

	return nil
}

func (h CommandHandler) create(ctx context.Context, spec schedulestore.EventSpec) (shell.HandlerResult, error) {
	created, err := h.store.Create(ctx, BuildNewEvent(spec))
	if err != nil {
		return shell.NewErrorResult("", shell.SingleAttempt(err)), err
	}

	event := created.(*schedulestore.Event)
	result := shell.NewSuccessResult(event.Metadata.Name, shell.SingleAttempt(nil))

	return result, h.notify(ctx, nil, event)
}

func (h CommandHandler) update(ctx context.Context, name string, spec schedulestore.EventSpec) (shell.HandlerResult, error) {
	var before, after *schedulestore.Event
	changed := false

	retryMetrics, err := shell.RetryOnConflict(
		ctx,
		func(ctx context.Context) error {
			record, err := h.store.Fetch(ctx, schedulestore.KindEvent, name)
			if err != nil {
				return err
			}

			existing := record.(*schedulestore.Event)
			if existing.Metadata.IsDeleting() {
				return fmt.Errorf("%w: event %q is being deleted", schedulestore.ErrRecordNotFound, name)
			}

			var updated *schedulestore.Event
			updated, changed = ApplySpec(existing, spec)
			if !changed {
				return nil
			}

			stored, err := h.store.Update(ctx, updated)
			if err != nil {
				return err
			}

			before, after = existing, stored.(*schedulestore.Event)

			return nil
		},
		h.retryOptions...,
	)

	if err != nil {
		return shell.NewErrorResult(name, retryMetrics), err
	}

	if !changed {
		return shell.NewIdempotentResult(name, retryMetrics), nil
	}

	return shell.NewSuccessResult(name, retryMetrics), h.notify(ctx, before, after)
}

func (h CommandHandler) notify(ctx context.Context, before, after *schedulestore.Event) error {
	if h.listener == nil {
		return nil
	}

	if _, err := h.listener.HandleEventChange(ctx, before, after); err != nil {
		return errors.Join(shell.ErrEventChangeNotificationFailed, err)
	}

	return nil
}
