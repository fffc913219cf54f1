package deleteevent

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/shared/shell"
)

type Store interface {
	shell.FetchesRecords
	shell.UpdatesRecords
}

// CommandHandler sets the deletion marker of an event. Deleting an event that is already marked is idempotent.
type CommandHandler struct {
	store        Store
	listener     shell.EventChangeListener
	now          func() time.Time
	retryOptions []shell.RetryOption
}

// NewCommandHandler creates a handler. listener may be nil.
func NewCommandHandler(store Store, listener shell.EventChangeListener, retryOptions ...shell.RetryOption) CommandHandler {
	return CommandHandler{store: store, listener: listener, now: time.Now, retryOptions: retryOptions}
}

func (h CommandHandler) WithClock(now func() time.Time) CommandHandler {
	h.now = now

	return h
}

func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	name := strings.TrimSpace(command.Name)
	if name == "" {
		err := shell.NewInputError("event name must not be blank")

		return shell.NewErrorResult("", shell.SingleAttempt(err)), err
	}

	ctx = schedulestore.WithStrongConsistency(ctx)

	var before, after *schedulestore.Event
	alreadyDeleting := false

	retryMetrics, err := shell.RetryOnConflict(
		ctx,
		func(ctx context.Context) error {
			record, err := h.store.Fetch(ctx, schedulestore.KindEvent, name)
			if err != nil {
				return err
			}

			existing := record.(*schedulestore.Event)
			if alreadyDeleting = existing.Metadata.IsDeleting(); alreadyDeleting {
				return nil
			}

			deletedAt := h.now().UTC()
			marked := existing.Clone()
			marked.Metadata.DeletionTimestamp = &deletedAt

			stored, err := h.store.Update(ctx, marked)
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

	if alreadyDeleting {
		return shell.NewIdempotentResult(name, retryMetrics), nil
	}

	result := shell.NewSuccessResult(name, retryMetrics)

	if h.listener == nil {
		return result, nil
	}

	if _, err = h.listener.HandleEventChange(ctx, before, after); err != nil {
		return result, errors.Join(shell.ErrEventChangeNotificationFailed, err)
	}

	return result, nil
}
