package savecalendar

import (
	"context"
	"errors"
	"strings"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/shared/shell"
)

type Store interface {
	shell.FetchesRecords
	shell.CreatesRecords
	shell.UpdatesRecords
}

type CommandHandler struct {
	store        Store
	retryOptions []shell.RetryOption
}

func NewCommandHandler(store Store, retryOptions ...shell.RetryOption) CommandHandler {
	return CommandHandler{store: store, retryOptions: retryOptions}
}

// Handle creates the calendar if it does not exist, otherwise it replaces the spec and keeps the status.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	name := strings.TrimSpace(command.Name)
	spec := command.Spec
	spec.DisplayName = strings.TrimSpace(spec.DisplayName)
	spec.Slug = strings.TrimSpace(spec.Slug)
	spec.ThemeColor = strings.TrimSpace(spec.ThemeColor)

	var err error
	switch {
	case name == "":
		err = shell.NewInputError("calendar name must not be blank")
	case spec.DisplayName == "":
		err = shell.NewInputError("displayName must not be blank")
	}

	if err != nil {
		return shell.NewErrorResult(name, shell.SingleAttempt(err)), err
	}

	ctx = schedulestore.WithStrongConsistency(ctx)
	changed := false

	retryMetrics, err := shell.RetryOnConflict(
		ctx,
		func(ctx context.Context) error {
			record, err := h.store.Fetch(ctx, schedulestore.KindCalendar, name)
			if errors.Is(err, schedulestore.ErrRecordNotFound) {
				changed = true
				_, err = h.store.Create(ctx, &schedulestore.Calendar{
					Metadata: schedulestore.Metadata{Name: name},
					Spec:     spec,
				})

				return err
			}

			if err != nil {
				return err
			}

			calendar := record.(*schedulestore.Calendar)
			if changed = calendar.Spec != spec; !changed {
				return nil
			}

			calendar.Spec = spec
			_, err = h.store.Update(ctx, calendar)

			return err
		},
		h.retryOptions...,
	)

	switch {
	case err != nil:
		return shell.NewErrorResult(name, retryMetrics), err
	case !changed:
		return shell.NewIdempotentResult(name, retryMetrics), nil
	default:
		return shell.NewSuccessResult(name, retryMetrics), nil
	}
}
