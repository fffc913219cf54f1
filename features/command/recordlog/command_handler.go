package recordlog

import (
	"context"
	"time"

	"github.com/AntonStoeckl/schedulestore-go/shared/shell"
)

// CommandHandler executes Build -> Create. Logs get generated names, so there is nothing to retry.
type CommandHandler struct {
	store shell.CreatesRecords
	now   func() time.Time
}

func NewCommandHandler(store shell.CreatesRecords) CommandHandler {
	return CommandHandler{store: store, now: time.Now}
}

// WithClock returns a copy of the handler that stamps actionAt with now.
func (h CommandHandler) WithClock(now func() time.Time) CommandHandler {
	h.now = now

	return h
}

func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	log, err := BuildLog(command, shell.OperatorFrom(ctx), h.now())
	if err != nil {
		return shell.NewErrorResult("", shell.SingleAttempt(err)), err
	}

	created, err := h.store.Create(ctx, log)
	if err != nil {
		return shell.NewErrorResult("", shell.SingleAttempt(err)), err
	}

	return shell.NewSuccessResult(created.Meta().Name, shell.SingleAttempt(nil)), nil
}
