package refreshcalendarstats

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/shared/shell"
)

const (
	logMsgReconcileCompleted = "reconcile: completed"
	logMsgReconcileFailed    = "reconcile: failed"
	logMsgCalendarFailed     = "reconcile: refreshing calendar failed"
	logAttrCalendars         = "calendars"
	logAttrUpdated           = "updated"
	logAttrFailed            = "failed"
)

var (
	ErrReconcilerAlreadyStarted = errors.New("reconciler is already started")
	ErrInvalidCronSpec          = errors.New("invalid cron spec")
)

// ReconcileReport summarizes one RefreshAll run.
type ReconcileReport struct {
	Calendars int
	Updated   int
	Unchanged int
	Failed    int
}

// Reconciler refreshes the stats of all live calendars.
type Reconciler struct {
	store            shell.ListsRecords
	refresh          shell.CoreCommandHandler[Command]
	logger           shell.Logger
	contextualLogger shell.ContextualLogger
	timeout          time.Duration

	mu        sync.Mutex
	scheduler *cron.Cron
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

func WithReconcileLogger(logger shell.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

func WithReconcileContextualLogger(logger shell.ContextualLogger) ReconcilerOption {
	return func(r *Reconciler) {
		r.contextualLogger = logger
	}
}

// WithRunTimeout bounds each scheduled run. Zero means no bound.
func WithRunTimeout(timeout time.Duration) ReconcilerOption {
	return func(r *Reconciler) {
		r.timeout = timeout
	}
}

func NewReconciler(
	store shell.ListsRecords,
	refresh shell.CoreCommandHandler[Command],
	opts ...ReconcilerOption,
) *Reconciler {

	r := &Reconciler{store: store, refresh: refresh}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// RefreshAll refreshes every live calendar one after another.
// A failing calendar does not stop the run, the errors are joined.
func (r *Reconciler) RefreshAll(ctx context.Context) (ReconcileReport, error) {
	records, err := r.store.ListAll(
		schedulestore.WithStrongConsistency(ctx),
		schedulestore.KindCalendar,
		schedulestore.BuildFilter().OnlyLive().Finalize(),
		schedulestore.ParseSort("metadata.name,asc"),
	)
	if err != nil {
		return ReconcileReport{}, err
	}

	calendars := schedulestore.LiveRecordsOf[*schedulestore.Calendar](records)
	report := ReconcileReport{Calendars: len(calendars)}

	var errs []error
	for _, calendar := range calendars {
		result, err := r.refresh.Handle(ctx, BuildCommand(calendar.Metadata.Name))

		switch {
		case err != nil:
			report.Failed++
			errs = append(errs, err)
			r.log(ctx, true, logMsgCalendarFailed,
				shell.LogAttrCalendarName, calendar.Metadata.Name, shell.LogAttrError, err.Error())
		case result.Idempotent:
			report.Unchanged++
		default:
			report.Updated++
		}

		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
	}

	return report, errors.Join(errs...)
}

// Start runs RefreshAll on the cron schedule, e.g. "@every 10m" or "*/15 * * * *".
func (r *Reconciler) Start(cronSpec string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.scheduler != nil {
		return ErrReconcilerAlreadyStarted
	}

	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	if _, err := scheduler.AddFunc(cronSpec, r.runScheduled); err != nil {
		return errors.Join(ErrInvalidCronSpec, err)
	}

	scheduler.Start()
	r.scheduler = scheduler

	return nil
}

// Stop stops the schedule and waits for a running RefreshAll to complete.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	scheduler := r.scheduler
	r.scheduler = nil
	r.mu.Unlock()

	if scheduler == nil {
		return
	}

	<-scheduler.Stop().Done()
}

func (r *Reconciler) runScheduled() {
	ctx := context.Background()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	report, err := r.RefreshAll(ctx)
	if err != nil {
		r.log(ctx, true, logMsgReconcileFailed,
			shell.LogAttrError, err.Error(), logAttrCalendars, report.Calendars, logAttrFailed, report.Failed)

		return
	}

	r.log(ctx, false, logMsgReconcileCompleted,
		logAttrCalendars, report.Calendars, logAttrUpdated, report.Updated)
}

func (r *Reconciler) log(ctx context.Context, isError bool, msg string, args ...any) {
	switch {
	case r.contextualLogger != nil && isError:
		r.contextualLogger.ErrorContext(ctx, msg, args...)
	case r.contextualLogger != nil:
		r.contextualLogger.InfoContext(ctx, msg, args...)
	case r.logger != nil && isError:
		r.logger.Error(msg, args...)
	case r.logger != nil:
		r.logger.Info(msg, args...)
	}
}
