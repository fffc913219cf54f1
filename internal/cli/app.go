package cli

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/AntonStoeckl/schedulestore-go/features/command/refreshcalendarstats"
	"github.com/AntonStoeckl/schedulestore-go/schedulestore/oteladapters"
	"github.com/AntonStoeckl/schedulestore-go/shared/shell"
	"github.com/AntonStoeckl/schedulestore-go/shared/shell/config"
	"github.com/AntonStoeckl/schedulestore-go/shared/shell/observable"
)

const shutdownTimeout = 5 * time.Second

// app is the wiring of one command run: config, logger, store and the optional OpenTelemetry providers.
type app struct {
	opts      *RootOptions
	cfg       config.Config
	logger    *slog.Logger
	ctxLogger shell.ContextualLogger
	store     *config.Store
	providers *config.ObservabilityProviders
}

func openApp(ctx context.Context, opts *RootOptions) (*app, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "loading the config failed", err)
	}

	if opts.Verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := config.NewLogger(cfg.Log, opts.ErrOut)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "creating the logger failed", err)
	}

	a := &app{opts: opts, cfg: cfg, logger: logger, ctxLogger: logger}
	instrumentation := config.Instrumentation{ContextualLogger: logger}

	if cfg.Observability.Enabled {
		a.providers, err = config.NewObservabilityProviders(ctx, cfg.Observability)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "creating the observability providers failed", err)
		}

		// log records keep going to the configured handler, the bridge adds trace correlation
		a.ctxLogger = oteladapters.NewSlogBridgeLoggerWithHandler(logger.Handler())
		instrumentation.ContextualLogger = a.ctxLogger
		instrumentation.Metrics = a.providers.MetricsCollector()
		instrumentation.Tracing = a.providers.TracingCollector()
	}

	a.store, err = config.OpenStore(ctx, cfg.Store, instrumentation)
	if err != nil {
		a.shutdownProviders()
		return nil, WrapExitError(ExitCommandError, "opening the store failed", err)
	}

	return a, nil
}

func (a *app) Close() {
	a.store.Close()
	a.shutdownProviders()
}

func (a *app) shutdownProviders() {
	if a.providers == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.providers.Shutdown(ctx); err != nil {
		a.logger.Warn("shutting down the observability providers failed", shell.LogAttrError, err.Error())
	}
}

// withOperator attaches the --operator flag to ctx.
func (a *app) withOperator(ctx context.Context) context.Context {
	if a.opts.Operator == "" {
		return ctx
	}

	return shell.WithOperator(ctx, a.opts.Operator)
}

func (a *app) output() OutputFormatter {
	return newOutputFormatter(a.opts)
}

// wrapCommand instruments a command handler with the app's logger and, if enabled, metrics and tracing.
func wrapCommand[C shell.Command](a *app, core shell.CoreCommandHandler[C]) (shell.CoreCommandHandler[C], error) {
	opts := []observable.CommandOption[C]{observable.WithCommandContextualLogging[C](a.ctxLogger)}

	if a.providers != nil {
		opts = append(opts,
			observable.WithCommandMetrics[C](a.providers.MetricsCollector()),
			observable.WithCommandTracing[C](a.providers.TracingCollector()),
		)
	}

	return observable.NewCommandWrapper(core, opts...)
}

func wrapQuery[Q shell.Query, R any](a *app, core shell.CoreQueryHandler[Q, R]) (shell.CoreQueryHandler[Q, R], error) {
	opts := []observable.QueryOption[Q, R]{observable.WithQueryContextualLogging[Q, R](a.ctxLogger)}

	if a.providers != nil {
		opts = append(opts,
			observable.WithQueryMetrics[Q, R](a.providers.MetricsCollector()),
			observable.WithQueryTracing[Q, R](a.providers.TracingCollector()),
		)
	}

	return observable.NewQueryWrapper(core, opts...)
}

func (a *app) refreshHandler() (shell.CoreCommandHandler[refreshcalendarstats.Command], error) {
	return wrapCommand[refreshcalendarstats.Command](a, refreshcalendarstats.NewCommandHandler(a.store))
}

// eventChangeListener refreshes the affected calendars through the instrumented refresh handler.
func (a *app) eventChangeListener() (shell.EventChangeListener, error) {
	refresh, err := a.refreshHandler()
	if err != nil {
		return nil, err
	}

	return refreshcalendarstats.NewEventChangeHandler(refresh), nil
}

// run opens the app, calls fn and closes the app again.
func run(ctx context.Context, opts *RootOptions, fn func(ctx context.Context, a *app) error) error {
	a, err := openApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	err = fn(a.withOperator(ctx), a)

	var exitErr *ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return WrapExitError(ExitFailure, "command failed", err)
	}

	return err
}
