// Package observable decorates feature handlers with metrics, tracing and logging.
//
// The wrappers are applied at wiring time, so the handlers in features/ stay free of
// observability code and can be tested without it:
//
//	coreHandler := refreshcalendarstats.NewCommandHandler(store)
//
//	handler, err := observable.NewCommandWrapper[refreshcalendarstats.Command](
//		coreHandler,
//		observable.WithCommandMetrics[refreshcalendarstats.Command](metricsCollector),
//		observable.WithCommandTracing[refreshcalendarstats.Command](tracingCollector),
//		observable.WithCommandContextualLogging[refreshcalendarstats.Command](contextualLogger),
//	)
//
//	result, err := handler.Handle(ctx, refreshcalendarstats.BuildCommand("team"))
//
// Each concern is optional. A wrapper without options only delegates.
package observable
