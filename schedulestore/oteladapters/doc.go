// Package oteladapters implements the dependency-free observability interfaces of schedulestore
// (Logger, ContextualLogger, MetricsCollector, TracingCollector) on top of OpenTelemetry.
//
// Usage:
//
//	store, err := sqlengine.NewRecordStoreFromPGXPool(
//		pool,
//		sqlengine.WithContextualLogger(oteladapters.NewSlogBridgeLogger("schedulestore")),
//		sqlengine.WithMetrics(oteladapters.NewMetricsCollector(otel.Meter("schedulestore"))),
//		sqlengine.WithTracing(oteladapters.NewTracingCollector(otel.Tracer("schedulestore"))),
//	)
package oteladapters
