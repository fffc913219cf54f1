// Package shell provides the infrastructure shared by the command and query handlers
// of the schedule store: optimistic concurrency retries, handler results, input
// validation errors, operator identity propagation and observability helpers.
//
// This package implements the "imperative shell" pattern around the pure functions of
// the core package. Handlers read records from a schedulestore.RecordStore, let the core
// compute, and persist the outcome.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'infrastructure' layer.
package shell
