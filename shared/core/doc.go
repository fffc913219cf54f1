// Package core contains the pure domain logic for schedule records:
// time-range overlap of events, keyword and date matching of audit logs,
// and the aggregation of calendar statistics.
//
// All functions are free of side effects and independent of the storage engine,
// the shell layer feeds them with records and persists what they compute.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
