// Package helper provides test doubles shared by the schedule store tests:
// spies for the observability interfaces and a RecordStore decorator for
// injecting write conflicts.
package helper
