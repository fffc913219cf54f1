// Package schedulestore provides the core abstractions and types for storing
// calendars, calendar events and operator audit logs as versioned records.
//
// This package defines the record types, the RecordStore interface implemented
// by the storage engines, filters, sorting and pagination, and the common error
// definitions shared by all engines.
//
// Records can be filtered by conjunctive equality predicates on their index fields:
//   - Calendars: spec.displayName
//   - Events: spec.calendarName, spec.startAt, spec.status, spec.relatedPostName
//   - Logs: spec.actionType, spec.operator, spec.actionAt
//
// Every record also exposes metadata.name and metadata.creationTimestamp for filtering and sorting.
//
// Key types:
//   - Record: common interface of Calendar, Event and Log
//   - Filter: conjunctive equality criteria built with BuildFilter
//   - PageRequest and ListResult: pagination input and output
//   - RecordStore: the storage contract
//
// Common usage pattern:
//
//	filter := BuildFilter().
//		AndEqual(FieldEventCalendarName, calendarName).
//		AndEqual(FieldEventStatus, status).
//		Finalize()
//
//	page, err := store.ListPage(ctx, KindEvent, filter, BuildPageRequest(1, 20, DefaultSort()))
//	if err != nil {
//		// handle error
//	}
//
//	events := LiveRecordsOf[*Event](page.Items)
package schedulestore
