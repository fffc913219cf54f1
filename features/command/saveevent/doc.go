// Package saveevent creates or updates a schedule event.
//
// A command without a name creates an event with a generated "schedule-event-" name. A command with a
// name updates that event, retrying on write conflicts. After a write the EventChangeListener is
// notified, which keeps the owning calendars' stats consistent.
package saveevent
