// Package exportcalendar renders the live events of a calendar as an iCalendar (RFC 5545) document.
//
// Events are exported when they overlap the optional [from, to] window. Cancelled events are kept and
// carry STATUS:CANCELLED, so subscribed clients remove them. Events whose startAt cannot be parsed
// are reported in Export.Skipped instead of failing the export.
package exportcalendar
