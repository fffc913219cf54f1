// Package listevents lists events of a page, optionally restricted to a calendar, a status and a time window.
//
// Calendar and status are pushed to the store as equality filters. The [from, to] window has overlap
// semantics and is applied to the page returned by the store, see Project.
package listevents
