// Package savecalendar creates a calendar or replaces its spec. The derived status is never written here.
package savecalendar
