// Package listcalendars lists calendars page by page. It has no content filter, only pagination and sort.
package listcalendars
