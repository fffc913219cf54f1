// Package deleteevent marks an event as deleted and refreshes the stats of its calendar.
package deleteevent
