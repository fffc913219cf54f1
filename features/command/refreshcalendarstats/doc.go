// Package refreshcalendarstats keeps a calendar's derived status consistent with its events.
//
// The command handler recomputes the statistics of one calendar and writes them with optimistic
// concurrency, retrying on write conflicts:
//
//	Fetch calendar -> ListAll events -> core.ComputeCalendarStats -> Update (only if changed)
//
// HandleEventChange is the callback invoked after an event mutation. Reconciler recomputes all
// calendars, on demand or on a cron schedule, to bound the staleness left by failed refreshes.
package refreshcalendarstats
