package core

import (
	"regexp"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
)

var dateKeyPattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)

const monthKeyLength = len("2006-01")

// CalendarStats are the aggregates derived from a calendar's events. Absent range values are "".
type CalendarStats struct {
	EventCount      int
	RangeStartMonth string
	RangeEndMonth   string
	RangeEndDate    string
}

// DateKey returns the leading "YYYY-MM-DD" of value, or "" if value does not start with a date.
func DateKey(value string) string {
	if len(value) < dateKeyLength {
		return ""
	}

	candidate := value[:dateKeyLength]
	if !dateKeyPattern.MatchString(candidate) {
		return ""
	}

	return candidate
}

// MonthKey returns the "YYYY-MM" of a date key, or "" for an absent date key.
func MonthKey(dateKey string) string {
	if dateKey == "" {
		return ""
	}

	return dateKey[:monthKeyLength]
}

// ComputeCalendarStats folds the events into CalendarStats.
//
// Nil events and events carrying a deletion marker are ignored. Events with unparseable dates are
// counted but do not contribute to the ranges. An event lacking one of its dates contributes the
// other one as both its start and its end. The result does not depend on the order of events.
func ComputeCalendarStats(events []*schedulestore.Event) CalendarStats {
	stats := CalendarStats{}

	for _, event := range events {
		if event == nil || event.Metadata.IsDeleting() {
			continue
		}

		stats.EventCount++

		startKey := DateKey(event.Spec.StartAt)
		endKey := DateKey(event.Spec.EndAt)

		effectiveStart := startKey
		if effectiveStart == "" {
			effectiveStart = endKey
		}

		effectiveEnd := endKey
		if effectiveEnd == "" {
			effectiveEnd = startKey
		}

		if startMonth := MonthKey(effectiveStart); startMonth != "" {
			if stats.RangeStartMonth == "" || startMonth < stats.RangeStartMonth {
				stats.RangeStartMonth = startMonth
			}
		}

		if endMonth := MonthKey(effectiveEnd); endMonth != "" {
			if stats.RangeEndMonth == "" || endMonth > stats.RangeEndMonth {
				stats.RangeEndMonth = endMonth
			}
		}

		if effectiveEnd != "" && (stats.RangeEndDate == "" || effectiveEnd > stats.RangeEndDate) {
			stats.RangeEndDate = effectiveEnd
		}
	}

	return stats
}

// MatchesStatus reports whether status already holds exactly these stats. A nil status matches nothing.
func (s CalendarStats) MatchesStatus(status *schedulestore.CalendarStatus) bool {
	if status == nil {
		return false
	}

	return status.EventCount == s.EventCount &&
		status.RangeStartMonth == s.RangeStartMonth &&
		status.RangeEndMonth == s.RangeEndMonth &&
		status.RangeEndDate == s.RangeEndDate
}

// ApplyTo writes the four stats fields onto status.
func (s CalendarStats) ApplyTo(status *schedulestore.CalendarStatus) {
	status.EventCount = s.EventCount
	status.RangeStartMonth = s.RangeStartMonth
	status.RangeEndMonth = s.RangeEndMonth
	status.RangeEndDate = s.RangeEndDate
}
