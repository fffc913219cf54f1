package exportcalendar

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
)

const productID = "-//schedulestore//schedulectl//EN"

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

const dateLayout = "2006-01-02"

// Render builds the iCalendar document. It is a pure function, stamp becomes the DTSTAMP of all events.
func Render(calendar *schedulestore.Calendar, events []*schedulestore.Event, stamp time.Time) Export {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(calendar.Spec.DisplayName)

	export := Export{CalendarName: calendar.Metadata.Name}

	for _, event := range events {
		if !addEvent(cal, event, stamp) {
			export.Skipped = append(export.Skipped, event.Metadata.Name)
			continue
		}

		export.EventCount++
	}

	export.ICS = cal.Serialize()

	return export
}

func addEvent(cal *ical.Calendar, event *schedulestore.Event, stamp time.Time) bool {
	spec := event.Spec
	location := locationOf(spec.Timezone)

	start, startIsDate, ok := parseTime(spec.StartAt, location)
	if !ok {
		return false
	}

	end, endIsDate, hasEnd := parseTime(spec.EndAt, location)

	vevent := cal.AddEvent(event.Metadata.Name + "@schedulestore")
	vevent.SetDtStampTime(stamp.UTC())
	vevent.SetSummary(spec.Title)

	if spec.Summary != "" {
		vevent.SetDescription(spec.Summary)
	}

	if spec.RelatedPost != nil && spec.RelatedPost.Permalink != "" {
		vevent.SetURL(spec.RelatedPost.Permalink)
	}

	if spec.Status == schedulestore.EventStatusCancelled {
		vevent.SetStatus(ical.ObjectStatusCancelled)
	} else {
		vevent.SetStatus(ical.ObjectStatusConfirmed)
	}

	if spec.AllDay || startIsDate {
		vevent.SetAllDayStartAt(start)

		// DTEND of an all-day event is exclusive.
		allDayEnd := start
		if hasEnd && (endIsDate || spec.AllDay) && !end.Before(start) {
			allDayEnd = end
		}
		vevent.SetAllDayEndAt(allDayEnd.AddDate(0, 0, 1))

		return true
	}

	vevent.SetStartAt(start.UTC())

	if hasEnd && !end.Before(start) {
		vevent.SetEndAt(end.UTC())
	} else {
		vevent.SetEndAt(start.UTC())
	}

	return true
}

// parseTime accepts RFC 3339 values, local date-times in the location and plain dates.
func parseTime(value string, location *time.Location) (time.Time, bool, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false, false
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, location); err == nil {
			return t, false, true
		}
	}

	if t, err := time.ParseInLocation(dateLayout, value, location); err == nil {
		return t, true, true
	}

	return time.Time{}, false, false
}

func locationOf(timezone string) *time.Location {
	if timezone == "" {
		return time.UTC
	}

	location, err := time.LoadLocation(timezone)
	if err != nil {
		return time.UTC
	}

	return location
}
