package saveevent

import (
	"reflect"
	"strings"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/shared/shell"
)

// GenerateNamePrefix is the prefix of generated event names.
const GenerateNamePrefix = "schedule-event-"

// NormalizeSpec trims the text values, defaults the status and validates the result.
//
// calendarName, title and startAt are required. forceHighlight and forceHideHighlight are exclusive.
// A related post without a name is dropped.
func NormalizeSpec(spec schedulestore.EventSpec) (schedulestore.EventSpec, error) {
	spec.CalendarName = strings.TrimSpace(spec.CalendarName)
	spec.Title = strings.TrimSpace(spec.Title)
	spec.StartAt = strings.TrimSpace(spec.StartAt)
	spec.EndAt = strings.TrimSpace(spec.EndAt)
	spec.Timezone = strings.TrimSpace(spec.Timezone)
	spec.Summary = strings.TrimSpace(spec.Summary)
	spec.Status = strings.TrimSpace(spec.Status)

	switch {
	case spec.CalendarName == "":
		return spec, shell.NewInputError("calendarName must not be blank")
	case spec.Title == "":
		return spec, shell.NewInputError("title must not be blank")
	case spec.StartAt == "":
		return spec, shell.NewInputError("startAt must not be blank")
	case spec.ForceHighlight && spec.ForceHideHighlight:
		return spec, shell.NewInputError("forceHighlight and forceHideHighlight are mutually exclusive")
	}

	if spec.Status == "" {
		spec.Status = schedulestore.EventStatusScheduled
	}

	if spec.RelatedPost != nil {
		post := *spec.RelatedPost
		post.Name = strings.TrimSpace(post.Name)
		post.Title = strings.TrimSpace(post.Title)
		post.Permalink = strings.TrimSpace(post.Permalink)

		spec.RelatedPost = &post
		if post.Name == "" {
			spec.RelatedPost = nil
		}
	}

	return spec, nil
}

// BuildNewEvent returns the event to create from a normalized spec.
func BuildNewEvent(spec schedulestore.EventSpec) *schedulestore.Event {
	return &schedulestore.Event{
		Metadata: schedulestore.Metadata{GenerateName: GenerateNamePrefix},
		Spec:     spec,
	}
}

// ApplySpec returns the updated copy of existing, and false if the spec is already stored.
func ApplySpec(existing *schedulestore.Event, spec schedulestore.EventSpec) (*schedulestore.Event, bool) {
	if reflect.DeepEqual(existing.Spec, spec) {
		return existing, false
	}

	updated := existing.Clone()
	updated.Spec = spec

	return updated, true
}
