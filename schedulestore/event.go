package schedulestore

// Event is a calendar entry, its time values are ISO-8601 strings compared lexicographically.
type Event struct {
	Metadata Metadata  `json:"metadata"`
	Spec     EventSpec `json:"spec"`
}

type EventSpec struct {
	CalendarName       string       `json:"calendarName"`
	Title              string       `json:"title"`
	StartAt            string       `json:"startAt"`
	EndAt              string       `json:"endAt,omitempty"`
	AllDay             bool         `json:"allDay"`
	Timezone           string       `json:"timezone,omitempty"`
	Summary            string       `json:"summary,omitempty"`
	Status             string       `json:"status,omitempty"`
	RelatedPost        *RelatedPost `json:"relatedPost,omitempty"`
	ForceHighlight     bool         `json:"forceHighlight"`
	ForceHideHighlight bool         `json:"forceHideHighlight"`
}

// RelatedPost is a snapshot of the post an event refers to.
type RelatedPost struct {
	Name      string `json:"name"`
	Title     string `json:"title,omitempty"`
	Permalink string `json:"permalink,omitempty"`
	Pinned    bool   `json:"pinned"`
}

// Known event status values.
const (
	EventStatusScheduled = "scheduled"
	EventStatusCancelled = "cancelled"
)

func (e *Event) Kind() Kind {
	return KindEvent
}

func (e *Event) Meta() *Metadata {
	return &e.Metadata
}

func (e *Event) IndexValue(field FieldName) (string, bool) {
	switch field {
	case FieldEventCalendarName:
		return e.Spec.CalendarName, true
	case FieldEventStartAt:
		return e.Spec.StartAt, true
	case FieldEventStatus:
		return e.Spec.Status, true
	case FieldEventRelatedPost:
		if e.Spec.RelatedPost == nil {
			return "", true
		}

		return e.Spec.RelatedPost.Name, true
	default:
		return metadataIndexValue(&e.Metadata, field)
	}
}

func (e *Event) CloneRecord() Record {
	return e.Clone()
}

// Clone returns a deep copy of the event.
func (e *Event) Clone() *Event {
	cloned := *e
	cloned.Metadata = e.Metadata.clone()

	if e.Spec.RelatedPost != nil {
		post := *e.Spec.RelatedPost
		cloned.Spec.RelatedPost = &post
	}

	return &cloned
}
