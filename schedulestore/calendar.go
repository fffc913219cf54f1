package schedulestore

// Calendar groups events and carries derived statistics about them in its Status.
type Calendar struct {
	Metadata Metadata        `json:"metadata"`
	Spec     CalendarSpec    `json:"spec"`
	Status   *CalendarStatus `json:"status,omitempty"`
}

type CalendarSpec struct {
	DisplayName       string `json:"displayName"`
	Slug              string `json:"slug,omitempty"`
	ThemeColor        string `json:"themeColor,omitempty"`
	Visible           bool   `json:"visible"`
	ShowCalendarTitle bool   `json:"showCalendarTitle"`
}

// CalendarStatus is derived from the calendar's events, absent range values are "".
type CalendarStatus struct {
	EventCount      int    `json:"eventCount"`
	RangeStartMonth string `json:"rangeStartMonth,omitempty"`
	RangeEndMonth   string `json:"rangeEndMonth,omitempty"`
	RangeEndDate    string `json:"rangeEndDate,omitempty"`
}

func (c *Calendar) Kind() Kind {
	return KindCalendar
}

func (c *Calendar) Meta() *Metadata {
	return &c.Metadata
}

func (c *Calendar) IndexValue(field FieldName) (string, bool) {
	if field == FieldCalendarDisplayName {
		return c.Spec.DisplayName, true
	}

	return metadataIndexValue(&c.Metadata, field)
}

func (c *Calendar) CloneRecord() Record {
	return c.Clone()
}

// Clone returns a deep copy of the calendar.
func (c *Calendar) Clone() *Calendar {
	cloned := *c
	cloned.Metadata = c.Metadata.clone()

	if c.Status != nil {
		status := *c.Status
		cloned.Status = &status
	}

	return &cloned
}

// StatusOrEmpty returns the status, initializing it when it is nil.
func (c *Calendar) StatusOrEmpty() *CalendarStatus {
	if c.Status == nil {
		c.Status = &CalendarStatus{}
	}

	return c.Status
}
