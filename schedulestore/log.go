package schedulestore

// Log is an immutable audit entry describing an operator action.
type Log struct {
	Metadata Metadata `json:"metadata"`
	Spec     LogSpec  `json:"spec"`
}

type LogSpec struct {
	ActionType   string         `json:"actionType"`
	Operator     string         `json:"operator"`
	ActionAt     string         `json:"actionAt"`
	CalendarName string         `json:"calendarName,omitempty"`
	EventName    string         `json:"eventName,omitempty"`
	EventTitle   string         `json:"eventTitle,omitempty"`
	Keyword      string         `json:"keyword,omitempty"`
	Summary      string         `json:"summary,omitempty"`
	Details      []ChangeDetail `json:"details,omitempty"`
}

// ChangeDetail describes the change of a single field.
type ChangeDetail struct {
	Field    string `json:"field,omitempty"`
	Label    string `json:"label,omitempty"`
	OldValue string `json:"oldValue,omitempty"`
	NewValue string `json:"newValue,omitempty"`
}

func (l *Log) Kind() Kind {
	return KindLog
}

func (l *Log) Meta() *Metadata {
	return &l.Metadata
}

func (l *Log) IndexValue(field FieldName) (string, bool) {
	switch field {
	case FieldLogActionType:
		return l.Spec.ActionType, true
	case FieldLogOperator:
		return l.Spec.Operator, true
	case FieldLogActionAt:
		return l.Spec.ActionAt, true
	default:
		return metadataIndexValue(&l.Metadata, field)
	}
}

func (l *Log) CloneRecord() Record {
	return l.Clone()
}

// Clone returns a deep copy of the log.
func (l *Log) Clone() *Log {
	cloned := *l
	cloned.Metadata = l.Metadata.clone()

	if l.Spec.Details != nil {
		cloned.Spec.Details = append([]ChangeDetail(nil), l.Spec.Details...)
	}

	return &cloned
}
