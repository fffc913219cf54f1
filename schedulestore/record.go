package schedulestore

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the type of record.
type Kind string

const (
	KindCalendar Kind = "ScheduleCalendar"
	KindEvent    Kind = "ScheduleEvent"
	KindLog      Kind = "ScheduleLog"
)

// Kinds returns all known record kinds.
func Kinds() []Kind {
	return []Kind{KindCalendar, KindEvent, KindLog}
}

// Valid reports whether k is a known record kind.
func (k Kind) Valid() bool {
	switch k {
	case KindCalendar, KindEvent, KindLog:
		return true
	default:
		return false
	}
}

// FieldName names an index field of a record, e.g. "spec.calendarName".
type FieldName = string

const (
	FieldMetadataName        FieldName = "metadata.name"
	FieldCreationTimestamp   FieldName = "metadata.creationTimestamp"
	FieldCalendarDisplayName FieldName = "spec.displayName"
	FieldEventCalendarName   FieldName = "spec.calendarName"
	FieldEventStartAt        FieldName = "spec.startAt"
	FieldEventStatus         FieldName = "spec.status"
	FieldEventRelatedPost    FieldName = "spec.relatedPostName"
	FieldLogActionType       FieldName = "spec.actionType"
	FieldLogOperator         FieldName = "spec.operator"
	FieldLogActionAt         FieldName = "spec.actionAt"
)

// IndexedFields returns the fields of the given kind that can be used in filters and sorts.
func IndexedFields(kind Kind) []FieldName {
	common := []FieldName{FieldMetadataName, FieldCreationTimestamp}

	switch kind {
	case KindCalendar:
		return append(common, FieldCalendarDisplayName)
	case KindEvent:
		return append(common, FieldEventCalendarName, FieldEventStartAt, FieldEventStatus, FieldEventRelatedPost)
	case KindLog:
		return append(common, FieldLogActionType, FieldLogOperator, FieldLogActionAt)
	default:
		return nil
	}
}

// Metadata is shared by all records.
type Metadata struct {
	Name              string     `json:"name"`
	GenerateName      string     `json:"generateName,omitempty"`
	Version           int64      `json:"version"`
	CreationTimestamp time.Time  `json:"creationTimestamp"`
	DeletionTimestamp *time.Time `json:"deletionTimestamp,omitempty"`
}

// IsDeleting reports whether the record carries a deletion marker.
func (m Metadata) IsDeleting() bool {
	return m.DeletionTimestamp != nil
}

func (m Metadata) clone() Metadata {
	if m.DeletionTimestamp != nil {
		deletedAt := *m.DeletionTimestamp
		m.DeletionTimestamp = &deletedAt
	}

	return m
}

// Record is the common interface of all stored record types.
type Record interface {
	Kind() Kind
	Meta() *Metadata

	// IndexValue returns the value of an index field and whether the field is indexed for this kind.
	// metadata.creationTimestamp is returned in RFC 3339 format with nanoseconds.
	IndexValue(field FieldName) (string, bool)

	// CloneRecord returns a deep copy.
	CloneRecord() Record
}

// Records is a slice of Record.
type Records = []Record

// NewRecord returns an empty record of the given kind, e.g. as a decoding target.
func NewRecord(kind Kind) (Record, error) {
	switch kind {
	case KindCalendar:
		return &Calendar{}, nil
	case KindEvent:
		return &Event{}, nil
	case KindLog:
		return &Log{}, nil
	default:
		return nil, ErrUnknownRecordKind
	}
}

// LiveRecordsOf returns the records of type T which do not carry a deletion marker, keeping their order.
func LiveRecordsOf[T Record](records Records) []T {
	typed := make([]T, 0, len(records))

	for _, r := range records {
		t, ok := r.(T)
		if !ok || r.Meta().IsDeleting() {
			continue
		}

		typed = append(typed, t)
	}

	return typed
}

// GenerateName appends a random suffix to prefix.
func GenerateName(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")

	return prefix + suffix[:12]
}

func metadataIndexValue(m *Metadata, field FieldName) (string, bool) {
	switch field {
	case FieldMetadataName:
		return m.Name, true
	case FieldCreationTimestamp:
		return m.CreationTimestamp.UTC().Format(time.RFC3339Nano), true
	default:
		return "", false
	}
}
