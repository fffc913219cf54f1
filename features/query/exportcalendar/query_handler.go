package exportcalendar

import (
	"context"
	"errors"
	"time"

	"github.com/AntonStoeckl/schedulestore-go/features/query/listevents"
	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/shared/core"
	"github.com/AntonStoeckl/schedulestore-go/shared/shell"
)

var ErrNotACalendar = errors.New("record is not a calendar")

type Store interface {
	shell.FetchesRecords
	shell.ListsRecords
}

type QueryHandler struct {
	store Store
	now   func() time.Time
}

func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{store: store, now: time.Now}
}

// WithClock returns a copy of the handler that stamps the export with now.
func (h QueryHandler) WithClock(now func() time.Time) QueryHandler {
	h.now = now

	return h
}

// Handle executes Fetch -> ListAll -> filter -> Render.
func (h QueryHandler) Handle(ctx context.Context, query Query) (Export, error) {
	if err := query.Validate(); err != nil {
		return Export{}, err
	}

	ctx = schedulestore.WithEventualConsistency(ctx)

	record, err := h.store.Fetch(ctx, schedulestore.KindCalendar, query.Calendar)
	if err != nil {
		return Export{}, err
	}

	calendar, ok := record.(*schedulestore.Calendar)
	if !ok {
		return Export{}, ErrNotACalendar
	}

	if calendar.Metadata.IsDeleting() {
		return Export{}, schedulestore.ErrRecordNotFound
	}

	records, err := h.store.ListAll(
		ctx,
		schedulestore.KindEvent,
		listevents.BuildFilter(query.Calendar, ""),
		schedulestore.Sort{{Field: schedulestore.FieldEventStartAt}, {Field: schedulestore.FieldMetadataName}},
	)
	if err != nil {
		return Export{}, err
	}

	events := make([]*schedulestore.Event, 0, len(records))
	for _, event := range schedulestore.LiveRecordsOf[*schedulestore.Event](records) {
		if core.Overlaps(event.Spec, query.From, query.To) {
			events = append(events, event)
		}
	}

	return Render(calendar, events, h.now()), nil
}
