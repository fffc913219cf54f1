package listevents

import (
	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/shared/core"
)

// Project keeps the live events of the page that overlap [from, to].
// Total of the result is the number of kept events, page and size are taken from the store's page.
//
//	INCLUDES: events without deletion marker whose [startAt, effective end] touches the window
//	EXCLUDES: events without startAt, events ending before from, events starting after to
func Project(page schedulestore.ListResult[schedulestore.Record], from, to string) schedulestore.ListResult[*schedulestore.Event] {
	events := schedulestore.LiveRecordsOf[*schedulestore.Event](page.Items)

	kept := make([]*schedulestore.Event, 0, len(events))
	for _, event := range events {
		if core.Overlaps(event.Spec, from, to) {
			kept = append(kept, event)
		}
	}

	return schedulestore.ResultWithItems(page, kept)
}
