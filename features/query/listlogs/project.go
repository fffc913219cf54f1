package listlogs

import (
	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/shared/core"
)

// Project keeps the live logs of the page that match the keyword and lie within the date window.
func Project(page schedulestore.ListResult[schedulestore.Record], query Query) schedulestore.ListResult[*schedulestore.Log] {
	logs := schedulestore.LiveRecordsOf[*schedulestore.Log](page.Items)

	kept := make([]*schedulestore.Log, 0, len(logs))
	for _, log := range logs {
		if core.KeywordMatches(log.Spec, query.Keyword) && core.DateMatches(log.Spec, query.FromDate, query.ToDate) {
			kept = append(kept, log)
		}
	}

	return schedulestore.ResultWithItems(page, kept)
}
