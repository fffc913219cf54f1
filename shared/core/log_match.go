package core

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
)

const dateKeyLength = len("2006-01-02")

// KeywordMatches reports whether the trimmed keyword is a case-insensitive substring of any of
// actionType, operator, eventTitle, summary or keyword. A blank keyword always matches.
func KeywordMatches(spec schedulestore.LogSpec, keyword string) bool {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return true
	}

	lower := cases.Lower(language.Und)
	needle := lower.String(keyword)

	for _, candidate := range []string{spec.ActionType, spec.Operator, spec.EventTitle, spec.Summary, spec.Keyword} {
		if candidate == "" {
			continue
		}

		if strings.Contains(lower.String(candidate), needle) {
			return true
		}
	}

	return false
}

// DateMatches reports whether the date part (the first 10 characters) of actionAt lies within
// [fromDate, toDate]. Blank bounds are open. If actionAt is shorter than a date, the log only matches
// when both bounds are blank.
func DateMatches(spec schedulestore.LogSpec, fromDate, toDate string) bool {
	fromDate = strings.TrimSpace(fromDate)
	toDate = strings.TrimSpace(toDate)

	if fromDate == "" && toDate == "" {
		return true
	}

	if len(spec.ActionAt) < dateKeyLength {
		return false
	}

	dateKey := spec.ActionAt[:dateKeyLength]

	if fromDate != "" && dateKey < fromDate {
		return false
	}

	if toDate != "" && dateKey > toDate {
		return false
	}

	return true
}
