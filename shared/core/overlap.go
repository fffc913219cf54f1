package core

import (
	"strings"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
)

// EffectiveEndAt is endAt, or startAt when endAt is blank.
func EffectiveEndAt(spec schedulestore.EventSpec) string {
	if isBlank(spec.EndAt) {
		return spec.StartAt
	}

	return spec.EndAt
}

// Overlaps reports whether the event's span touches the closed window [from, to].
// Blank bounds are open. Values are compared lexicographically, which orders ISO-8601
// values written in the same format chronologically.
// An event without startAt never overlaps.
func Overlaps(spec schedulestore.EventSpec, from, to string) bool {
	if isBlank(spec.StartAt) {
		return false
	}

	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)

	if from != "" && EffectiveEndAt(spec) < from {
		return false
	}

	if to != "" && spec.StartAt > to {
		return false
	}

	return true
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
