package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/shared/core"
)

func Test_KeywordMatches(t *testing.T) {
	spec := schedulestore.LogSpec{
		ActionType: "publish",
		Operator:   "Alice",
		EventTitle: "Sommerfest Straße",
		Summary:    "moved to March",
		Keyword:    "Release",
	}

	tests := []struct {
		name     string
		keyword  string
		expected bool
	}{
		{"blank_keyword_matches", "  ", true},
		{"case_insensitive_action_type", "PUB", true},
		{"operator", "alice", true},
		{"event_title_unicode", "STRASSE", false},
		{"event_title_unicode_exact_letters", "STRAßE", true},
		{"summary", "March", true},
		{"keyword_field", "elea", true},
		{"trimmed_keyword", "  march  ", true},
		{"no_field_contains_it", "delete", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, core.KeywordMatches(spec, tt.keyword))
		})
	}
}

func Test_KeywordMatches_IgnoresAbsentFields(t *testing.T) {
	assert.False(t, core.KeywordMatches(schedulestore.LogSpec{ActionType: "create"}, "summary"))
}

func Test_DateMatches(t *testing.T) {
	tests := []struct {
		name     string
		actionAt string
		fromDate string
		toDate   string
		expected bool
	}{
		{"same_day_bounds", "2024-03-10T08:00:00Z", "2024-03-10", "2024-03-10", true},
		{"before_from", "2024-03-09T23:59:59Z", "2024-03-10", "", false},
		{"after_to", "2024-03-11T00:00:00Z", "", "2024-03-10", false},
		{"open_bounds", "2024-03-11T00:00:00Z", "", "", true},
		{"short_action_at_with_bound", "bad", "2024-03-10", "", false},
		{"short_action_at_without_bounds", "bad", "", "", true},
		{"empty_action_at_without_bounds", "", " ", "", true},
		{"date_only_action_at", "2024-03-10", "2024-03-01", "2024-03-31", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := schedulestore.LogSpec{ActionAt: tt.actionAt}

			assert.Equal(t, tt.expected, core.DateMatches(spec, tt.fromDate, tt.toDate))
		})
	}
}
