package schedulestore

import (
	"slices"
	"strings"
)

type FilterValString = string

/***** Filter *****/

// Filter is a conjunction of equality predicates on index fields. An empty Filter matches every record.
// A live-only Filter additionally excludes records which carry a deletion marker.
type Filter struct {
	predicates []FilterPredicate
	liveOnly   bool
}

func (f Filter) Predicates() []FilterPredicate {
	return f.predicates
}

func (f Filter) IsEmpty() bool {
	return len(f.predicates) == 0 && !f.liveOnly
}

func (f Filter) IsLiveOnly() bool {
	return f.liveOnly
}

// Matches reports whether all predicates hold for the record.
// A predicate on a field that is not indexed for the record's kind never holds.
func (f Filter) Matches(record Record) bool {
	if f.liveOnly && record.Meta().IsDeleting() {
		return false
	}

	for _, p := range f.predicates {
		val, ok := record.IndexValue(p.field)
		if !ok || val != p.val {
			return false
		}
	}

	return true
}

/***** FilterPredicate *****/

type FilterPredicate struct {
	field FieldName
	val   FilterValString
}

func P(field FieldName, val FilterValString) FilterPredicate {
	return FilterPredicate{field: field, val: val}
}

func (fp FilterPredicate) Field() FieldName {
	return fp.field
}

func (fp FilterPredicate) Val() FilterValString {
	return fp.val
}

/***** FilterBuilder *****/

// FilterBuilder builds a generic record filter to be used by the storage engines, which translate it
// into their own query language or evaluate it in memory.
// It only supports conjunctive equality predicates:
//
//   - empty filter
//   - (predicate)
//   - (predicate AND predicate...)
type FilterBuilder interface {
	// AndEqual adds the predicate field = val.
	//
	// It sanitizes the input:
	//	- trimming surrounding whitespace from val
	//	- ignoring the predicate if field or the trimmed val is ""
	AndEqual(field FieldName, val FilterValString) FilterBuilder

	// AllOf adds one or multiple FilterPredicate(s) with the same sanitizing as AndEqual.
	AllOf(predicate FilterPredicate, predicates ...FilterPredicate) FilterBuilder

	// OnlyLive excludes records which carry a deletion marker.
	OnlyLive() FilterBuilder

	// Finalize sorts the predicates, removes duplicates and returns the Filter.
	Finalize() Filter
}

// filterBuilder implements FilterBuilder
type filterBuilder struct {
	predicates []FilterPredicate
	liveOnly   bool
}

// BuildFilter creates a FilterBuilder which must eventually be finalized with Finalize().
func BuildFilter() FilterBuilder {
	return filterBuilder{}
}

// MatchingAnyRecord directly creates an empty Filter.
func MatchingAnyRecord() Filter {
	return Filter{}
}

func (fb filterBuilder) AndEqual(field FieldName, val FilterValString) FilterBuilder {
	return fb.AllOf(P(field, val))
}

func (fb filterBuilder) AllOf(predicate FilterPredicate, predicates ...FilterPredicate) FilterBuilder {
	added := append([]FilterPredicate{predicate}, predicates...)

	for i := range added {
		added[i].val = strings.TrimSpace(added[i].val)
	}

	added = slices.DeleteFunc(added, func(p FilterPredicate) bool { return p.field == "" || p.val == "" })

	fb.predicates = append(slices.Clone(fb.predicates), added...)

	return fb
}

func (fb filterBuilder) OnlyLive() FilterBuilder {
	fb.liveOnly = true

	return fb
}

func (fb filterBuilder) Finalize() Filter {
	predicates := slices.Clone(fb.predicates)

	slices.SortFunc(
		predicates,
		func(a, b FilterPredicate) int {
			if c := strings.Compare(a.field, b.field); c != 0 {
				return c
			}

			return strings.Compare(a.val, b.val)
		})

	predicates = slices.Compact(predicates)
	predicates = slices.Clip(predicates)

	return Filter{predicates: predicates, liveOnly: fb.liveOnly}
}
