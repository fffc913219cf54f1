package schedulestore

import (
	"fmt"
	"slices"
	"strings"
)

/***** Sort *****/

type SortOrder struct {
	Field      FieldName
	Descending bool
}

// Sort is an ordered list of sort orders, earlier orders take precedence.
type Sort []SortOrder

// DefaultSort orders by creation time, newest first, then by name.
func DefaultSort() Sort {
	return Sort{
		{Field: FieldCreationTimestamp, Descending: true},
		{Field: FieldMetadataName},
	}
}

// ParseSort parses sort parameters of the form "field" or "field,asc|desc". Blank parameters are ignored.
func ParseSort(params ...string) Sort {
	sort := Sort{}

	for _, param := range params {
		field, direction, _ := strings.Cut(param, ",")
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		sort = append(sort, SortOrder{
			Field:      field,
			Descending: strings.EqualFold(strings.TrimSpace(direction), "desc"),
		})
	}

	return sort
}

// Validate fails with ErrUnsupportedSortField if a field is not indexed for the kind.
func (s Sort) Validate(kind Kind) error {
	indexed := IndexedFields(kind)

	for _, order := range s {
		if !slices.Contains(indexed, order.Field) {
			return fmt.Errorf("%w: %q for kind %s", ErrUnsupportedSortField, order.Field, kind)
		}
	}

	return nil
}

// Compare compares two records by the sort orders.
func (s Sort) Compare(a, b Record) int {
	for _, order := range s {
		c := compareField(a, b, order.Field)
		if order.Descending {
			c = -c
		}

		if c != 0 {
			return c
		}
	}

	return 0
}

func compareField(a, b Record, field FieldName) int {
	if field == FieldCreationTimestamp {
		return a.Meta().CreationTimestamp.Compare(b.Meta().CreationTimestamp)
	}

	aVal, _ := a.IndexValue(field)
	bVal, _ := b.IndexValue(field)

	return strings.Compare(aVal, bVal)
}

// SortRecords sorts the records in place, keeping the original order of equal records.
func SortRecords(records Records, sort Sort) {
	if len(sort) == 0 {
		return
	}

	slices.SortStableFunc(records, sort.Compare)
}

/***** PageRequest *****/

// PageRequest selects a 1-based page of Size records. A Size <= 0 requests all records.
type PageRequest struct {
	Page int
	Size int
	Sort Sort
}

// BuildPageRequest normalizes the input: a page < 1 becomes 1, a size <= 0 makes the request unpaged
// and an empty sort becomes DefaultSort.
func BuildPageRequest(page, size int, sort Sort) PageRequest {
	if len(sort) == 0 {
		sort = DefaultSort()
	}

	if size <= 0 {
		return PageRequest{Sort: sort}
	}

	if page < 1 {
		page = 1
	}

	return PageRequest{Page: page, Size: size, Sort: sort}
}

func (p PageRequest) IsUnpaged() bool {
	return p.Size <= 0
}

// Offset is the number of records skipped before the page starts.
func (p PageRequest) Offset() int {
	if p.IsUnpaged() || p.Page < 1 {
		return 0
	}

	return (p.Page - 1) * p.Size
}

/***** ListResult *****/

// ListResult is one page of a list query.
type ListResult[T any] struct {
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
	Items []T   `json:"items"`
}

func (r ListResult[T]) TotalPages() int {
	if r.Size <= 0 {
		return 1
	}

	return int((r.Total + int64(r.Size) - 1) / int64(r.Size))
}

func (r ListResult[T]) HasNext() bool {
	return r.Size > 0 && r.Page < r.TotalPages()
}

// ResultWithItems keeps page and size of r and replaces its items, Total becomes the number of items.
func ResultWithItems[T, U any](r ListResult[T], items []U) ListResult[U] {
	if items == nil {
		items = []U{}
	}

	return ListResult[U]{
		Page:  r.Page,
		Size:  r.Size,
		Total: int64(len(items)),
		Items: items,
	}
}

// ResultOf converts the items of a store page to T and keeps the store's Total.
// Items which are no T are skipped, so the filter of the page should be restricted to T's kind.
func ResultOf[T Record](r ListResult[Record]) ListResult[T] {
	items := make([]T, 0, len(r.Items))

	for _, record := range r.Items {
		if t, ok := record.(T); ok {
			items = append(items, t)
		}
	}

	return ListResult[T]{
		Page:  r.Page,
		Size:  r.Size,
		Total: r.Total,
		Items: items,
	}
}

// PaginateRecords sorts the records and cuts out the requested page. Total is the number of all records.
func PaginateRecords(records Records, page PageRequest) ListResult[Record] {
	sorted := slices.Clone(records)
	SortRecords(sorted, page.Sort)

	result := ListResult[Record]{
		Page:  page.Page,
		Size:  page.Size,
		Total: int64(len(sorted)),
		Items: []Record{},
	}

	if page.IsUnpaged() {
		result.Items = append(result.Items, sorted...)

		return result
	}

	start := min(page.Offset(), len(sorted))
	end := min(start+page.Size, len(sorted))
	result.Items = append(result.Items, sorted[start:end]...)

	return result
}
