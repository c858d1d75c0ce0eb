// Package tasklist holds the client task cache and derives the filtered,
// sorted and paginated view shown to the user.
package tasklist

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/adanyl0v/go-taskboard/internal/models"
)

const (
	PageSize       = 10
	MaxPagesLength = 5
)

// Filter is either FilterNone or a priority to keep.
type Filter string

const FilterNone Filter = "none"

type SortField string

const (
	SortNone     SortField = "none"
	SortDueDate  SortField = "dueDate"
	SortPriority SortField = "priority"
)

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

type Options struct {
	Filter Filter
	Sort   SortField
	Order  SortOrder
}

func DefaultOptions() Options {
	return Options{
		Filter: FilterNone,
		Sort:   SortNone,
		Order:  OrderAsc,
	}
}

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case FilterNone, Filter(models.PriorityLow), Filter(models.PriorityMedium), Filter(models.PriorityHigh):
		return f, nil
	default:
		return "", fmt.Errorf("unknown filter: %s", s)
	}
}

func ParseSortField(s string) (SortField, error) {
	switch f := SortField(s); f {
	case SortNone, SortDueDate, SortPriority:
		return f, nil
	default:
		return "", fmt.Errorf("unknown sort field: %s", s)
	}
}

func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(s); o {
	case OrderAsc, OrderDesc:
		return o, nil
	default:
		return "", fmt.Errorf("unknown sort order: %s", s)
	}
}

// Process filters and sorts a copy of the cache. The cache is never modified.
func Process(cache []models.Task, opts Options) []models.Task {
	out := make([]models.Task, 0, len(cache))
	for _, task := range cache {
		if opts.Filter != "" && opts.Filter != FilterNone && task.Priority != models.Priority(opts.Filter) {
			continue
		}
		out = append(out, task)
	}

	var compare func(a, b models.Task) int
	switch opts.Sort {
	case SortDueDate:
		compare = func(a, b models.Task) int {
			return a.DueAt.Compare(b.DueAt)
		}
	case SortPriority:
		compare = func(a, b models.Task) int {
			return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
		}
	default:
		return out
	}

	if opts.Order == OrderDesc {
		asc := compare
		compare = func(a, b models.Task) int {
			return asc(b, a)
		}
	}
	slices.SortStableFunc(out, compare)
	return out
}

func PageCount(total int) int {
	return (total + PageSize - 1) / PageSize
}

// Page returns the items of the zero-based page, or nil when out of range.
func Page(items []models.Task, page int) []models.Task {
	start := page * PageSize
	if page < 0 || start >= len(items) {
		return nil
	}
	end := min(start+PageSize, len(items))
	return items[start:end]
}

// PageWindow returns up to MaxPagesLength zero-based page numbers starting
// two before the current page. Near the last page the window shrinks rather
// than shifting left.
func PageWindow(current, total int) []int {
	if total <= 0 {
		return nil
	}
	start := max(0, current-MaxPagesLength/2)
	end := min(total, start+MaxPagesLength)

	window := make([]int, 0, end-start)
	for p := start; p < end; p++ {
		window = append(window, p)
	}
	return window
}
