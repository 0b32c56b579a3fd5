package table

import (
	"slices"
	"strings"
)

// DefaultPageSize is used when [Options.PageSize] is not positive.
const DefaultPageSize = 10

// DefaultEmptyMessage is shown when no rows match.
const DefaultEmptyMessage = "No data available"

// MaxPageButtons bounds the page selector window.
const MaxPageButtons = 5

// Direction is a sort direction.
type Direction int

const (
	None Direction = iota
	Asc
	Desc
)

func (d Direction) String() string {
	switch d {
	case Asc:
		return "asc"
	case Desc:
		return "desc"
	default:
		return "none"
	}
}

// SortSpec is the active sort key and direction.
type SortSpec struct {
	Key       string
	Direction Direction
}

// Options are the display toggles of a [View].
type Options struct {
	Title        string
	Description  string
	EmptyMessage string
	Searchable   bool
	Paginated    bool
	PageSize     int
	// Loading starts the view in the loading state.
	Loading bool
}

// View is the working set of a table: caller-supplied rows plus transient search, sort and page state.
//
// The view never mutates the rows it is given.
type View[T any] struct {
	columns []Column[T]
	actions []Action[T]
	opts    Options

	rows    []T
	search  string
	sort    SortSpec
	page    int
	loading bool

	filtered     []T
	filterValid  bool
	filterPasses int
}

// New creates a [View] for the given descriptors.
func New[T any](columns []Column[T], actions []Action[T], opts Options) *View[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.EmptyMessage == "" {
		opts.EmptyMessage = DefaultEmptyMessage
	}
	return &View[T]{columns: columns, actions: actions, opts: opts, loading: opts.Loading}
}

// SetRows swaps in a new row set and resets search, sort and page to their defaults.
func (v *View[T]) SetRows(rows []T) {
	v.rows = rows
	v.search = ""
	v.sort = SortSpec{}
	v.page = 0
	v.filterValid = false
}

// SetLoading toggles the loading placeholder.
func (v *View[T]) SetLoading(loading bool) { v.loading = loading }

// Loading reports whether the caller marked the view as loading.
func (v *View[T]) Loading() bool { return v.loading }

// Columns returns the column descriptors.
func (v *View[T]) Columns() []Column[T] { return v.columns }

// Options returns the display options.
func (v *View[T]) Options() Options { return v.opts }

// Search returns the current search term.
func (v *View[T]) Search() string { return v.search }

// Sort returns the current sort spec.
func (v *View[T]) Sort() SortSpec { return v.sort }

// Rows returns the caller's rows as given.
func (v *View[T]) Rows() []T { return v.rows }

// HasActions reports whether any row actions are configured.
func (v *View[T]) HasActions() bool { return len(v.actions) > 0 }

// SetSearch sets the search term, refilters and clamps the page into range.
func (v *View[T]) SetSearch(term string) {
	if term == v.search && v.filterValid {
		return
	}
	v.search = term
	v.filterValid = false
	v.page = ClampPage(v.page, v.TotalPages())
}

// ToggleSort activates the column with key: the active key flips between ascending and descending, any other
// sortable key becomes active ascending. Returns false for unknown or non-sortable keys.
func (v *View[T]) ToggleSort(key string) bool {
	col, ok := v.column(key)
	if !ok || !col.Sortable {
		return false
	}

	if v.sort.Key == key && v.sort.Direction != None {
		if v.sort.Direction == Asc {
			v.sort.Direction = Desc
		} else {
			v.sort.Direction = Asc
		}
		return true
	}

	v.sort = SortSpec{Key: key, Direction: Asc}
	return true
}

// Filtered returns the rows matching the search term in input order. The result is shared; do not modify it.
func (v *View[T]) Filtered() []T {
	if !v.filterValid {
		v.filtered = Filter(v.rows, v.columns, v.search)
		v.filterValid = true
		v.filterPasses++
	}
	return v.filtered
}

// Sorted returns the filtered rows ordered by the active sort spec.
func (v *View[T]) Sorted() []T {
	filtered := v.Filtered()
	if v.sort.Direction == None {
		return filtered
	}
	col, ok := v.column(v.sort.Key)
	if !ok {
		return filtered
	}
	return Sort(filtered, col, v.sort.Direction)
}

// Len returns the number of rows matching the search term.
func (v *View[T]) Len() int { return len(v.Filtered()) }

// TotalPages returns the page count, at least 1.
func (v *View[T]) TotalPages() int {
	if !v.opts.Paginated {
		return 1
	}
	return TotalPages(v.Len(), v.opts.PageSize)
}

// PageIndex returns the zero-based current page, clamped into range.
func (v *View[T]) PageIndex() int {
	v.page = ClampPage(v.page, v.TotalPages())
	return v.page
}

// SetPage moves to page index i, clamped into range.
func (v *View[T]) SetPage(i int) {
	v.page = ClampPage(i, v.TotalPages())
}

// NextPage advances one page if possible.
func (v *View[T]) NextPage() { v.SetPage(v.PageIndex() + 1) }

// PrevPage goes back one page if possible.
func (v *View[T]) PrevPage() { v.SetPage(v.PageIndex() - 1) }

// Page returns the rows to render.
func (v *View[T]) Page() []T {
	sorted := v.Sorted()
	if !v.opts.Paginated {
		return sorted
	}
	return Paginate(sorted, v.PageIndex(), v.opts.PageSize)
}

// PageWindow returns the one-based page numbers to offer in the page selector.
func (v *View[T]) PageWindow() []int {
	return PageWindow(v.PageIndex(), v.TotalPages(), MaxPageButtons)
}

// Cell returns the display text of the column with key for row, or [Placeholder] for an unknown key.
func (v *View[T]) Cell(row T, key string) string {
	col, ok := v.column(key)
	if !ok {
		return Placeholder
	}
	return Cell(col, row)
}

// Actions returns the actions visible for row, each resolved with its disabled state.
func (v *View[T]) Actions(row T) []RowAction[T] {
	out := make([]RowAction[T], 0, len(v.actions))
	for _, a := range v.actions {
		if !a.IsVisible(row) {
			continue
		}
		out = append(out, RowAction[T]{Action: a, Disabled: a.IsDisabled(row)})
	}
	return out
}

// Invoke runs the action labeled label for row. It is a no-op (false, nil) when the action does not exist, is
// hidden for the row or is disabled for the row.
func (v *View[T]) Invoke(row T, label string) (bool, error) {
	for _, a := range v.actions {
		if !strings.EqualFold(a.Label, label) {
			continue
		}
		if !a.IsVisible(row) || a.IsDisabled(row) {
			return false, nil
		}
		if a.Handler == nil {
			return true, nil
		}
		return true, a.Handler(row)
	}
	return false, nil
}

func (v *View[T]) column(key string) (Column[T], bool) {
	i := slices.IndexFunc(v.columns, func(c Column[T]) bool { return c.Key == key })
	if i < 0 {
		return Column[T]{}, false
	}
	return v.columns[i], true
}

// Filter returns the rows for which at least one column's resolved value contains term, case-insensitively.
// The term is matched literally, surrounding whitespace included. An empty term returns every row in input order.
func Filter[T any](rows []T, columns []Column[T], term string) []T {
	if term == "" {
		return slices.Clone(rows)
	}
	needle := strings.ToLower(term)

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		for _, c := range columns {
			if strings.Contains(strings.ToLower(Stringify(c.value(row))), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// Sort returns a stably sorted copy of rows ordered by the column's raw values.
func Sort[T any](rows []T, col Column[T], dir Direction) []T {
	out := slices.Clone(rows)
	if dir == None {
		return out
	}
	slices.SortStableFunc(out, func(a, b T) int {
		c := Compare(col.value(a), col.value(b))
		if dir == Desc {
			return -c
		}
		return c
	})
	return out
}

// TotalPages returns ceil(n/size), at least 1.
func TotalPages(n, size int) int {
	if size <= 0 || n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// ClampPage clamps a zero-based page index into [0, total).
func ClampPage(page, total int) int {
	if total < 1 {
		total = 1
	}
	return min(max(page, 0), total-1)
}

// Paginate returns the contiguous slice of rows for the zero-based page.
func Paginate[T any](rows []T, page, size int) []T {
	if size <= 0 {
		return rows
	}
	page = ClampPage(page, TotalPages(len(rows), size))
	start := page * size
	end := min(start+size, len(rows))
	if start >= end {
		return []T{}
	}
	return rows[start:end]
}

// PageWindow returns up to limit one-based page numbers centred on the zero-based current page, never outside
// [1, total].
func PageWindow(current, total, limit int) []int {
	if total < 1 {
		total = 1
	}
	if limit < 1 {
		limit = 1
	}
	current = ClampPage(current, total) + 1

	start := max(current-limit/2, 1)
	end := start + limit - 1
	if end > total {
		end = total
		start = max(end-limit+1, 1)
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}
