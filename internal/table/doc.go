// Package table implements a generic searchable, sortable, paginated view over an in-memory collection.
//
// A [View] is configured with [Column] and [Action] descriptors. Accessors, renderers and predicates are plain
// functions of a row and must be free of side effects: they are evaluated on every pass and never cached.
//
// The rendered set is always
//
//	paginate(sort(filter(rows, search), sortSpec), page, pageSize)
//
// Filtering is memoized on the row set and search term only, so toggling the sort key or moving between pages
// never repeats a filter pass. The page index is clamped whenever the filtered count shrinks.
//
// [Render] draws a view for the terminal with lipgloss. The engine itself has no rendering dependency and is
// exercised directly by the CLI list commands and the TUI.
package table
