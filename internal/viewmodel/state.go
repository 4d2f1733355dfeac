// Package viewmodel derives the displayed table page from the full set of
// Records and the user's view state.
//
// State changes go through pure functions that return a new State; Derive
// recomputes the page from scratch (filter, then sort, then paginate) and
// never modifies its input.
package viewmodel

import "github.com/JonMunkholm/csvtable/internal/core"

// DefaultPageSize is the page size before any width is known.
const DefaultPageSize = 10

// State is one display session's view inputs.
type State struct {
	SearchText   string
	SearchColumn core.Column
	SortColumn   core.Column // "" means unsorted
	Ascending    bool
	Page         int // 1-based
	PageSize     int
}

// Default returns the initial state: search by Name, unsorted, first page.
func Default() State {
	return State{
		SearchColumn: core.ColumnName,
		Ascending:    true,
		Page:         1,
		PageSize:     DefaultPageSize,
	}
}

// SetSearchText changes the query and returns to the first page.
func SetSearchText(s State, text string) State {
	s.SearchText = text
	s.Page = 1
	return s
}

// SetSearchColumn changes the searched column. col matches a known column
// in any case and is stored in its canonical form; unknown columns are
// ignored.
func SetSearchColumn(s State, col core.Column) State {
	if c, ok := core.ParseColumn(string(col)); ok {
		s.SearchColumn = c
	}
	return s
}

// ToggleSort sorts by col ascending, or flips the direction when col is
// already the sort column. col is canonicalized like SetSearchColumn;
// unknown columns are ignored.
func ToggleSort(s State, col core.Column) State {
	c, ok := core.ParseColumn(string(col))
	if !ok {
		return s
	}
	if s.SortColumn == c {
		s.Ascending = !s.Ascending
		return s
	}
	s.SortColumn = c
	s.Ascending = true
	return s
}

// NextPage advances one page, stopping at totalPages.
func NextPage(s State, totalPages int) State {
	if s.Page < totalPages {
		s.Page++
	}
	return s
}

// PrevPage goes back one page, stopping at 1.
func PrevPage(s State) State {
	if s.Page > 1 {
		s.Page--
	}
	return s
}

// SetPage jumps to page n. Derive clamps it to the available pages.
func SetPage(s State, n int) State {
	if n < 1 {
		n = 1
	}
	s.Page = n
	return s
}

// SetPageSize changes the rows per page. Non-positive sizes are ignored.
func SetPageSize(s State, n int) State {
	if n > 0 {
		s.PageSize = n
	}
	return s
}

// PageSizePolicy picks the page size from the available width.
type PageSizePolicy struct {
	Breakpoint int // widths below this are narrow
	Narrow     int
	Wide       int
}

// BrowserPolicy matches a 640px small-screen breakpoint.
var BrowserPolicy = PageSizePolicy{Breakpoint: 640, Narrow: 5, Wide: 10}

// PageSizeForWidth returns Narrow below the breakpoint and Wide otherwise.
// A non-positive width means unknown and gets Wide.
func (p PageSizePolicy) PageSizeForWidth(width int) int {
	if width > 0 && width < p.Breakpoint {
		return p.Narrow
	}
	return p.Wide
}

// PageSizeForWidth applies BrowserPolicy.
func PageSizeForWidth(width int) int {
	return BrowserPolicy.PageSizeForWidth(width)
}
