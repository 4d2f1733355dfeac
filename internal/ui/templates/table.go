// Package templates renders the browser table view. The components live in
// table.templ; table_templ.go is generated from it.
package templates

//go:generate templ generate

import "github.com/JonMunkholm/csvtable/internal/core"

// Header is one sortable column heading.
type Header struct {
	Column    core.Column
	Href      string // link that toggles sorting on this column
	Sorted    bool
	Ascending bool
}

// TableData is everything the table page shows. Hrefs are relative URLs
// built by the caller; an empty PrevHref or NextHref renders the control
// disabled.
type TableData struct {
	Headers      []Header
	Rows         []core.Record
	SearchColumn core.Column
	SearchText   string
	SortColumn   core.Column
	Ascending    bool
	Width        int

	Current    int
	TotalPages int
	Filtered   int
	Total      int

	PrevHref   string
	NextHref   string
	ExportHref string

	// Error is the fetch error message; non-empty shows the banner.
	Error string
}

// Label is the heading text, with an arrow marking the sort direction.
func (h Header) Label() string {
	switch {
	case !h.Sorted:
		return string(h.Column)
	case h.Ascending:
		return string(h.Column) + " \u25b2"
	default:
		return string(h.Column) + " \u25bc"
	}
}
