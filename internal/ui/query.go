package ui

import (
	"net/url"
	"strconv"

	"github.com/JonMunkholm/csvtable/internal/core"
	"github.com/JonMunkholm/csvtable/internal/viewmodel"
)

// Query parameters carrying the view state between page loads.
const (
	paramSearch = "q"
	paramColumn = "col"
	paramSort   = "sort"
	paramDir    = "dir"
	paramPage   = "page"
	paramWidth  = "width"
)

// parseState reads the view state and viewport width from a query. Missing
// or invalid values keep their defaults; the page size follows the width.
func parseState(q url.Values) (viewmodel.State, int) {
	s := viewmodel.Default()

	if c, ok := core.ParseColumn(q.Get(paramColumn)); ok {
		s = viewmodel.SetSearchColumn(s, c)
	}
	s.SearchText = q.Get(paramSearch)

	if c, ok := core.ParseColumn(q.Get(paramSort)); ok {
		s.SortColumn = c
		s.Ascending = q.Get(paramDir) != "desc"
	}

	if n, err := strconv.Atoi(q.Get(paramPage)); err == nil {
		s = viewmodel.SetPage(s, n)
	}

	width, err := strconv.Atoi(q.Get(paramWidth))
	if err != nil || width < 0 {
		width = 0
	}
	s = viewmodel.SetPageSize(s, viewmodel.PageSizeForWidth(width))

	return s, width
}

// encodeState is the inverse of parseState. Default values are omitted.
func encodeState(s viewmodel.State, width int) url.Values {
	q := url.Values{}
	if s.SearchText != "" {
		q.Set(paramSearch, s.SearchText)
	}
	if s.SearchColumn != "" && s.SearchColumn != core.ColumnName {
		q.Set(paramColumn, string(s.SearchColumn))
	}
	if s.SortColumn != "" {
		q.Set(paramSort, string(s.SortColumn))
		if !s.Ascending {
			q.Set(paramDir, "desc")
		}
	}
	if s.Page > 1 {
		q.Set(paramPage, strconv.Itoa(s.Page))
	}
	if width > 0 {
		q.Set(paramWidth, strconv.Itoa(width))
	}
	return q
}

// href returns path with the encoded state as its query.
func href(path string, s viewmodel.State, width int) string {
	q := encodeState(s, width).Encode()
	if q == "" {
		return path
	}
	return path + "?" + q
}
