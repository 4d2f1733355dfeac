package viewmodel

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/JonMunkholm/csvtable/internal/core"
)

// Page is the derived view of one State over a record set.
type Page struct {
	Rows       []core.Record
	Total      int // records before filtering
	Filtered   int // records after filtering
	Current    int // clamped page number
	TotalPages int // at least 1
	PageSize   int
	HasPrev    bool
	HasNext    bool
	SortColumn core.Column
	Ascending  bool
}

// Derive filters, sorts and paginates all for s. all is not modified.
//
// The requested page is clamped to [1, TotalPages], so a filter that
// shrinks the result never leaves the view on an empty page.
func Derive(s State, all []core.Record) Page {
	rows := Sorted(s, all)

	size := s.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	totalPages := max(1, (len(rows)+size-1)/size)
	current := min(max(s.Page, 1), totalPages)

	start := (current - 1) * size
	end := min(start+size, len(rows))

	return Page{
		Rows:       slices.Clip(rows[start:end]),
		Total:      len(all),
		Filtered:   len(rows),
		Current:    current,
		TotalPages: totalPages,
		PageSize:   size,
		HasPrev:    current > 1,
		HasNext:    current < totalPages,
		SortColumn: s.SortColumn,
		Ascending:  s.Ascending,
	}
}

// Sorted returns every record matching s, in display order. The result is
// a new slice.
func Sorted(s State, all []core.Record) []core.Record {
	rows := Filter(all, s.SearchColumn, s.SearchText)
	SortRecords(rows, s.SortColumn, s.Ascending)
	return rows
}

// Filter returns a new slice of the records whose col value contains text,
// both lower-cased. Empty text keeps everything.
func Filter(all []core.Record, col core.Column, text string) []core.Record {
	if text == "" {
		return slices.Clone(all)
	}

	lower := cases.Lower(language.Und)
	needle := lower.String(text)

	out := make([]core.Record, 0, len(all))
	for _, r := range all {
		if strings.Contains(lower.String(r.Value(col)), needle) {
			out = append(out, r)
		}
	}
	return out
}

// SortRecords stably sorts rows in place by col. An empty col leaves the
// order alone.
//
// Numeric columns (ID, Age) compare as numbers: blank text is 0 and text that
// is not a number is NaN. NaN values sort after every number in both
// directions and keep their relative order. Other columns compare byte-wise,
// so upper case sorts before lower case.
func SortRecords(rows []core.Record, col core.Column, ascending bool) {
	if col == "" {
		return
	}

	if col.Numeric() {
		keyed := make([]numericKey, len(rows))
		for i, r := range rows {
			keyed[i] = numericKey{n: toNumber(r.Value(col)), r: r}
		}
		slices.SortStableFunc(keyed, func(a, b numericKey) int {
			return compareNumbers(a.n, b.n, ascending)
		})
		for i := range keyed {
			rows[i] = keyed[i].r
		}
		return
	}

	slices.SortStableFunc(rows, func(a, b core.Record) int {
		c := strings.Compare(a.Value(col), b.Value(col))
		if !ascending {
			c = -c
		}
		return c
	})
}

type numericKey struct {
	n float64
	r core.Record
}

// toNumber converts a cell to a number the way a lenient form field would:
// surrounding space is ignored and blank is zero.
func toNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func compareNumbers(a, b float64, ascending bool) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	}

	c := cmp.Compare(a, b)
	if !ascending {
		c = -c
	}
	return c
}
