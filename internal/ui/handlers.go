package ui

import (
	"net/http"

	"github.com/JonMunkholm/csvtable/internal/core"
	"github.com/JonMunkholm/csvtable/internal/logging"
	"github.com/JonMunkholm/csvtable/internal/ui/templates"
	"github.com/JonMunkholm/csvtable/internal/viewmodel"
	"github.com/JonMunkholm/csvtable/internal/web/middleware"
)

// handleTable renders the table page for the state in the query.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, width := parseState(r.URL.Query())

	res := s.client.FetchTableData(ctx)
	if res.Error != "" {
		logging.FromContext(ctx).Warn("table fetch failed", "error", res.Error)
	}

	data := buildTable(state, width, res.Data)
	data.Error = res.Error

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := templates.Page(Title, viewmodel.BrowserPolicy.Breakpoint, templates.Table(data))
	if err := page.Render(ctx, w); err != nil {
		logging.FromContext(ctx).Error("render table", "error", err)
	}
}

// handleExport downloads every record matching the current search and sort
// as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, _ := parseState(r.URL.Query())

	res := s.client.FetchTableData(ctx)
	if res.Error != "" {
		logging.FromContext(ctx).Warn("export fetch failed", "error", res.Error)
		middleware.WriteError(w, http.StatusBadGateway, res.Error, "")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="table.csv"`)
	if err := core.Encode(w, viewmodel.Sorted(state, res.Data)); err != nil {
		logging.FromContext(ctx).Error("export encode", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// buildTable derives the page for state and turns every control into a link
// carrying the next state.
func buildTable(state viewmodel.State, width int, records []core.Record) templates.TableData {
	page := viewmodel.Derive(state, records)
	state.Page = page.Current

	headers := make([]templates.Header, len(core.Columns))
	for i, c := range core.Columns {
		headers[i] = templates.Header{
			Column:    c,
			Href:      href("/", viewmodel.ToggleSort(state, c), width),
			Sorted:    page.SortColumn == c,
			Ascending: page.Ascending,
		}
	}

	data := templates.TableData{
		Headers:      headers,
		Rows:         page.Rows,
		SearchColumn: state.SearchColumn,
		SearchText:   state.SearchText,
		SortColumn:   state.SortColumn,
		Ascending:    state.Ascending,
		Width:        width,
		Current:      page.Current,
		TotalPages:   page.TotalPages,
		Filtered:     page.Filtered,
		Total:        page.Total,
		ExportHref:   href("/export.csv", viewmodel.SetPage(state, 1), width),
	}
	if page.HasPrev {
		data.PrevHref = href("/", viewmodel.PrevPage(state), width)
	}
	if page.HasNext {
		data.NextHref = href("/", viewmodel.NextPage(state, page.TotalPages), width)
	}
	return data
}
