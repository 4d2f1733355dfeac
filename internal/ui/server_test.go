package ui

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csvtable/internal/apiclient"
	"github.com/JonMunkholm/csvtable/internal/config"
	"github.com/JonMunkholm/csvtable/internal/core"
	"github.com/JonMunkholm/csvtable/internal/viewmodel"
)

type stubFetcher struct {
	result apiclient.Result
	calls  int
}

func (f *stubFetcher) FetchTableData(context.Context) apiclient.Result {
	f.calls++
	return f.result
}

func testConfig() *config.ClientConfig {
	return &config.ClientConfig{
		API: config.APIConfig{BaseURL: "http://localhost:3000", Timeout: 5 * time.Second},
		UI:  config.UIConfig{Port: 5173},
	}
}

func records(n int) []core.Record {
	out := make([]core.Record, n)
	for i := range out {
		out[i] = core.Record{
			ID:   fmt.Sprint(i + 1),
			Name: fmt.Sprintf("user%02d", i+1),
			City: "Paris",
		}
	}
	return out
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleTable_FirstPage(t *testing.T) {
	f := &stubFetcher{result: apiclient.Result{Data: records(23)}}
	s := NewServer(f, testConfig())

	rec := get(t, s, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "script-src")

	body := rec.Body.String()
	assert.Contains(t, body, "Page 1 of 3")
	assert.Contains(t, body, "<td>user01</td>")
	assert.Contains(t, body, "<td>user10</td>")
	assert.NotContains(t, body, "<td>user11</td>")
	assert.Contains(t, body, `<button type="button" disabled>Previous</button>`)
	assert.Contains(t, body, `href="/?page=2">Next</a>`)
	assert.NotContains(t, body, `class="banner"`)
	assert.Contains(t, body, "Download CSV")
	assert.Equal(t, 1, f.calls)
}

func TestHandleTable_LastPage(t *testing.T) {
	s := NewServer(&stubFetcher{result: apiclient.Result{Data: records(23)}}, testConfig())

	body := get(t, s, "/?page=3").Body.String()

	assert.Contains(t, body, "Page 3 of 3")
	assert.Contains(t, body, "<td>user23</td>")
	assert.Contains(t, body, `href="/?page=2">Previous</a>`)
	assert.Contains(t, body, `<button type="button" disabled>Next</button>`)
}

func TestHandleTable_PageClampedAfterFilter(t *testing.T) {
	s := NewServer(&stubFetcher{result: apiclient.Result{Data: records(23)}}, testConfig())

	body := get(t, s, "/?q=user2&page=3").Body.String()

	assert.Contains(t, body, "Page 1 of 1")
	assert.Contains(t, body, "4 of 23 records")
}

func TestHandleTable_NarrowWidth(t *testing.T) {
	s := NewServer(&stubFetcher{result: apiclient.Result{Data: records(23)}}, testConfig())

	body := get(t, s, "/?width=375").Body.String()

	assert.Contains(t, body, "Page 1 of 5")
	assert.Contains(t, body, "<td>user05</td>")
	assert.NotContains(t, body, "<td>user06</td>")
	assert.Contains(t, body, `href="/?page=2&amp;width=375">Next</a>`)
}

func TestHandleTable_SortLinks(t *testing.T) {
	s := NewServer(&stubFetcher{result: apiclient.Result{Data: records(3)}}, testConfig())

	body := get(t, s, "/").Body.String()
	assert.Contains(t, body, `href="/?sort=ID">ID</a>`)

	body = get(t, s, "/?sort=ID").Body.String()
	assert.Contains(t, body, `href="/?dir=desc&amp;sort=ID">ID ▲</a>`)
	assert.Contains(t, body, `href="/?sort=Name">Name</a>`)

	body = get(t, s, "/?sort=ID&dir=desc").Body.String()
	assert.Contains(t, body, "ID ▼")
	assert.Less(t, strings.Index(body, "<td>user03</td>"), strings.Index(body, "<td>user01</td>"))
}

func TestHandleTable_SearchForm(t *testing.T) {
	s := NewServer(&stubFetcher{result: apiclient.Result{Data: records(3)}}, testConfig())

	body := get(t, s, "/?col=City&q=par&sort=Age&dir=desc").Body.String()

	assert.Contains(t, body, `<option value="City" selected>`)
	assert.Contains(t, body, `name="q" placeholder="Search..." value="par"`)
	assert.Contains(t, body, `<input type="hidden" name="sort" value="Age">`)
	assert.Contains(t, body, `<input type="hidden" name="dir" value="desc">`)
}

func TestHandleTable_ErrorBanner(t *testing.T) {
	f := &stubFetcher{result: apiclient.Result{Error: "CSV file not found in S3 <bucket>"}}
	s := NewServer(f, testConfig())

	rec := get(t, s, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<div class="banner" role="alert">CSV file not found in S3 &lt;bucket&gt;</div>`)
	assert.Contains(t, body, "No records")
	assert.Contains(t, body, "Page 1 of 1")
	assert.Contains(t, body, `<button type="button" disabled>Next</button>`)
}

func TestHandleTable_EscapesCells(t *testing.T) {
	f := &stubFetcher{result: apiclient.Result{Data: []core.Record{{ID: "1", Name: "<script>x</script>"}}}}
	s := NewServer(f, testConfig())

	body := get(t, s, "/").Body.String()

	assert.Contains(t, body, "<td>&lt;script&gt;x&lt;/script&gt;</td>")
}

func TestHandleExport(t *testing.T) {
	s := NewServer(&stubFetcher{result: apiclient.Result{Data: records(12)}}, testConfig())

	rec := get(t, s, "/export.csv?sort=ID&dir=desc&q=user1&page=2")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "table.csv")

	got, err := core.Decode(rec.Body)
	require.NoError(t, err)
	require.Len(t, got, 3, "every match, not one page")
	assert.Equal(t, []string{"12", "11", "10"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestHandleExport_Error(t *testing.T) {
	s := NewServer(&stubFetcher{result: apiclient.Result{Error: "Unknown error"}}, testConfig())

	rec := get(t, s, "/export.csv")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unknown error")
}

func TestHealth(t *testing.T) {
	s := NewServer(&stubFetcher{}, testConfig())

	rec := get(t, s, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestParseState(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantState viewmodel.State
		wantWidth int
	}{
		{
			name:      "defaults",
			query:     "",
			wantState: viewmodel.Default(),
		},
		{
			name:  "everything",
			query: "q=ali&col=email&sort=age&dir=desc&page=3&width=500",
			wantState: viewmodel.State{
				SearchText:   "ali",
				SearchColumn: core.ColumnEmail,
				SortColumn:   core.ColumnAge,
				Ascending:    false,
				Page:         3,
				PageSize:     5,
			},
			wantWidth: 500,
		},
		{
			name:      "invalid values ignored",
			query:     "col=Nickname&sort=bogus&dir=desc&page=abc&width=-4",
			wantState: viewmodel.Default(),
		},
		{
			name:  "page below one",
			query: "page=0&width=1200",
			wantState: viewmodel.Default(),
			wantWidth: 1200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			s, width := parseState(q)

			assert.Equal(t, tt.wantState, s)
			assert.Equal(t, tt.wantWidth, width)
		})
	}
}

func TestEncodeState_RoundTrip(t *testing.T) {
	s := viewmodel.State{
		SearchText:   "a b&c",
		SearchColumn: core.ColumnCity,
		SortColumn:   core.ColumnID,
		Ascending:    false,
		Page:         2,
		PageSize:     5,
	}

	got, width := parseState(encodeState(s, 320))

	assert.Equal(t, s, got)
	assert.Equal(t, 320, width)
	assert.Equal(t, "/", href("/", viewmodel.Default(), 0))
}
