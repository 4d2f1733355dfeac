package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csvtable/internal/core"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DataPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchTableData_Success(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"data":[{"ID":"1","Name":"Alice","Email":"a@example.com","Age":"30","City":"Paris"}]}`)

	res := New(srv.URL + "/").FetchTableData(context.Background())

	assert.Empty(t, res.Error)
	want := []core.Record{{ID: "1", Name: "Alice", Email: "a@example.com", Age: "30", City: "Paris"}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Errorf("Data mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchTableData_Normalization(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"server error field", http.StatusForbidden, `{"error":"Access denied to S3 bucket","code":"SRC003"}`, "Access denied to S3 bucket"},
		{"empty object", http.StatusNotFound, `{"error":"CSV file not found or empty"}`, "CSV file not found or empty"},
		{"no error field", http.StatusInternalServerError, `{"message":"x"}`, "request failed with status code 500"},
		{"empty error field", http.StatusBadGateway, `{"error":""}`, "request failed with status code 502"},
		{"non-json body", http.StatusServiceUnavailable, `upstream down`, "request failed with status code 503"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body)

			res := New(srv.URL).FetchTableData(context.Background())

			assert.Nil(t, res.Data, "never both data and error")
			assert.Equal(t, tt.want, res.Error)
		})
	}
}

func TestFetch_ErrorCarriesStatus(t *testing.T) {
	srv := serve(t, http.StatusForbidden, `{"error":"Access denied to S3 bucket"}`)

	_, err := New(srv.URL).Fetch(context.Background())

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
}

func TestFetchTableData_BodyWithoutData(t *testing.T) {
	for _, body := range []string{`{}`, `{"data":null}`, `not json`} {
		srv := serve(t, http.StatusOK, body)

		res := New(srv.URL).FetchTableData(context.Background())

		assert.Empty(t, res.Error, "body %q", body)
		assert.NotNil(t, res.Data, "body %q", body)
		assert.Empty(t, res.Data, "body %q", body)
	}
}

func TestFetchTableData_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := New(url).FetchTableData(context.Background())

	assert.Nil(t, res.Data)
	assert.NotEmpty(t, res.Error)
	assert.NotEqual(t, UnknownError, res.Error)
}

func TestFetch_APIKeyHeader(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-API-Key")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, WithAPIKey("k-123")).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "k-123", got)
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(srv.URL, WithTimeout(20*time.Millisecond)).Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

func TestNormalize(t *testing.T) {
	assert.Equal(t, "", Normalize(nil))
	assert.Equal(t, UnknownError, Normalize(errors.New("")))
	assert.Equal(t, UnknownError, Normalize(&Error{}))
	assert.Equal(t, "boom", Normalize(errors.New("boom")))

	c := New("http://example.invalid", WithHTTPClient(doerFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("")
	})))
	assert.Equal(t, Result{Error: UnknownError}, c.FetchTableData(context.Background()))
}
