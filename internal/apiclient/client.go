// Package apiclient calls the Data Endpoint and normalizes failures into a
// single message string for the table views.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/csvtable/internal/core"
)

// DataPath is the Data Endpoint route.
const DataPath = "/api/data"

// UnknownError is the message used when a failure carries no text.
const UnknownError = "Unknown error"

// maxBody bounds how much of a response is read.
const maxBody = 64 << 20

// HTTPClient is satisfied by *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches Records from a csvtable backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    HTTPClient
	apiKey  string
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(h HTTPClient) Option {
	return func(c *Client) { c.http = h }
}

// WithAPIKey sends key in the X-API-Key header.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithTimeout bounds each call. Zero means no bound beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a Client for the backend at baseURL, e.g. "http://localhost:3000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Error is a failed call. Status is zero when no response arrived.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Result carries either Data or Error, never both.
type Result struct {
	Data  []core.Record `json:"data"`
	Error string        `json:"error,omitempty"`
}

type dataBody struct {
	Data []core.Record `json:"data"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Fetch performs one GET of the Data Endpoint.
//
// A non-2xx status returns an *Error whose Message is the server's "error"
// field, or "request failed with status code N" when the body has none.
// A 2xx body without a usable "data" array yields an empty slice.
func (c *Client) Fetch(ctx context.Context) ([]core.Record, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+DataPath, nil)
	if err != nil {
		return nil, &Error{Message: err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &Error{Status: resp.StatusCode, Message: err.Error(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
			return nil, &Error{Status: resp.StatusCode, Message: eb.Error}
		}
		return nil, &Error{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("request failed with status code %d", resp.StatusCode),
		}
	}

	var db dataBody
	if json.Unmarshal(body, &db) != nil || db.Data == nil {
		return []core.Record{}, nil
	}
	return db.Data, nil
}

// FetchTableData calls Fetch and folds any failure into Result.Error.
func (c *Client) FetchTableData(ctx context.Context) Result {
	records, err := c.Fetch(ctx)
	if err != nil {
		return Result{Error: Normalize(err)}
	}
	return Result{Data: records}
}

// Normalize returns the display message for err: the server or transport
// message when there is one, otherwise UnknownError.
func Normalize(err error) string {
	if err == nil {
		return ""
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return UnknownError
}
