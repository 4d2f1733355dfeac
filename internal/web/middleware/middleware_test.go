package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/JonMunkholm/csvtable/internal/logging"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("ok"))
})

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		headers map[string]string
		want    string
	}{
		{"no trusted proxies ignores headers", nil, "203.0.113.5:1234", map[string]string{"X-Real-IP": "1.2.3.4"}, "203.0.113.5:1234"},
		{"trusted proxy X-Real-IP", []string{"10.0.0.0/8"}, "10.1.2.3:5555", map[string]string{"X-Real-IP": "1.2.3.4"}, "1.2.3.4"},
		{"trusted proxy X-Forwarded-For first hop", []string{"10.0.0.0/8"}, "10.1.2.3:5555", map[string]string{"X-Forwarded-For": "5.6.7.8, 10.1.2.3"}, "5.6.7.8"},
		{"single address entry", []string{"127.0.0.1"}, "127.0.0.1:80", map[string]string{"X-Real-IP": "9.9.9.9"}, "9.9.9.9"},
		{"untrusted source", []string{"10.0.0.0/8"}, "192.168.1.1:80", map[string]string{"X-Real-IP": "1.2.3.4"}, "192.168.1.1:80"},
		{"invalid header ignored", []string{"10.0.0.0/8"}, "10.0.0.1:80", map[string]string{"X-Real-IP": "not-an-ip"}, "10.0.0.1:80"},
		{"invalid entries skipped", []string{"garbage", " "}, "10.0.0.1:80", map[string]string{"X-Real-IP": "1.2.3.4"}, "10.0.0.1:80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := TrustedRealIP(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAPIKeyAuth(t *testing.T) {
	tests := []struct {
		name     string
		required bool
		keys     []string
		header   string
		want     int
		wantCode string
	}{
		{"disabled", false, nil, "", http.StatusOK, ""},
		{"missing key", true, []string{"k1"}, "", http.StatusUnauthorized, "AUTH001"},
		{"wrong key", true, []string{"k1", "k2"}, "nope", http.StatusForbidden, "AUTH002"},
		{"second key matches", true, []string{"k1", "k2"}, "k2", http.StatusOK, ""},
		{"no keys configured", true, nil, "k1", http.StatusForbidden, "AUTH002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/data", nil)
			if tt.header != "" {
				req.Header.Set("X-API-Key", tt.header)
			}
			rec := httptest.NewRecorder()
			APIKeyAuth(tt.required, tt.keys)(okHandler).ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.wantCode != "" {
				var body ErrorBody
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.wantCode, body.Code)
				assert.NotEmpty(t, body.Error)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	h := rl.Handler(okHandler)
	do := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do("1.1.1.1:1000").Code)
	assert.Equal(t, http.StatusOK, do("1.1.1.1:2000").Code, "port ignored")

	rec := do("1.1.1.1:3000")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do("2.2.2.2:1000").Code, "budget is per client")

	now = now.Add(61 * time.Second)
	assert.Equal(t, http.StatusOK, do("1.1.1.1:1000").Code, "window reset")
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(1, time.Millisecond)
	rl.Stop()
	rl.Stop()
}

func TestCORS(t *testing.T) {
	t.Run("wildcard", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/data", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		CORS([]string{"*"})(okHandler).ServeHTTP(rec, req)

		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "ok", rec.Body.String())
	})

	t.Run("listed origin preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/data", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", "GET")
		rec := httptest.NewRecorder()
		CORS([]string{"https://app.example.com"})(okHandler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	})

	t.Run("other origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/data", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		CORS([]string{"https://app.example.com"})(okHandler).ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(APIContentSecurityPolicy)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, APIContentSecurityPolicy, rec.Header().Get("Content-Security-Policy"))
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	logging.SetupWriter(&buf, "info", "json")

	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"x"}`))
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/data", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, float64(http.StatusNotFound), entry["status"])
	assert.Equal(t, float64(13), entry["bytes"])
	assert.Equal(t, "/api/data", entry["path"])
}
