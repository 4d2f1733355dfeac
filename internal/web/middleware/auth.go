package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/JonMunkholm/csvtable/internal/logging"
)

// APIKeyAuth checks the X-API-Key header against keys. When required is
// false every request passes. When it is true and keys is empty every
// request is rejected.
func APIKeyAuth(required bool, keys []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !required {
				next.ServeHTTP(w, r)
				return
			}

			logger := logging.FromContext(r.Context())
			key := r.Header.Get("X-API-Key")
			if key == "" {
				logger.Warn("auth: missing API key", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				WriteError(w, http.StatusUnauthorized, "missing API key", "AUTH001")
				return
			}
			if !validKey(key, keys) {
				logger.Warn("auth: invalid API key", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				WriteError(w, http.StatusForbidden, "invalid API key", "AUTH002")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// validKey compares against every key in constant time per key, so timing
// does not reveal which key matched.
func validKey(key string, keys []string) bool {
	match := 0
	for _, k := range keys {
		match |= subtle.ConstantTimeCompare([]byte(key), []byte(k))
	}
	return match == 1
}
