package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/csvtable/internal/core"
)

// withClient attaches the caller's address and User-Agent to the request
// context. RemoteAddr has already been rewritten by TrustedRealIP.
func withClient(r *http.Request) context.Context {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return core.ContextWithClient(r.Context(), core.ClientInfo{
		IP:        ip,
		UserAgent: r.UserAgent(),
	})
}
