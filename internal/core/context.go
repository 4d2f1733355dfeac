package core

import "context"

type contextKey string

const ctxKeyClient contextKey = "fetch_client"

// ClientInfo identifies the caller behind a fetch for the history log.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// ContextWithClient attaches the caller to ctx.
func ContextWithClient(ctx context.Context, c ClientInfo) context.Context {
	return context.WithValue(ctx, ctxKeyClient, c)
}

// ClientFromContext returns the caller attached by ContextWithClient, or the
// zero ClientInfo.
func ClientFromContext(ctx context.Context) ClientInfo {
	if c, ok := ctx.Value(ctxKeyClient).(ClientInfo); ok {
		return c
	}
	return ClientInfo{}
}
