package web

import (
	"context"
	"net"
	"net/http"

	"github.com/celled/celled/internal/core"
)

// WithRequestMetadata stamps the caller's IP and User-Agent onto the context
// for the audit trail. The port is stripped here so audit rows carry a bare
// address no matter how the listener reports RemoteAddr.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ip := r.RemoteAddr // already resolved by the TrustedRealIP middleware
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	ctx = core.ContextWithIPAddress(ctx, ip)
	return core.ContextWithUserAgent(ctx, r.Header.Get("User-Agent"))
}
