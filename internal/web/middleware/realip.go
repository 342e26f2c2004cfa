package middleware

import (
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
)

// TrustedRealIP extracts the real client IP from X-Real-IP or X-Forwarded-For
// headers, but only when the request arrives from a trusted proxy CIDR. With
// no trusted proxies configured, or a connection from outside them, the
// original RemoteAddr stands. Untrusted clients therefore cannot spoof their
// IP to dodge rate limiting or pollute the audit trail.
func TrustedRealIP(trustedCIDRs []string) func(http.Handler) http.Handler {
	trusted := parsePrefixes(trustedCIDRs)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remote, err := addrFromHostPort(r.RemoteAddr)
			if err == nil && isTrusted(remote, trusted) {
				if ip := headerIP(r); ip.IsValid() {
					r.RemoteAddr = ip.String()
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// parsePrefixes parses CIDRs once at startup. Bare IPs are accepted as
// single-address prefixes.
func parsePrefixes(cidrs []string) []netip.Prefix {
	var prefixes []netip.Prefix
	for _, cidr := range cidrs {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}

		if p, err := netip.ParsePrefix(cidr); err == nil {
			prefixes = append(prefixes, p)
			continue
		}
		if a, err := netip.ParseAddr(cidr); err == nil {
			prefixes = append(prefixes, netip.PrefixFrom(a, a.BitLen()))
			continue
		}
		slog.Warn("realip: invalid trusted proxy CIDR, skipping", "cidr", cidr)
	}
	return prefixes
}

// headerIP returns the client address claimed by proxy headers. X-Real-IP
// wins; otherwise the first entry of the X-Forwarded-For chain is used.
// Malformed values yield the zero Addr.
func headerIP(r *http.Request) netip.Addr {
	if rip := r.Header.Get("X-Real-IP"); rip != "" {
		if a, err := netip.ParseAddr(strings.TrimSpace(rip)); err == nil {
			return a
		}
		return netip.Addr{}
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		candidate := xff
		if idx := strings.Index(xff, ","); idx > 0 {
			candidate = xff[:idx]
		}
		if a, err := netip.ParseAddr(strings.TrimSpace(candidate)); err == nil {
			return a
		}
	}
	return netip.Addr{}
}

// addrFromHostPort parses the connection source, accepting both host:port
// and bare IP forms.
func addrFromHostPort(remoteAddr string) (netip.Addr, error) {
	if ap, err := netip.ParseAddrPort(remoteAddr); err == nil {
		return ap.Addr(), nil
	}
	return netip.ParseAddr(remoteAddr)
}

// isTrusted checks whether an address falls inside any trusted prefix.
func isTrusted(addr netip.Addr, trusted []netip.Prefix) bool {
	for _, p := range trusted {
		if p.Contains(addr.Unmap()) {
			return true
		}
	}
	return false
}
