package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
)

// ============================================================================
// TrustedRealIP Tests
// ============================================================================

// resolvedAddr runs one request through the middleware and reports the
// RemoteAddr the inner handler observed.
func resolvedAddr(t *testing.T, trusted []string, remoteAddr string, headers map[string]string) string {
	t.Helper()

	var got string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.RemoteAddr
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	TrustedRealIP(trusted)(inner).ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "no trusted proxies keeps remote addr",
			trusted:    nil,
			remoteAddr: "127.0.0.1:9999",
			headers:    map[string]string{"X-Real-IP": "203.0.113.9"},
			want:       "127.0.0.1:9999",
		},
		{
			name:       "trusted proxy with X-Real-IP",
			trusted:    []string{"127.0.0.1"},
			remoteAddr: "127.0.0.1:9999",
			headers:    map[string]string{"X-Real-IP": "203.0.113.9"},
			want:       "203.0.113.9",
		},
		{
			name:       "trusted CIDR with X-Forwarded-For chain",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:4567",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.1"},
			want:       "198.51.100.7",
		},
		{
			name:       "untrusted connection ignores headers",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "192.0.2.50:1234",
			headers:    map[string]string{"X-Real-IP": "203.0.113.9"},
			want:       "192.0.2.50:1234",
		},
		{
			name:       "trusted proxy without headers keeps remote addr",
			trusted:    []string{"127.0.0.1"},
			remoteAddr: "127.0.0.1:9999",
			headers:    nil,
			want:       "127.0.0.1:9999",
		},
		{
			name:       "malformed X-Real-IP does not fall back to forwarded chain",
			trusted:    []string{"127.0.0.1"},
			remoteAddr: "127.0.0.1:9999",
			headers: map[string]string{
				"X-Real-IP":       "not-an-ip",
				"X-Forwarded-For": "198.51.100.7",
			},
			want: "127.0.0.1:9999",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolvedAddr(t, tt.trusted, tt.remoteAddr, tt.headers)
			if got != tt.want {
				t.Errorf("expected RemoteAddr %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParsePrefixes(t *testing.T) {
	tests := []struct {
		name  string
		cidrs []string
		want  int
	}{
		{"empty list", nil, 0},
		{"cidr", []string{"10.0.0.0/8"}, 1},
		{"bare IP becomes single-address prefix", []string{"192.168.1.1"}, 1},
		{"invalid entries skipped", []string{"not-a-cidr", ""}, 0},
		{"mixed", []string{"10.0.0.0/8", "bogus", "127.0.0.1"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsePrefixes(tt.cidrs)
			if len(got) != tt.want {
				t.Errorf("expected %d prefixes, got %d: %v", tt.want, len(got), got)
			}
		})
	}

	prefixes := parsePrefixes([]string{"192.168.1.1"})
	if prefixes[0].Bits() != 32 {
		t.Errorf("expected /32 for a bare IPv4 address, got /%d", prefixes[0].Bits())
	}
}

func TestHeaderIP(t *testing.T) {
	newReq := func(headers map[string]string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		for k, v := range headers {
			r.Header.Set(k, v)
		}
		return r
	}

	t.Run("no headers", func(t *testing.T) {
		if ip := headerIP(newReq(nil)); ip.IsValid() {
			t.Errorf("expected zero Addr, got %v", ip)
		}
	})

	t.Run("X-Real-IP wins over X-Forwarded-For", func(t *testing.T) {
		ip := headerIP(newReq(map[string]string{
			"X-Real-IP":       "203.0.113.9",
			"X-Forwarded-For": "198.51.100.7",
		}))
		if ip.String() != "203.0.113.9" {
			t.Errorf("expected 203.0.113.9, got %v", ip)
		}
	})

	t.Run("first forwarded entry", func(t *testing.T) {
		ip := headerIP(newReq(map[string]string{
			"X-Forwarded-For": " 198.51.100.7 , 10.0.0.1",
		}))
		if ip.String() != "198.51.100.7" {
			t.Errorf("expected 198.51.100.7, got %v", ip)
		}
	})

	t.Run("malformed forwarded entry", func(t *testing.T) {
		if ip := headerIP(newReq(map[string]string{"X-Forwarded-For": "garbage"})); ip.IsValid() {
			t.Errorf("expected zero Addr, got %v", ip)
		}
	})
}

func TestAddrFromHostPort(t *testing.T) {
	if a, err := addrFromHostPort("10.1.2.3:4567"); err != nil || a.String() != "10.1.2.3" {
		t.Errorf("expected 10.1.2.3, got %v (err %v)", a, err)
	}
	if a, err := addrFromHostPort("10.1.2.3"); err != nil || a.String() != "10.1.2.3" {
		t.Errorf("expected bare IP accepted, got %v (err %v)", a, err)
	}
	if _, err := addrFromHostPort("garbage"); err == nil {
		t.Error("expected an error for a non-address")
	}
}

func TestIsTrusted(t *testing.T) {
	trusted := parsePrefixes([]string{"10.0.0.0/8"})

	if !isTrusted(netip.MustParseAddr("10.42.0.1"), trusted) {
		t.Error("expected in-range address to be trusted")
	}
	if isTrusted(netip.MustParseAddr("192.0.2.1"), trusted) {
		t.Error("expected out-of-range address to be untrusted")
	}
	// Listeners report IPv4 peers as 4-in-6 mapped addresses.
	if !isTrusted(netip.MustParseAddr("::ffff:10.42.0.1"), trusted) {
		t.Error("expected mapped IPv4 address to be trusted")
	}
}

// ============================================================================
// APIKeyAuth Tests
// ============================================================================

func TestIsValidAPIKey(t *testing.T) {
	keys := []string{"alpha", "beta"}

	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"first key matches", "alpha", true},
		{"second key matches", "beta", true},
		{"unknown key", "gamma", false},
		{"empty key", "", false},
		{"prefix does not match", "alph", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isValidAPIKey(tt.key, keys); got != tt.want {
				t.Errorf("isValidAPIKey(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}

	if isValidAPIKey("anything", nil) {
		t.Error("expected no configured keys to reject everything")
	}
}
