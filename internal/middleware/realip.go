package middleware

import (
	"net"
	"net/http"
	"strings"
)

// proxyTrust holds the set of proxy addresses whose forwarding headers we
// believe. Entries are single IPs or CIDR ranges.
type proxyTrust struct {
	nets []*net.IPNet
	ips  []net.IP
}

func newProxyTrust(entries []string) *proxyTrust {
	t := &proxyTrust{}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			if _, network, err := net.ParseCIDR(entry); err == nil {
				t.nets = append(t.nets, network)
				continue
			}
		}
		if ip := net.ParseIP(entry); ip != nil {
			t.ips = append(t.ips, ip)
		}
	}
	return t
}

func (t *proxyTrust) trusts(addr string) bool {
	if len(t.nets) == 0 && len(t.ips) == 0 {
		return false
	}
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, network := range t.nets {
		if network.Contains(ip) {
			return true
		}
	}
	for _, trusted := range t.ips {
		if trusted.Equal(ip) {
			return true
		}
	}
	return false
}

// RealIPMiddleware restores the client IP on requests arriving through a
// trusted reverse proxy. Forwarding headers from untrusted peers are
// ignored so a direct caller cannot spoof its own address.
type RealIPMiddleware struct {
	trust *proxyTrust
}

// NewRealIPMiddleware accepts trusted proxies as IPs or CIDRs.
func NewRealIPMiddleware(trustedProxies []string) *RealIPMiddleware {
	return &RealIPMiddleware{trust: newProxyTrust(trustedProxies)}
}

// Handler stamps X-Real-IP with the resolved client address.
func (m *RealIPMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := m.clientIP(r); ip != "" {
			r.Header.Set("X-Real-IP", ip)
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the peer address, or the forwarded client address when
// the peer is a trusted proxy. CF-Connecting-IP wins over X-Forwarded-For
// since the CDN sets it last.
func (m *RealIPMiddleware) clientIP(r *http.Request) string {
	peer := stripPort(r.RemoteAddr)
	if !m.trust.trusts(peer) {
		return peer
	}

	if cfIP := r.Header.Get("CF-Connecting-IP"); cfIP != "" {
		return strings.TrimSpace(cfIP)
	}

	// First entry of X-Forwarded-For is the original client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	return peer
}

// stripPort drops the port from a host:port RemoteAddr. Bare IPs (IPv6
// without a port) pass through unchanged.
func stripPort(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
