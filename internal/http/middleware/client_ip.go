package middleware

import (
	"net"
	"net/http"
	"strings"
)

// parseRequestIP reads the peer address. Forwarded headers are resolved
// earlier by chi's RealIP middleware.
func parseRequestIP(r *http.Request) net.IP {
	addr := strings.TrimSpace(r.RemoteAddr)
	if addr == "" {
		return nil
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	return net.ParseIP(strings.Trim(addr, "[]"))
}
