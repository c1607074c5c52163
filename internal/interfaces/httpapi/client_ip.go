package httpapi

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// proxy headers in trust order; RemoteAddr is the last resort
var clientIPHeaders = []string{"Fly-Client-IP", "X-Forwarded-For", "X-Real-IP"}

func clientIP(r *http.Request) string {
	for _, header := range clientIPHeaders {
		if addr, ok := parseClientAddr(r.Header.Get(header)); ok {
			return addr.String()
		}
	}
	if addr, ok := parseClientAddr(r.RemoteAddr); ok {
		return addr.String()
	}
	return ""
}

// parseClientAddr takes the left-most entry of a forwarded list and strips
// an optional port.
func parseClientAddr(raw string) (netip.Addr, bool) {
	first, _, _ := strings.Cut(raw, ",")
	first = strings.TrimSpace(first)
	if host, _, err := net.SplitHostPort(first); err == nil {
		first = host
	}
	addr, err := netip.ParseAddr(first)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}
