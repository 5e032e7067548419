package router

import (
	"net"
	"net/http"
	"strings"
)

// ipHeaders are consulted in order; the first parseable address wins.
var ipHeaders = []string{"True-Client-IP", "X-Real-IP", "X-Forwarded-For"}

// middlewareIP rewrites RemoteAddr to the bare client address so rate limits
// and logs key on the caller rather than the proxy.
func middlewareIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := realIP(r); ip != "" {
			r.RemoteAddr = ip
		}
		next.ServeHTTP(w, r)
	})
}

func realIP(r *http.Request) string {
	for _, h := range ipHeaders {
		v, _, _ := strings.Cut(r.Header.Get(h), ",")
		if ip := parseAddr(strings.TrimSpace(v)); ip != "" {
			return ip
		}
	}
	return parseAddr(r.RemoteAddr)
}

// parseAddr accepts "ip" or "ip:port" and returns the ip.
func parseAddr(v string) string {
	if v == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(v); err == nil {
		v = host
	}
	if net.ParseIP(v) == nil {
		return ""
	}
	return v
}
