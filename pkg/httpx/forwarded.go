package httpx

import (
	"net/http"
	"strings"
)

// ForwardedHost returns the first X-Forwarded-Host value, or "".
func ForwardedHost(r *http.Request) string {
	return firstListValue(r.Header.Get("X-Forwarded-Host"))
}

// ForwardedProto returns the first X-Forwarded-Proto value lower-cased, or "".
func ForwardedProto(r *http.Request) string {
	return strings.ToLower(firstListValue(r.Header.Get("X-Forwarded-Proto")))
}

func firstListValue(v string) string {
	if v == "" {
		return ""
	}
	first, _, _ := strings.Cut(v, ",")
	return strings.TrimSpace(first)
}
