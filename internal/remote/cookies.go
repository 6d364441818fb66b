package remote

import (
	"net/http"
	"net/url"
	"strings"
)

// CookieValue finds name in a Cookie header style string ("a=1; b=2") and returns its
// URL-decoded value. The first match wins.
func CookieValue(header, name string) (string, bool) {
	if strings.TrimSpace(header) == "" || name == "" {
		return "", false
	}
	prefix := name + "="
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(part, prefix) {
			continue
		}
		raw := part[len(prefix):]
		v, err := url.PathUnescape(raw)
		if err != nil {
			return raw, true
		}
		return v, true
	}
	return "", false
}

// parseCookieHeader turns a user-supplied Cookie header into cookies scoped to the
// server root.
func parseCookieHeader(header string) []*http.Cookie {
	var out []*http.Cookie
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		name, value, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		out = append(out, &http.Cookie{Name: strings.TrimSpace(name), Value: value, Path: "/"})
	}
	return out
}

func cookieHeader(cookies []*http.Cookie) string {
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}
