package middleware

import (
	"net/http"
	"strings"
)

// DefaultDenied are path fragments never served from the static root.
var DefaultDenied = []string{
	".env",
	".git",
	"go.mod",
	"go.sum",
	".go",
	"data.json.tmp",
	"config",
	"DESIGN.md",
}

// Deny answers 403 for any request whose path contains one of the fragments,
// compared case-insensitively.
func Deny(fragments ...string) func(http.Handler) http.Handler {
	lowered := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f != "" {
			lowered = append(lowered, strings.ToLower(f))
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := strings.ToLower(r.URL.Path)
			for _, f := range lowered {
				if strings.Contains(p, f) {
					http.Error(w, "access denied", http.StatusForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
