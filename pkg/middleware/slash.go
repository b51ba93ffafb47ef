package middleware

import (
	"net/http"
	"strings"
)

// TrimSlash canonicalizes paths that end in a slash. GET and HEAD requests are
// redirected to the trimmed path with 301. Other methods are served at the
// trimmed path directly so upload and JSON bodies are not sent twice or lost
// to a redirect that clients replay as GET. The root path "/" is untouched.
func TrimSlash() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if len(path) <= 1 || !strings.HasSuffix(path, "/") {
				next.ServeHTTP(w, r)
				return
			}

			trimmed := strings.TrimRight(path, "/")
			if trimmed == "" {
				trimmed = "/"
			}

			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				target := trimmed
				if r.URL.RawQuery != "" {
					target += "?" + r.URL.RawQuery
				}
				http.Redirect(w, r, target, http.StatusMovedPermanently)
				return
			}

			r2 := r.Clone(r.Context())
			r2.URL.Path = trimmed
			r2.URL.RawPath = ""
			next.ServeHTTP(w, r2)
		})
	}
}
