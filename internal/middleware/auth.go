package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const AdminKeyHeader = "X-Admin-Key"

// AdminKey guards mutating routes. An empty key disables the guard so local
// setups keep working without configuration.
func AdminKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(AdminKeyHeader)
			if got == "" {
				got = strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
			}
			if got == "" {
				writeError(w, http.StatusUnauthorized, "missing admin key")
				return
			}
			// constant-time comparison
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				writeError(w, http.StatusUnauthorized, "invalid admin key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
