package middleware

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyHeader carries the shared key for internal endpoints
const APIKeyHeader = "X-API-Key"

// APIKeyMiddleware requires the X-API-Key header to match apiKey.
// An empty apiKey rejects every request.
func APIKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			providedKey := r.Header.Get(APIKeyHeader)
			if apiKey == "" || providedKey == "" ||
				subtle.ConstantTimeCompare([]byte(providedKey), []byte(apiKey)) != 1 {
				writeDetail(w, http.StatusUnauthorized, "Invalid or missing API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
