package middlewares

import (
	"net/http"
)

// RequestSizeLimitMiddleware rejects bodies larger than maxRequestSize bytes
func RequestSizeLimitMiddleware(maxRequestSize int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxRequestSize {
				writeDetail(w, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}

			// Chunked bodies have no ContentLength, cap the reader instead
			r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
			next.ServeHTTP(w, r)
		})
	}
}
