package middleware

import "net/http"

// DefaultMaxBodyBytes is the default maximum request body size (1 MiB).
// Flowchart payloads are JSON documents; anything larger is rejected.
const DefaultMaxBodyBytes = 1 << 20

// MaxBytes caps the request body size. Bodies over maxBytes make reads fail
// and the client receives 413. Apply to routes that accept a body.
func MaxBytes(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
