// Package middleware provides reusable HTTP middleware for the API server.
package middleware

import (
	"log"
	"net/http"
	"time"
)

// wrappedWriter captures the status code written by downstream handlers.
type wrappedWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *wrappedWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Logger logs method, path, caller id, status code, and duration for every
// request. The caller id is whatever x-user-id the client supplied; it is
// trusted as-is, the same way the rate limiter trusts it.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &wrappedWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)

		user := r.Header.Get("x-user-id")
		if user == "" {
			user = "anonymous"
		}
		log.Printf("%s %s user=%s %d %s", r.Method, r.URL.Path, user, ww.statusCode, time.Since(start))
	})
}
