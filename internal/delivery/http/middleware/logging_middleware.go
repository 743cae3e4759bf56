package middleware

import (
	"net/http"
	"strconv"
	"time"

	"medibook/pkg/metrics"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-ID"

// responseWriter captures the status code written by the handler
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs one line per request and echoes or assigns a request id.
func RequestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			entry := log.WithFields(logrus.Fields{
				"request_id":  requestID,
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      wrapped.statusCode,
				"duration_ms": time.Since(start).Milliseconds(),
			})
			if wrapped.statusCode >= http.StatusInternalServerError {
				entry.Warn("HTTP request failed")
				return
			}
			entry.Info("HTTP request completed")
		})
	}
}

// Prometheus records request count and latency per route template, so path
// parameters do not explode label cardinality.
func Prometheus(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		metrics.RecordHTTPRequest(r.Method, route, strconv.Itoa(wrapped.statusCode), time.Since(start).Seconds())
	})
}
