package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/curator/pkg/metrics"
)

// MetricsMiddleware wraps HTTP handlers to record Prometheus metrics.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		durationMs := float64(time.Since(start).Microseconds()) / 1000
		status := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, durationMs)

		if rec.status >= http.StatusBadRequest {
			kind, severity := classify(rec.status)
			metrics.RecordErrorByEndpoint(endpoint, r.Method, kind)
			metrics.RecordErrorByType(kind, severity)
		}
	}
}

// classify maps an error status onto the error type and severity labels.
func classify(status int) (kind, severity string) {
	switch {
	case status == http.StatusServiceUnavailable:
		return "unavailable", "high"
	case status >= http.StatusInternalServerError:
		return "server_error", "high"
	case status == http.StatusTooManyRequests:
		return "backpressure", "medium"
	case status == http.StatusNotFound:
		return "not_found", "low"
	case status >= http.StatusBadRequest:
		return "client_error", "low"
	default:
		return "unknown", "low"
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }
