// Package middleware holds the HTTP middleware shared by the API router.
package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// LoggingConfig contains logging middleware configuration
type LoggingConfig struct {
	Enabled              bool          `json:"enabled" mapstructure:"enabled"`
	ExcludePaths         []string      `json:"exclude_paths" mapstructure:"exclude_paths"`
	SlowRequestThreshold time.Duration `json:"slow_request_threshold" mapstructure:"slow_request_threshold"`
}

// LoggingMiddleware logs one entry per request
type LoggingMiddleware struct {
	config *LoggingConfig
	logger *logrus.Logger
}

// responseWriter wraps http.ResponseWriter to capture the status and size
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// NewLoggingMiddleware creates a new logging middleware
func NewLoggingMiddleware(config *LoggingConfig, logger *logrus.Logger) *LoggingMiddleware {
	if logger == nil {
		logger = logrus.New()
	}

	if config == nil {
		config = &LoggingConfig{
			Enabled:              true,
			ExcludePaths:         []string{"/health"},
			SlowRequestThreshold: time.Second,
		}
	}

	return &LoggingMiddleware{
		config: config,
		logger: logger,
	}
}

// Middleware returns the HTTP middleware function
func (lm *LoggingMiddleware) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lm.config.Enabled || lm.isExcluded(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapped := newResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			entry := lm.logger.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"query":       r.URL.RawQuery,
				"status":      wrapped.statusCode,
				"size":        wrapped.size,
				"duration_ms": duration.Milliseconds(),
				"remote_addr": clientIP(r),
				"request_id":  GetRequestID(r.Context()),
			})

			switch {
			case wrapped.statusCode >= http.StatusInternalServerError:
				entry.Error("HTTP request")
			case lm.config.SlowRequestThreshold > 0 && duration > lm.config.SlowRequestThreshold:
				entry.Warn("Slow HTTP request")
			default:
				entry.Info("HTTP request")
			}
		})
	}
}

func (lm *LoggingMiddleware) isExcluded(path string) bool {
	for _, excluded := range lm.config.ExcludePaths {
		if path == excluded {
			return true
		}
	}
	return false
}

// clientIP prefers the first X-Forwarded-For hop over the socket address
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
