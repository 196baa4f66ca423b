package api

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"

	domainerrors "github.com/lifelogapp/lifelog-server/internal/errors"
	"github.com/lifelogapp/lifelog-server/internal/ratelimit"
)

// WriteRateLimitMiddleware rate limits mutating requests (POST, PUT, PATCH,
// DELETE) per client IP. Reads pass through untouched.
// Over-limit requests get 429 with a RATE_LIMITED envelope.
func WriteRateLimitMiddleware(limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isWrite(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			key := getClientIP(r)
			if !limiter.Allow(key) {
				logger.Warn("rate limit exceeded",
					"ip", key,
					"method", r.Method,
					"path", r.URL.Path,
				)
				writeRateLimited(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func writeRateLimited(w http.ResponseWriter) {
	apiErr := fromDomain(domainerrors.RateLimited("too many requests, please try again later"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(apiErr.GetStatus())
	_ = json.NewEncoder(w).Encode(errorEnvelope(apiErr))
}

// getClientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
