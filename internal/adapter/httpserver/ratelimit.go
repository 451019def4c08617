package httpserver

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/httprate"

	"github.com/ParthivReddyY/ai-interviewer/internal/service/ratelimiter"
)

// RateLimit enforces l per client IP. Limiter errors let the request through.
func RateLimit(l ratelimiter.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, err := httprate.KeyByIP(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			allowed, retryAfter, err := l.Allow(r.Context(), key, 1)
			if err != nil {
				LoggerFrom(r).Warn("rate limiter unavailable", slog.Any("error", err))
			}
			if allowed {
				next.ServeHTTP(w, r)
				return
			}
			secs := int(math.Ceil(retryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			writeJSON(w, http.StatusTooManyRequests, errorEnvelope{Error: apiError{
				Code:    "RATE_LIMITED",
				Message: http.StatusText(http.StatusTooManyRequests),
				Details: map[string]int{"retry_after_seconds": secs},
			}})
		})
	}
}
