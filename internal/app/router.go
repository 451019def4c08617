package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpserver "github.com/ParthivReddyY/ai-interviewer/internal/adapter/httpserver"
	"github.com/ParthivReddyY/ai-interviewer/internal/adapter/observability"
	"github.com/ParthivReddyY/ai-interviewer/internal/config"
	"github.com/ParthivReddyY/ai-interviewer/internal/service/ratelimiter"
)

// ParseOrigins splits a comma-separated origin list into a slice, trimming spaces.
// If the input is empty, returns ["*"].
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// BuildRouter constructs the HTTP handler with all middlewares and routes.
// A non-nil limiter is shared across instances; otherwise requests are
// limited per process.
func BuildRouter(cfg config.Config, srv *httpserver.Server, limiter ratelimiter.Limiter) http.Handler {
	r := chi.NewRouter()
	// Tracing runs before RequestID so request loggers carry the trace id.
	r.Use(httpserver.Recoverer())
	r.Use(httpserver.TraceMiddleware)
	r.Use(httpserver.RequestID())
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Generator endpoints: rate limited, size capped and bounded in time.
	r.Group(func(wr chi.Router) {
		switch {
		case limiter != nil:
			wr.Use(httpserver.RateLimit(limiter))
		case cfg.RateLimitPerMin > 0:
			wr.Use(httprate.LimitByIP(cfg.RateLimitPerMin, time.Minute))
		}
		wr.Use(httpserver.BodyLimit(cfg.MaxRequestKB * 1024))
		if cfg.HTTPRequestTimeout > 0 {
			wr.Use(httpserver.TimeoutMiddleware(cfg.HTTPRequestTimeout))
		}
		wr.Post("/v1/questions", srv.QuestionsHandler())
		wr.Post("/v1/evaluations", srv.EvaluateHandler())
		wr.Post("/v1/evaluations/quick", srv.QuickEvaluateHandler())
		wr.Post("/v1/summary", srv.SummaryHandler())
		wr.Post("/v1/resume/parse", srv.ParseResumeHandler())
	})

	r.Get("/healthz", srv.HealthzHandler())
	r.Get("/readyz", srv.ReadyzHandler())
	r.Handle("/metrics", promhttp.Handler())

	return httpserver.SecurityHeaders(r)
}
