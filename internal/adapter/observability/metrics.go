package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 30, 60},
		},
		[]string{"route", "method"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of completion attempts by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "Completion attempt duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"provider"},
	)
	AIRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_retries_total",
			Help: "Total number of backoff waits by provider and failure reason",
		},
		[]string{"provider", "reason"},
	)
	AIExhaustedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_exhausted_total",
			Help: "Total number of completions that exhausted every credential",
		},
		[]string{"cause"},
	)
	AITokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_total",
			Help: "Estimated tokens exchanged with the completion service",
		},
		[]string{"provider", "kind"},
	)

	FallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallbacks_total",
			Help: "Total number of results produced by the deterministic fallback path",
		},
		[]string{"operation", "cause"},
	)
	ResumeParsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_parses_total",
			Help: "Total number of parsed resumes by parsing method",
		},
		[]string{"method"},
	)

	// Evaluation outcome distributions
	OverallScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evaluation_overall_score",
			Help:    "Distribution of overall interview scores ([0,10])",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
	)
)

var registerOnce sync.Once

// InitMetrics registers all collectors with the default registry. Safe to call more than once.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			AIRequestsTotal,
			AIRequestDuration,
			AIRetriesTotal,
			AIExhaustedTotal,
			AITokensTotal,
			FallbacksTotal,
			ResumeParsesTotal,
			OverallScoreHistogram,
		)
	})
}

// RoutePattern returns the chi route pattern matched by r, or its path when
// the request was not routed by chi.
func RoutePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		route := RoutePattern(r)
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// ObserveCompletion records one completion attempt.
func ObserveCompletion(provider, outcome string, d time.Duration) {
	AIRequestsTotal.WithLabelValues(provider, outcome).Inc()
	AIRequestDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveRetry records a backoff wait before the next attempt.
func ObserveRetry(provider, reason string) {
	AIRetriesTotal.WithLabelValues(provider, reason).Inc()
}

// ObserveExhausted records a completion that failed on every credential.
func ObserveExhausted(highDemand bool) {
	cause := "other"
	if highDemand {
		cause = "high_demand"
	}
	AIExhaustedTotal.WithLabelValues(cause).Inc()
}

// ObserveTokens records prompt and completion token estimates.
func ObserveTokens(provider string, prompt, completion int) {
	if prompt > 0 {
		AITokensTotal.WithLabelValues(provider, "prompt").Add(float64(prompt))
	}
	if completion > 0 {
		AITokensTotal.WithLabelValues(provider, "completion").Add(float64(completion))
	}
}

// ObserveFallback records a result produced without the completion service.
func ObserveFallback(operation, cause string) {
	FallbacksTotal.WithLabelValues(operation, cause).Inc()
}

// ObserveResumeParse records the method that produced a resume profile.
func ObserveResumeParse(method string) {
	ResumeParsesTotal.WithLabelValues(method).Inc()
}

// ObserveOverallScore records the overall score of an evaluated interview.
func ObserveOverallScore(score float64) {
	if score >= 0 && score <= 10 {
		OverallScoreHistogram.Observe(score)
	}
}
