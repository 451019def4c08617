package ai

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
)

var (
	rateLimitHints   = []string{"429", "rate limit", "rate-limit", "ratelimit", "quota", "too many requests", "resource_exhausted", "resource exhausted"}
	unavailableHints = []string{"503", "502", "service unavailable", "unavailable", "overloaded", "bad gateway"}
	timeoutHints     = []string{"504", "timeout", "timed out", "deadline exceeded"}
	networkHints     = []string{"connection refused", "connection reset", "broken pipe", "no such host", "eof", "econnreset", "network", "tls handshake"}
)

// Classify decides whether a completion failure is worth retrying.
// Rate limits, unavailability, timeouts, network blips and 5xx responses are
// retryable; anything else (bad request, auth, not found) is fatal.
func Classify(err error) (ErrorClass, Reason) {
	if err == nil {
		return "", ""
	}
	if errors.Is(err, context.Canceled) {
		return ErrorClassFatal, ReasonCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorClassRetryable, ReasonTimeout
	}

	var se *ServiceError
	if errors.As(err, &se) && se.StatusCode > 0 {
		return classifyStatus(se.StatusCode, se.Message)
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrorClassRetryable, ReasonTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrorClassRetryable, ReasonNetwork
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrorClassRetryable, ReasonNetwork
	}
	if errors.As(err, &se) && se.StatusCode == 0 && strings.Contains(strings.ToLower(se.Message), "empty completion") {
		return ErrorClassRetryable, ReasonEmpty
	}
	return classifyMessage(err.Error())
}

func classifyStatus(code int, msg string) (ErrorClass, Reason) {
	switch {
	case code == http.StatusTooManyRequests:
		return ErrorClassRetryable, ReasonRateLimit
	case code == http.StatusServiceUnavailable || code == http.StatusBadGateway:
		return ErrorClassRetryable, ReasonUnavailable
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return ErrorClassRetryable, ReasonTimeout
	case code >= 500:
		return ErrorClassRetryable, ReasonServer
	}
	// Some providers report exhausted quota as 400/403.
	if containsAny(strings.ToLower(msg), rateLimitHints) {
		return ErrorClassRetryable, ReasonRateLimit
	}
	return ErrorClassFatal, ReasonRejected
}

func classifyMessage(msg string) (ErrorClass, Reason) {
	m := strings.ToLower(msg)
	switch {
	case containsAny(m, rateLimitHints):
		return ErrorClassRetryable, ReasonRateLimit
	case containsAny(m, unavailableHints):
		return ErrorClassRetryable, ReasonUnavailable
	case containsAny(m, timeoutHints):
		return ErrorClassRetryable, ReasonTimeout
	case containsAny(m, networkHints):
		return ErrorClassRetryable, ReasonNetwork
	}
	return ErrorClassFatal, ReasonRejected
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
