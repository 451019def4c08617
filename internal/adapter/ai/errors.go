package ai

import (
	"errors"
	"fmt"
	"time"

	"github.com/ParthivReddyY/ai-interviewer/internal/domain"
)

// ErrorClass tells the gateway whether another attempt on the same credential is worthwhile.
type ErrorClass string

const (
	ErrorClassRetryable ErrorClass = "retryable"
	ErrorClassFatal     ErrorClass = "fatal"
)

// Reason is the finer-grained cause behind an ErrorClass.
type Reason string

const (
	ReasonRateLimit   Reason = "rate_limit"
	ReasonUnavailable Reason = "unavailable"
	ReasonTimeout     Reason = "timeout"
	ReasonNetwork     Reason = "network"
	ReasonServer      Reason = "server_error"
	ReasonEmpty       Reason = "empty_response"
	ReasonCanceled    Reason = "canceled"
	ReasonRejected    Reason = "rejected"
)

// highDemand reports whether the reason means the service is overloaded rather than broken.
func (r Reason) highDemand() bool {
	return r == ReasonRateLimit || r == ReasonUnavailable
}

// ServiceError is returned by completion clients for any failed call.
// StatusCode is 0 when the failure happened before an HTTP status was known.
type ServiceError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Message)
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	if e.Err != nil && e.StatusCode == 0 {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ServiceError) Unwrap() error { return e.Err }

// ExtractionError means no well-formed structure of the requested shape was found.
type ExtractionError struct {
	Shape   Shape
	Reason  string
	Snippet string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %s", e.Shape, e.Reason)
}

func (e *ExtractionError) Unwrap() error { return domain.ErrExtraction }

// CompletionAttempt records one failed call made by the gateway.
type CompletionAttempt struct {
	CredentialIndex int
	AttemptNumber   int
	Class           ErrorClass
	Reason          Reason
	// Delay is the wait scheduled after this attempt; zero when none followed.
	Delay time.Duration
	Err   error
}

// ExhaustedError is returned when every credential and attempt failed.
type ExhaustedError struct {
	Attempts    []CompletionAttempt
	Credentials int
	// HighDemand is set when any attempt failed with a rate-limit or
	// service-unavailable condition, so callers can suggest retrying later.
	HighDemand bool
	Last       error
}

func newExhaustedError(attempts []CompletionAttempt, credentials int, last error) *ExhaustedError {
	e := &ExhaustedError{Attempts: attempts, Credentials: credentials, Last: last}
	for _, a := range attempts {
		if a.Reason.highDemand() {
			e.HighDemand = true
			break
		}
	}
	return e
}

func (e *ExhaustedError) Error() string {
	if e.Credentials == 0 {
		return "AI service unavailable: no credentials configured"
	}
	if e.HighDemand {
		return fmt.Sprintf("AI service is experiencing temporary high demand (rate limited); please retry later: %d attempts across %d credentials failed: %v",
			len(e.Attempts), e.Credentials, e.Last)
	}
	return fmt.Sprintf("AI service unavailable: %d attempts across %d credentials failed: %v",
		len(e.Attempts), e.Credentials, e.Last)
}

// Unwrap exposes the upstream sentinel and the last underlying error.
func (e *ExhaustedError) Unwrap() []error {
	sentinel := domain.ErrUpstreamUnavailable
	if e.HighDemand {
		sentinel = domain.ErrUpstreamRateLimit
	}
	if e.Last == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Last}
}

// IsHighDemand reports whether err is an exhaustion caused by rate limits or unavailability.
func IsHighDemand(err error) bool {
	var ex *ExhaustedError
	return errors.As(err, &ex) && ex.HighDemand
}
