package ai

import (
	"math/rand/v2"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ParthivReddyY/ai-interviewer/internal/config"
)

// maxShift keeps base<<attempt from overflowing.
const maxShift = 16

// DelayPolicy computes the wait between attempts on one credential:
// min(MaxDelay, base*2^attempt + jitter), where base is RateLimitBase after a
// rate-limit failure and Base otherwise.
type DelayPolicy struct {
	RateLimitBase time.Duration
	Base          time.Duration
	MaxDelay      time.Duration
	MaxJitter     time.Duration
}

// DefaultDelayPolicy returns the production delay policy.
func DefaultDelayPolicy() DelayPolicy {
	return DelayPolicy{
		RateLimitBase: 5 * time.Second,
		Base:          2 * time.Second,
		MaxDelay:      30 * time.Second,
		MaxJitter:     time.Second,
	}
}

// DelayPolicyFromConfig maps the configured backoff knobs.
func DelayPolicyFromConfig(bc config.BackoffConfig) DelayPolicy {
	return DelayPolicy{
		RateLimitBase: bc.RateLimitBase,
		Base:          bc.Base,
		MaxDelay:      bc.MaxDelay,
		MaxJitter:     bc.MaxJitter,
	}
}

// Delay returns the wait after the given 1-based attempt failed for reason.
func (p DelayPolicy) Delay(attempt int, reason Reason, jitter time.Duration) time.Duration {
	base := p.Base
	if reason == ReasonRateLimit {
		base = p.RateLimitBase
	}
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxShift {
		attempt = maxShift
	}
	d := base<<uint(attempt) + jitter
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// randomJitter draws a jitter in [0, limit).
func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(limit)))
}

// attemptBackOff is the per-credential state of the retry state machine. The
// operation records the attempt number and failure reason before the retry
// loop asks for the next delay.
type attemptBackOff struct {
	policy  DelayPolicy
	jitter  func() time.Duration
	attempt int
	reason  Reason
}

var _ backoff.BackOff = (*attemptBackOff)(nil)

func (b *attemptBackOff) NextBackOff() time.Duration {
	return b.policy.Delay(b.attempt, b.reason, b.jitter())
}

func (b *attemptBackOff) Reset() {
	b.attempt = 0
	b.reason = ""
}
