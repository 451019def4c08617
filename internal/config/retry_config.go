package config

import (
	"time"
)

// BackoffConfig holds the gateway delay policy:
// delay = min(MaxDelay, base*2^attempt + jitter), base depending on the error class.
type BackoffConfig struct {
	// RateLimitBase is the base delay after rate-limit/quota errors
	RateLimitBase time.Duration
	// Base is the base delay after other transient errors
	Base time.Duration
	// MaxDelay caps a single wait
	MaxDelay time.Duration
	// MaxJitter bounds the random component added to each wait
	MaxJitter time.Duration
}

// RetryBudgets holds attempts-per-credential for each AI-backed operation.
type RetryBudgets struct {
	Questions  int
	Batch      int
	Individual int
	Quick      int
	Summary    int
	Resume     int
}

// GetBackoffConfig returns the backoff policy appropriate for the current environment.
// In test environments, uses much shorter delays for faster test execution.
func (c Config) GetBackoffConfig() BackoffConfig {
	if c.IsTest() {
		return BackoffConfig{
			RateLimitBase: 50 * time.Millisecond,
			Base:          20 * time.Millisecond,
			MaxDelay:      200 * time.Millisecond,
			MaxJitter:     10 * time.Millisecond,
		}
	}
	return BackoffConfig{
		RateLimitBase: c.AIBackoffRateLimitBase,
		Base:          c.AIBackoffBase,
		MaxDelay:      c.AIBackoffMaxDelay,
		MaxJitter:     c.AIBackoffMaxJitter,
	}
}

// GetRetryBudgets returns the per-operation retry budgets, each at least 1.
func (c Config) GetRetryBudgets() RetryBudgets {
	return RetryBudgets{
		Questions:  atLeastOne(c.AIRetriesQuestions),
		Batch:      atLeastOne(c.AIRetriesBatch),
		Individual: atLeastOne(c.AIRetriesIndividual),
		Quick:      atLeastOne(c.AIRetriesQuick),
		Summary:    atLeastOne(c.AIRetriesSummary),
		Resume:     atLeastOne(c.AIRetriesResume),
	}
}

// DefaultRetryBudgets mirrors the envDefault values of Config.
func DefaultRetryBudgets() RetryBudgets {
	return RetryBudgets{Questions: 2, Batch: 2, Individual: 2, Quick: 1, Summary: 1, Resume: 2}
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
