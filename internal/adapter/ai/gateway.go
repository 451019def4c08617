// Package ai implements the resilient completion gateway and the extraction
// of structured values from model output.
package ai

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ParthivReddyY/ai-interviewer/internal/adapter/ai/tokencount"
	"github.com/ParthivReddyY/ai-interviewer/internal/adapter/observability"
	"github.com/ParthivReddyY/ai-interviewer/internal/domain"
	obsctx "github.com/ParthivReddyY/ai-interviewer/internal/observability"
)

// Credential is one entry of the gateway's ordered failover list.
type Credential struct {
	Provider string
	Model    string
	Client   domain.Completer
}

// Gateway wraps completion clients with per-credential retry and failover.
// The credential list is fixed at construction and never mutated.
type Gateway struct {
	creds    []Credential
	policy   DelayPolicy
	jitter   func() time.Duration
	newTimer func() backoff.Timer
	tokens   *tokencount.Counter
	tracer   trace.Tracer
}

var _ domain.ResilientCompleter = (*Gateway)(nil)

// GatewayOption customizes a Gateway.
type GatewayOption func(*Gateway)

// WithDelayPolicy overrides the default delay policy.
func WithDelayPolicy(p DelayPolicy) GatewayOption {
	return func(g *Gateway) { g.policy = p }
}

// WithJitter overrides the jitter source. Tests pass a constant.
func WithJitter(f func() time.Duration) GatewayOption {
	return func(g *Gateway) { g.jitter = f }
}

// WithTimer overrides the timer used for backoff waits. Tests pass a fake
// timer that fires immediately.
func WithTimer(f func() backoff.Timer) GatewayOption {
	return func(g *Gateway) { g.newTimer = f }
}

// WithTokenCounter sets the counter used for token usage metrics. Nil disables counting.
func WithTokenCounter(c *tokencount.Counter) GatewayOption {
	return func(g *Gateway) { g.tokens = c }
}

// NewGateway builds a gateway over creds, tried in order.
func NewGateway(creds []Credential, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		creds:  append([]Credential(nil), creds...),
		policy: DefaultDelayPolicy(),
		tokens: tokencount.DefaultCounter,
		tracer: otel.Tracer("ai.gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.jitter == nil {
		maxJitter := g.policy.MaxJitter
		g.jitter = func() time.Duration { return randomJitter(maxJitter) }
	}
	return g
}

// Credentials returns the number of configured credentials.
func (g *Gateway) Credentials() int { return len(g.creds) }

// CompleteWithResilience tries each credential in order, up to
// maxRetriesPerCredential attempts each, and returns the first successful
// completion. Fatal errors move straight to the next credential. When all
// credentials fail it returns an *ExhaustedError.
func (g *Gateway) CompleteWithResilience(ctx context.Context, prompt string, maxRetriesPerCredential int) (string, error) {
	if maxRetriesPerCredential < 1 {
		maxRetriesPerCredential = 1
	}
	ctx, span := g.tracer.Start(ctx, "ai.CompleteWithResilience")
	defer span.End()
	span.SetAttributes(
		attribute.Int("ai.credentials", len(g.creds)),
		attribute.Int("ai.max_retries_per_credential", maxRetriesPerCredential),
	)
	lg := obsctx.LoggerFromContext(ctx)

	var (
		attempts []CompletionAttempt
		last     error
	)
	for idx, cred := range g.creds {
		text, tried, err := g.tryCredential(ctx, idx, cred, prompt, maxRetriesPerCredential)
		attempts = append(attempts, tried...)
		if err == nil {
			if idx > 0 {
				lg.Info("completion succeeded on backup credential",
					slog.Int("credential_index", idx),
					slog.String("provider", cred.Provider))
			}
			g.recordUsage(cred, prompt, text)
			span.SetAttributes(attribute.Int("ai.credential_index", idx), attribute.Int("ai.failed_attempts", len(attempts)))
			return text, nil
		}
		last = err
		if ctx.Err() != nil {
			break
		}
		lg.Warn("credential exhausted; failing over",
			slog.Int("credential_index", idx),
			slog.String("provider", cred.Provider),
			slog.Any("error", err))
	}

	exhausted := newExhaustedError(attempts, len(g.creds), last)
	observability.ObserveExhausted(exhausted.HighDemand)
	span.RecordError(exhausted)
	span.SetStatus(codes.Error, "completion exhausted")
	lg.Error("completion exhausted all credentials",
		slog.Int("attempts", len(attempts)),
		slog.Int("credentials", len(g.creds)),
		slog.Bool("high_demand", exhausted.HighDemand),
		slog.Any("error", last))
	return "", exhausted
}

// tryCredential runs the retry state machine for a single credential.
func (g *Gateway) tryCredential(ctx context.Context, idx int, cred Credential, prompt string, maxAttempts int) (string, []CompletionAttempt, error) {
	lg := obsctx.LoggerFromContext(ctx)
	span := trace.SpanFromContext(ctx)
	state := &attemptBackOff{policy: g.policy, jitter: g.jitter}

	var (
		text     string
		attempts []CompletionAttempt
	)
	operation := func() error {
		state.attempt++
		start := time.Now()
		out, err := cred.Client.Complete(ctx, prompt)
		if err == nil {
			observability.ObserveCompletion(cred.Provider, "success", time.Since(start))
			text = out
			return nil
		}

		class, reason := Classify(err)
		if ctx.Err() != nil {
			class, reason = ErrorClassFatal, ReasonCanceled
		}
		state.reason = reason
		observability.ObserveCompletion(cred.Provider, string(reason), time.Since(start))
		attempts = append(attempts, CompletionAttempt{
			CredentialIndex: idx,
			AttemptNumber:   state.attempt,
			Class:           class,
			Reason:          reason,
			Err:             err,
		})
		span.AddEvent("completion_attempt_failed", trace.WithAttributes(
			attribute.Int("credential_index", idx),
			attribute.Int("attempt", state.attempt),
			attribute.String("class", string(class)),
			attribute.String("reason", string(reason)),
		))
		if class == ErrorClassFatal {
			lg.Warn("completion failed with non-retryable error",
				slog.Int("credential_index", idx),
				slog.String("provider", cred.Provider),
				slog.Any("error", err))
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		attempts[len(attempts)-1].Delay = wait
		observability.ObserveRetry(cred.Provider, string(state.reason))
		lg.Warn("completion attempt failed; backing off",
			slog.Int("credential_index", idx),
			slog.String("provider", cred.Provider),
			slog.Int("attempt", state.attempt),
			slog.String("reason", string(state.reason)),
			slog.Duration("delay", wait),
			slog.Any("error", err))
	}

	b := backoff.WithContext(backoff.WithMaxRetries(state, uint64(maxAttempts-1)), ctx)
	var timer backoff.Timer
	if g.newTimer != nil {
		timer = g.newTimer()
	}
	if err := backoff.RetryNotifyWithTimer(operation, b, notify, timer); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", attempts, ctxErr
			}
		}
		return "", attempts, err
	}
	return text, attempts, nil
}

func (g *Gateway) recordUsage(cred Credential, prompt, completion string) {
	if g.tokens == nil {
		return
	}
	u := g.tokens.Estimate(prompt, completion, cred.Model)
	observability.ObserveTokens(cred.Provider, u.PromptTokens, u.CompletionTokens)
}
