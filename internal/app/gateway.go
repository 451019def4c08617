package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ParthivReddyY/ai-interviewer/internal/adapter/ai"
	"github.com/ParthivReddyY/ai-interviewer/internal/adapter/ai/gemini"
	"github.com/ParthivReddyY/ai-interviewer/internal/adapter/ai/openaisdk"
	"github.com/ParthivReddyY/ai-interviewer/internal/adapter/ai/openrouter"
	rediscache "github.com/ParthivReddyY/ai-interviewer/internal/adapter/cache/redis"
	"github.com/ParthivReddyY/ai-interviewer/internal/config"
	"github.com/ParthivReddyY/ai-interviewer/internal/domain"
	"github.com/ParthivReddyY/ai-interviewer/internal/service/fallback"
	"github.com/ParthivReddyY/ai-interviewer/internal/usecase"
)

// NewCompleter builds the completion client for one configured credential.
func NewCompleter(ctx context.Context, cfg config.Config, cred config.Credential) (domain.Completer, error) {
	switch cred.Provider {
	case config.ProviderOpenRouter:
		return openrouter.New(openrouter.Options{
			APIKey:      cred.APIKey,
			BaseURL:     cred.BaseURL,
			Model:       cred.Model,
			Temperature: cfg.LLMTemperature,
			MaxTokens:   cfg.LLMMaxTokens,
			Timeout:     cfg.LLMRequestTimeout,
			Referer:     cfg.OpenRouterReferer,
			Title:       cfg.OpenRouterTitle,
		}), nil
	case config.ProviderOpenAI:
		return openaisdk.New(openaisdk.Options{
			APIKey:      cred.APIKey,
			BaseURL:     cred.BaseURL,
			Model:       cred.Model,
			Temperature: cfg.LLMTemperature,
			MaxTokens:   cfg.LLMMaxTokens,
			Timeout:     cfg.LLMRequestTimeout,
		}), nil
	case config.ProviderGemini:
		c, err := gemini.New(ctx, gemini.Options{
			APIKey:      cred.APIKey,
			BaseURL:     cred.BaseURL,
			Model:       cred.Model,
			Temperature: cfg.LLMTemperature,
			MaxTokens:   cfg.LLMMaxTokens,
			Timeout:     cfg.LLMRequestTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("op=app.NewCompleter: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("op=app.NewCompleter: %w: unknown provider %q", domain.ErrInvalidArgument, cred.Provider)
	}
}

// BuildGateway wraps every configured credential, in failover order, in one
// resilient gateway. It returns nil without error when no credential is
// configured; generators then serve fallback results.
func BuildGateway(ctx context.Context, cfg config.Config, opts ...ai.GatewayOption) (*ai.Gateway, error) {
	creds := cfg.Credentials()
	if len(creds) == 0 {
		return nil, nil
	}
	list := make([]ai.Credential, 0, len(creds))
	for _, cred := range creds {
		c, err := NewCompleter(ctx, cfg, cred)
		if err != nil {
			return nil, err
		}
		list = append(list, ai.Credential{Provider: cred.Provider, Model: cred.Model, Client: c})
	}
	opts = append([]ai.GatewayOption{ai.WithDelayPolicy(ai.DelayPolicyFromConfig(cfg.GetBackoffConfig()))}, opts...)
	return ai.NewGateway(list, opts...), nil
}

// Services groups the interview generators.
type Services struct {
	Questions  usecase.QuestionService
	Evaluation usecase.EvaluationService
	Summary    usecase.SummaryService
	Resume     usecase.ResumeService
}

// BuildServices wires the generators over gw and the optional resume cache.
// A nil gw leaves every generator on its fallback path.
func BuildServices(cfg config.Config, gw *ai.Gateway, cache *rediscache.ResumeCache) (Services, error) {
	pool, err := fallback.New()
	if err != nil {
		return Services{}, fmt.Errorf("op=app.BuildServices: %w", err)
	}
	var llm domain.ResilientCompleter
	if gw != nil {
		llm = gw
	}
	var rc domain.ResumeCache
	if cache != nil {
		rc = cache
	}
	budgets := cfg.GetRetryBudgets()
	return Services{
		Questions:  usecase.NewQuestionService(llm, pool, budgets.Questions),
		Evaluation: usecase.NewEvaluationService(llm, budgets),
		Summary:    usecase.NewSummaryService(llm, budgets.Summary),
		Resume:     usecase.NewResumeService(llm, nil, rc, budgets.Resume, cfg.ResumeSkipRequireDetail),
	}, nil
}

// OpenRedis connects to cfg.RedisURL and verifies it with a ping. It returns
// nil without error when no URL is configured.
func OpenRedis(ctx context.Context, cfg config.Config) (*goredis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}
	rdb, err := rediscache.NewClient(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("op=app.OpenRedis: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("op=app.OpenRedis: ping: %w", err)
	}
	return rdb, nil
}

// RedisReadiness adapts a go-redis client to RedisClient. A nil client yields nil.
func RedisReadiness(rdb *goredis.Client) RedisClient {
	if rdb == nil {
		return nil
	}
	return goRedisPinger{rdb}
}

type goRedisPinger struct{ c *goredis.Client }

func (p goRedisPinger) Ping(ctx context.Context) RedisPingResult { return p.c.Ping(ctx) }
