// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Provider names accepted by LLM_PROVIDER and LLM_BACKUP_PROVIDER.
const (
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	Port   int    `env:"PORT" envDefault:"8080"`

	// Primary completion credential.
	LLMProvider string `env:"LLM_PROVIDER" envDefault:"gemini"`
	LLMAPIKey   string `env:"LLM_API_KEY"`
	LLMBaseURL  string `env:"LLM_BASE_URL"`
	LLMModel    string `env:"LLM_MODEL" envDefault:"gemini-2.0-flash"`
	// Backup credential. Provider and model default to the primary's when empty.
	LLMBackupProvider string        `env:"LLM_BACKUP_PROVIDER"`
	LLMAPIKey2        string        `env:"LLM_API_KEY_2"`
	LLMBackupBaseURL  string        `env:"LLM_BACKUP_BASE_URL"`
	LLMBackupModel    string        `env:"LLM_BACKUP_MODEL"`
	LLMRequestTimeout time.Duration `env:"LLM_REQUEST_TIMEOUT" envDefault:"60s"`
	LLMTemperature    float32       `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	LLMMaxTokens      int           `env:"LLM_MAX_TOKENS" envDefault:"2048"`
	OpenRouterReferer string        `env:"OPENROUTER_REFERER"`
	OpenRouterTitle   string        `env:"OPENROUTER_TITLE" envDefault:"AI Interviewer"`

	// AI Backoff Configuration
	AIBackoffRateLimitBase time.Duration `env:"AI_BACKOFF_RATE_LIMIT_BASE" envDefault:"5s"`
	AIBackoffBase          time.Duration `env:"AI_BACKOFF_BASE" envDefault:"2s"`
	AIBackoffMaxDelay      time.Duration `env:"AI_BACKOFF_MAX_DELAY" envDefault:"30s"`
	AIBackoffMaxJitter     time.Duration `env:"AI_BACKOFF_MAX_JITTER" envDefault:"1s"`

	// Per-operation retry budgets (attempts per credential)
	AIRetriesQuestions  int `env:"AI_RETRIES_QUESTIONS" envDefault:"2"`
	AIRetriesBatch      int `env:"AI_RETRIES_BATCH" envDefault:"2"`
	AIRetriesIndividual int `env:"AI_RETRIES_INDIVIDUAL" envDefault:"2"`
	AIRetriesQuick      int `env:"AI_RETRIES_QUICK" envDefault:"1"`
	AIRetriesSummary    int `env:"AI_RETRIES_SUMMARY" envDefault:"1"`
	AIRetriesResume     int `env:"AI_RETRIES_RESUME" envDefault:"2"`

	// ResumeSkipRequireDetail makes the rule-based resume pass also require
	// skills or experience before the AI pass is skipped.
	ResumeSkipRequireDetail bool          `env:"RESUME_SKIP_REQUIRE_DETAIL" envDefault:"false"`
	RedisURL                string        `env:"REDIS_URL"`
	ResumeCacheTTL          time.Duration `env:"RESUME_CACHE_TTL" envDefault:"24h"`

	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"ai-interviewer"`

	MaxRequestKB          int64         `env:"MAX_REQUEST_KB" envDefault:"512"`
	CORSAllowOrigins      string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimitPerMin       int           `env:"RATE_LIMIT_PER_MIN" envDefault:"60"`
	HTTPRequestTimeout    time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"170s"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"180s"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	cfg.LLMBackupProvider = strings.ToLower(strings.TrimSpace(cfg.LLMBackupProvider))
	if !validProvider(cfg.LLMProvider) {
		return Config{}, fmt.Errorf("op=config.Load: unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
	if cfg.LLMBackupProvider != "" && !validProvider(cfg.LLMBackupProvider) {
		return Config{}, fmt.Errorf("op=config.Load: unknown LLM_BACKUP_PROVIDER %q", cfg.LLMBackupProvider)
	}
	return cfg, nil
}

func validProvider(p string) bool {
	return p == ProviderGemini || p == ProviderOpenAI || p == ProviderOpenRouter
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }

// HasLLMCredentials reports whether at least one completion key is configured.
func (c Config) HasLLMCredentials() bool {
	return c.LLMAPIKey != "" || c.LLMAPIKey2 != ""
}

// Credential describes one entry of the ordered credential list.
type Credential struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
}

// Credentials returns the configured credentials in failover order: primary, then backup.
// Entries without a key are skipped.
func (c Config) Credentials() []Credential {
	out := make([]Credential, 0, 2)
	if c.LLMAPIKey != "" {
		out = append(out, Credential{Provider: c.LLMProvider, APIKey: c.LLMAPIKey, BaseURL: c.LLMBaseURL, Model: c.LLMModel})
	}
	if c.LLMAPIKey2 != "" {
		b := Credential{Provider: c.LLMBackupProvider, APIKey: c.LLMAPIKey2, BaseURL: c.LLMBackupBaseURL, Model: c.LLMBackupModel}
		if b.Provider == "" {
			b.Provider = c.LLMProvider
		}
		if b.Model == "" && b.Provider == c.LLMProvider {
			b.Model = c.LLMModel
		}
		if b.BaseURL == "" && b.Provider == c.LLMProvider {
			b.BaseURL = c.LLMBaseURL
		}
		out = append(out, b)
	}
	return out
}
