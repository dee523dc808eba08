// Package config defines environment configuration structs and loaders.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-envconfig"
)

type AppConfig struct {
	ServerEnvConfig
	ModelEnvConfig
	ScoringEnvConfig
	RetentionEnvConfig
	RedisEnvConfig
	Environment string `env:"ENVIRONMENT, default=dev"`
}

// ServerEnvConfig configures the HTTP server and the directories it serves.
type ServerEnvConfig struct {
	Host      string `env:"SERVER_HOST, default=0.0.0.0"`
	Port      int    `env:"SERVER_PORT, default=8000"`
	BodyLimit int    `env:"SERVER_BODY_LIMIT, default=4194304"`
	SiteRoot  string `env:"SITE_ROOT, default=."`
	RunsDir   string `env:"RUNS_DIR, default=runs"`
}

// ModelEnvConfig configures the text generation backend.
type ModelEnvConfig struct {
	Provider        string        `env:"MODEL_PROVIDER, default=ollama"`
	OllamaURL       string        `env:"OLLAMA_URL, default=http://localhost:11434"`
	ModelName       string        `env:"MODEL_NAME"`
	OpenAIAPIKey    string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string        `env:"OPENAI_BASE_URL"`
	EditTimeout     time.Duration `env:"MODEL_EDIT_TIMEOUT, default=60s"`
	GenerateTimeout time.Duration `env:"MODEL_GENERATE_TIMEOUT, default=180s"`
	RetryMax        int           `env:"MODEL_RETRY_MAX, default=0"`
	RetryWait       time.Duration `env:"MODEL_RETRY_WAIT, default=500ms"`
	Temperature     float64       `env:"MODEL_TEMPERATURE, default=0.7"`
	Attempts        int           `env:"MODEL_ATTEMPTS, default=1"`
}

// ScoringEnvConfig selects the default scorer.
type ScoringEnvConfig struct {
	Scorer string `env:"SCORER, default=weighted"`
	Seed   uint64 `env:"SCORER_SEED, default=42"`
}

// RetentionEnvConfig bounds how many runs are kept on disk. Zero disables a bound.
type RetentionEnvConfig struct {
	MaxAge   time.Duration `env:"RETENTION_MAX_AGE, default=0s"`
	MaxRuns  int           `env:"RETENTION_MAX_RUNS, default=0"`
	Schedule string        `env:"RETENTION_SCHEDULE, default=@hourly"`
}

// Enabled reports whether any retention bound is set.
func (r RetentionEnvConfig) Enabled() bool {
	return r.MaxAge > 0 || r.MaxRuns > 0
}

// RedisEnvConfig configures the optional run index. An empty address disables it.
type RedisEnvConfig struct {
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB, default=0"`
}

func (r RedisEnvConfig) Enabled() bool {
	return r.RedisAddr != ""
}

// LoadConfig reads .env when present and parses the environment.
func LoadConfig(ctx context.Context) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env not loaded; continuing with existing environment")
	}
	return Process(ctx, envconfig.OsLookuper())
}

// Process parses configuration from the given lookuper.
func Process(ctx context.Context, lookuper envconfig.Lookuper) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) Validate() error {
	switch strings.ToLower(c.Provider) {
	case "ollama", "openai":
	default:
		return fmt.Errorf("MODEL_PROVIDER must be ollama or openai, got %q", c.Provider)
	}
	if c.Port <= 0 {
		return fmt.Errorf("SERVER_PORT must be positive, got %d", c.Port)
	}
	if c.RunsDir == "" {
		return fmt.Errorf("RUNS_DIR is required")
	}
	if c.Attempts < 1 {
		return fmt.Errorf("MODEL_ATTEMPTS must be at least 1, got %d", c.Attempts)
	}
	return nil
}

// Address returns host:port for the listener.
func (s ServerEnvConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
