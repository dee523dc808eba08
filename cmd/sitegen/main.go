package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/pridano/internal/config"
	"github.com/tensorplex-labs/pridano/internal/modelapi"
	"github.com/tensorplex-labs/pridano/internal/runstore"
	"github.com/tensorplex-labs/pridano/internal/scoring"
	"github.com/tensorplex-labs/pridano/internal/server"
	"github.com/tensorplex-labs/pridano/internal/sitegen"
	"github.com/tensorplex-labs/pridano/internal/utils/logger"
	"github.com/tensorplex-labs/pridano/internal/utils/redis"
)

func main() {
	logger.Init()
	defer logger.Sync()
	log.Info().Msg("Starting site generator...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load environment configuration")
	}

	store, err := runstore.New(cfg.RunsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open run store")
	}

	var index runstore.Index
	if cfg.RedisEnvConfig.Enabled() {
		r, err := redis.NewRedis(ctx, &cfg.RedisEnvConfig)
		if err != nil {
			log.Error().Err(err).Msg("failed to init redis client, listing runs from disk")
		} else {
			defer r.Close()
			index = runstore.NewRedisIndex(r.Client())
		}
	}

	scorers, err := scoring.DefaultRegistry(cfg.Seed).WithDefault(cfg.Scorer)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid SCORER")
	}

	policy := sitegen.DefaultPolicy()
	policy.ModelAttempts = cfg.Attempts

	genOpts := []sitegen.GeneratorOption{
		sitegen.WithRunIndex(index),
		sitegen.WithGeneratorPolicy(policy),
		sitegen.WithGenerateTimeout(cfg.GenerateTimeout),
	}
	if client := newModelClient(&cfg.ModelEnvConfig); client != nil {
		genOpts = append(genOpts, sitegen.WithModelClient(client, cfg.ModelName))
	}
	generator := sitegen.NewGenerator(store, scorers.Default(), genOpts...)

	editor := sitegen.NewEditor(editClientFactory(&cfg.ModelEnvConfig),
		sitegen.WithDefaultModel(cfg.ModelName),
		sitegen.WithEditTimeout(cfg.EditTimeout),
		sitegen.WithEditorPolicy(policy),
	)

	retention := runstore.RetentionPolicy{MaxAge: cfg.MaxAge, MaxRuns: cfg.MaxRuns}
	if retention.Enabled() {
		janitor := runstore.NewJanitor(store, retention, runstore.WithIndex(index))
		if err := janitor.Start(ctx, cfg.Schedule); err != nil {
			log.Fatal().Err(err).Msg("failed to start retention janitor")
		}
		defer janitor.Stop()
	}

	srv := server.New(cfg.ServerEnvConfig, server.Deps{
		Generator: generator,
		Editor:    editor,
		Scorers:   scorers,
		Store:     store,
		Index:     index,
	})

	if err := srv.Start(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		return
	}
	log.Info().Msg("site generator stopped")
}

func modelOptions(cfg *config.ModelEnvConfig) modelapi.Options {
	return modelapi.Options{
		RetryMax:    cfg.RetryMax,
		RetryWait:   cfg.RetryWait,
		Temperature: cfg.Temperature,
		APIKey:      cfg.OpenAIAPIKey,
	}
}

// newModelClient returns the generation backend, or nil when the model path
// is not configured.
func newModelClient(cfg *config.ModelEnvConfig) modelapi.Client {
	baseURL := cfg.OllamaURL
	if strings.EqualFold(cfg.Provider, "openai") {
		baseURL = cfg.OpenAIBaseURL
	}
	client, err := modelapi.New(cfg.Provider, baseURL, modelOptions(cfg))
	if err != nil {
		if !errors.Is(err, modelapi.ErrNotConfigured) {
			log.Error().Err(err).Msg("failed to init model client, generation uses the assembler only")
		}
		return nil
	}
	log.Info().Str("backend", client.Name()).Str("model", cfg.ModelName).Msg("model client ready")
	return client
}

// editClientFactory honours the per-request ollama_url for Ollama. An OpenAI
// backend is fixed by configuration.
func editClientFactory(cfg *config.ModelEnvConfig) sitegen.ClientFactory {
	if strings.EqualFold(cfg.Provider, "openai") {
		return sitegen.FixedClient(newModelClient(cfg))
	}
	return sitegen.OllamaFactory(modelOptions(cfg))
}
