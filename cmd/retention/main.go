package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/pridano/internal/config"
	"github.com/tensorplex-labs/pridano/internal/runstore"
	"github.com/tensorplex-labs/pridano/internal/utils/logger"
	"github.com/tensorplex-labs/pridano/internal/utils/redis"
)

var (
	maxAge  = flag.Duration("max-age", 0, "delete runs older than this (overrides RETENTION_MAX_AGE)")
	maxRuns = flag.Int("max-runs", 0, "keep at most this many runs (overrides RETENTION_MAX_RUNS)")
	dryRun  = flag.Bool("dry-run", false, "list the runs that would be deleted")
)

func main() {
	logger.Init()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load environment configuration")
	}

	policy := runstore.RetentionPolicy{MaxAge: cfg.MaxAge, MaxRuns: cfg.MaxRuns}
	if *maxAge > 0 {
		policy.MaxAge = *maxAge
	}
	if *maxRuns > 0 {
		policy.MaxRuns = *maxRuns
	}
	if !policy.Enabled() {
		log.Fatal().Msg("no retention bound set: use --max-age, --max-runs or the RETENTION_* variables")
	}

	store, err := runstore.New(cfg.RunsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open run store")
	}

	if *dryRun {
		runs, err := store.List()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to list runs")
		}
		for _, run := range policy.Expired(runs, time.Now()) {
			log.Info().Str("run", run.Name).Time("created_at", run.CreatedAt).Msg("would delete")
		}
		return
	}

	var opts []runstore.JanitorOption
	if cfg.RedisEnvConfig.Enabled() {
		r, err := redis.NewRedis(ctx, &cfg.RedisEnvConfig)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, index entries left in place")
		} else {
			defer r.Close()
			opts = append(opts, runstore.WithIndex(runstore.NewRedisIndex(r.Client())))
		}
	}

	removed, err := runstore.NewJanitor(store, policy, opts...).Sweep(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("retention sweep failed")
	}
	log.Info().Int("removed", len(removed)).Str("runs_dir", cfg.RunsDir).Msg("retention sweep done")
}
