// Package logger configures the process-wide zerolog logger and a zap
// logger used for key/value summaries.
package logger

import (
	"flag"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"go.uber.org/zap"
)

var Logger *zap.Logger

var (
	debug = flag.Bool("debug", false, "sets log level to debug")
	trace = flag.Bool("trace", false, "sets log level to trace")
	info  = flag.Bool("info", false, "sets log level to info (default)")
)

// envLevels maps ENVIRONMENT values to their default level.
var envLevels = map[string]zerolog.Level{
	"dev":  zerolog.TraceLevel,
	"test": zerolog.TraceLevel,
	"prod": zerolog.InfoLevel,
}

// levelFor resolves the level for environment. A set flag wins over the
// environment, and an unknown environment falls back to info.
func levelFor(environment string, debugFlag, traceFlag, infoFlag bool) (zerolog.Level, bool) {
	switch {
	case debugFlag:
		return zerolog.DebugLevel, true
	case traceFlag:
		return zerolog.TraceLevel, true
	case infoFlag:
		return zerolog.InfoLevel, true
	}
	lvl, known := envLevels[environment]
	if !known {
		return zerolog.InfoLevel, false
	}
	return lvl, true
}

// Init loads .env, parses flags when main has not, and sets the global
// level. Call it once from main:
//
//	logger.Init()
//	defer logger.Sync()
//
// Then `go run ./cmd/sitegen --debug`.
func Init() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using process environment")
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).With().Caller().Logger()

	if !flag.Parsed() {
		flag.Parse()
	}

	environment := strings.ToLower(strings.TrimSpace(os.Getenv("ENVIRONMENT")))
	if environment == "" {
		environment = "prod"
	}
	level, known := levelFor(environment, *debug, *trace, *info)
	zerolog.SetGlobalLevel(level)
	if !known {
		log.Warn().Str("environment", environment).Msg("unknown environment, using info level")
	}
	log.Info().Str("environment", environment).Str("level", level.String()).Msg("logging configured")

	var err error
	if environment == "prod" {
		Logger, err = zap.NewProduction()
	} else {
		Logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Warn().Err(err).Msg("zap logger init failed, summaries disabled")
		Logger = zap.NewNop()
	}
}

// Sugar returns a sugared logger for key/value summaries. Before Init it
// returns a no-op logger so packages can log from tests.
func Sugar() *zap.SugaredLogger {
	if Logger == nil {
		return zap.NewNop().Sugar()
	}
	return Logger.Sugar()
}

// Sync flushes the zap logger.
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}
