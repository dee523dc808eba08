// Package server exposes the generator and the editor over HTTP.
package server

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/pridano/internal/config"
	"github.com/tensorplex-labs/pridano/internal/runstore"
	"github.com/tensorplex-labs/pridano/internal/sitegen"
)

// New builds the fiber app and registers every route.
func New(cfg config.ServerEnvConfig, deps Deps) *Server {
	log.Info().
		Str("address", cfg.Address()).
		Int("body_limit", cfg.BodyLimit).
		Str("site_root", cfg.SiteRoot).
		Str("runs_dir", cfg.RunsDir).
		Msg("Server configuration loaded")

	app := fiber.New(fiber.Config{
		Prefork:               false,
		DisableStartupMessage: true,
		ErrorHandler:          fiberErrHandler,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		BodyLimit:             cfg.BodyLimit,
	})

	base, stop := context.WithCancel(context.Background())

	app.Use(RequestIDMiddleware())
	app.Use(RequestContextMiddleware(base))
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(ZstdMiddleware(passthroughPath))

	s := &Server{App: app, cfg: cfg, deps: deps, stop: stop}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.App.Get("/", s.handleIndex)
	s.App.Get("/health", s.handleHealth)
	s.App.Post("/generate", s.handleGenerate)
	s.App.Post("/ai/edit", s.handleEdit)
	s.App.Get("/api/runs", s.handleRuns)

	s.App.Static(runstore.PublicPrefix, s.cfg.RunsDir)
	s.App.Static("/static", s.cfg.SiteRoot, fiber.Static{Index: "index.html"})
}

// Start listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", s.cfg.Address()).Msg("Server listening")
		errCh <- s.App.Listen(s.cfg.Address())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		s.stop()
		return s.App.Shutdown()
	}
}

func fiberErrHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	evt := log.Error()
	if code < fiber.StatusInternalServerError {
		evt = log.Warn()
	}
	evt.Err(err).
		Int("status_code", code).
		Str("path", c.Path()).
		Str("method", c.Method()).
		Str("request_id", requestID(c)).
		Msg("Fiber error handler triggered")

	return c.Status(code).JSON(ErrorResponse{Error: err.Error(), RequestID: requestID(c)})
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	for _, candidate := range []string{
		filepath.Join(s.cfg.SiteRoot, "index.html"),
		filepath.Join(s.cfg.SiteRoot, "client", "index.html"),
	} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return c.SendFile(candidate)
		}
	}
	return c.Status(fiber.StatusNotFound).JSON(DetailResponse{Detail: indexNotFoundDetail})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{Status: "ok"})
}

func (s *Server) handleGenerate(c *fiber.Ctx) error {
	n := sitegen.DefaultVariants
	if raw := c.Query("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "n must be an integer")
		}
		n = v
	}

	scorer, err := s.deps.Scorers.Get(c.Query("scorer"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	brief, err := parseBrief(c.Body())
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid brief: "+err.Error())
	}

	res, err := s.deps.Generator.Generate(c.UserContext(), brief, n, scorer)
	if err != nil {
		if errors.Is(err, sitegen.ErrInvalidVariantCount) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	log.Info().
		Str("request_id", requestID(c)).
		Str("saved_at", res.SavedAt).
		Float64("score", res.Best.Score).
		Int("variants", len(res.Variants)).
		Msg("✔ Site generated")
	return c.JSON(res)
}

func (s *Server) handleEdit(c *fiber.Ctx) error {
	var req sitegen.EditRequest
	if err := sonic.Unmarshal(c.Body(), &req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid edit request: "+err.Error())
	}
	return c.JSON(s.deps.Editor.Edit(c.UserContext(), req))
}

func (s *Server) handleRuns(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultRunsLimit)
	if limit <= 0 || limit > maxRunsLimit {
		return fiber.NewError(fiber.StatusBadRequest, "limit must be between 1 and 200")
	}

	runs, err := runstore.Recent(c.UserContext(), s.deps.Store, s.deps.Index, limit)
	if err != nil {
		return err
	}
	return c.JSON(runs)
}
