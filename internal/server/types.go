package server

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/tensorplex-labs/pridano/internal/config"
	"github.com/tensorplex-labs/pridano/internal/runstore"
	"github.com/tensorplex-labs/pridano/internal/scoring"
	"github.com/tensorplex-labs/pridano/internal/sitegen"
)

const (
	RequestIDHeader = "X-Request-Id"
	requestIDLocal  = "request_id"

	defaultRunsLimit = 20
	maxRunsLimit     = 200

	indexNotFoundDetail = "index.html introuvable (ni à la racine ni dans client/)"
)

// Server is the HTTP front of the generator.
type Server struct {
	App  *fiber.App
	cfg  config.ServerEnvConfig
	deps Deps
	// cancels the user context of in-flight requests
	stop context.CancelFunc
}

// Deps are the services the handlers call. Index may be nil.
type Deps struct {
	Generator *sitegen.Generator
	Editor    *sitegen.Editor
	Scorers   *scoring.Registry
	Store     *runstore.Store
	Index     runstore.Index
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type DetailResponse struct {
	Detail string `json:"detail"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
