package sitegen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/pridano/internal/modelapi"
)

// EditRequest is the body of POST /ai/edit.
type EditRequest struct {
	HTML      string `json:"html"`
	Prompt    string `json:"prompt"`
	Model     string `json:"model,omitempty"`
	OllamaURL string `json:"ollama_url,omitempty"`
}

// EditResult carries the edited document and a newline separated log.
type EditResult struct {
	HTML string `json:"html"`
	Log  string `json:"log"`
}

// ClientFactory returns a model client for the base URL of an edit request.
type ClientFactory func(baseURL string) (modelapi.Client, error)

// OllamaFactory builds Ollama clients sharing opts.
func OllamaFactory(opts modelapi.Options) ClientFactory {
	return func(baseURL string) (modelapi.Client, error) {
		return modelapi.NewOllama(baseURL, opts)
	}
}

// FixedClient ignores the request URL and always returns client.
func FixedClient(client modelapi.Client) ClientFactory {
	return func(string) (modelapi.Client, error) {
		if client == nil {
			return nil, modelapi.ErrNotConfigured
		}
		return client, nil
	}
}

// Editor rewrites a document with the model when one is configured and with
// the keyword heuristics otherwise.
type Editor struct {
	newClient    ClientFactory
	defaultModel string
	timeout      time.Duration
	policy       Policy
}

type EditorOption func(*Editor)

func WithDefaultModel(model string) EditorOption {
	return func(e *Editor) {
		e.defaultModel = model
	}
}

func WithEditTimeout(d time.Duration) EditorOption {
	return func(e *Editor) {
		e.timeout = d
	}
}

func WithEditorPolicy(p Policy) EditorOption {
	return func(e *Editor) {
		e.policy = p
	}
}

func NewEditor(factory ClientFactory, opts ...EditorOption) *Editor {
	e := &Editor{newClient: factory, policy: DefaultPolicy()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Edit never fails: every model problem ends in the heuristic editor and is
// reported in the log.
func (e *Editor) Edit(ctx context.Context, req EditRequest) EditResult {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = e.defaultModel
	}
	baseURL := strings.TrimSpace(req.OllamaURL)
	if baseURL == "" {
		baseURL = modelapi.DefaultOllamaURL
	}

	var client modelapi.Client
	if model != "" && e.newClient != nil {
		c, err := e.newClient(baseURL)
		if err != nil && !errors.Is(err, modelapi.ErrNotConfigured) {
			return e.fallback(req, fmt.Sprintf("%s unavailable: %v. Heuristics applied.", backendLabel(""), err))
		}
		client = c
	}
	if client == nil {
		return e.fallback(req, fmt.Sprintf("%s not configured, heuristics applied.", backendLabel("")))
	}

	label := backendLabel(client.Name())
	text, err := e.callModel(ctx, client, model, req)
	if err != nil {
		log.Warn().Err(err).Str("backend", client.Name()).Msg("edit model call failed")
		return e.fallback(req, fmt.Sprintf("%s unavailable: %v. Heuristics applied.", label, err))
	}

	html, marked := modelapi.ExtractHTMLOutput(text)
	switch {
	case marked && html != "":
		return EditResult{HTML: html, Log: fmt.Sprintf("%s response used.", label)}
	case !marked && strings.TrimSpace(text) != "":
		return EditResult{HTML: strings.TrimSpace(text), Log: fmt.Sprintf("%s text without markers, used as is.", label)}
	}
	// an empty marker pair counts as no output
	return e.fallback(req, fmt.Sprintf("%s unavailable: %v. Heuristics applied.", label, modelapi.ErrNoHTMLOutput))
}

func (e *Editor) callModel(ctx context.Context, client modelapi.Client, model string, req EditRequest) (string, error) {
	call := modelapi.Request{
		Model:   model,
		System:  modelapi.EditSystemPrompt,
		Prompt:  modelapi.BuildEditPrompt(req.Prompt, req.HTML),
		Timeout: e.timeout,
	}

	var lastErr error
	for attempt := 1; attempt <= e.policy.attempts(); attempt++ {
		text, err := client.Generate(ctx, call)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

func (e *Editor) fallback(req EditRequest, first string) EditResult {
	if !e.policy.FallbackToDeterministic {
		return EditResult{HTML: req.HTML, Log: first}
	}
	html, lines := ApplyHeuristics(req.HTML, req.Prompt)
	return EditResult{HTML: html, Log: strings.Join(append([]string{first}, lines...), "\n")}
}

func backendLabel(name string) string {
	switch name {
	case "openai":
		return "OpenAI"
	default:
		return "Ollama"
	}
}
