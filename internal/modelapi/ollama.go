package modelapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
)

const (
	DefaultOllamaURL = "http://localhost:11434"
	ollamaBackend    = "ollama"
)

// Ollama is a client for the Ollama /api/generate endpoint.
type Ollama struct {
	client  *resty.Client
	opts    Options
	BaseURL string
}

// NewOllama creates a client for baseURL. Retries are handled by a
// retryablehttp transport underneath resty.
func NewOllama(baseURL string, opts Options) (*Ollama, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("ollama base url: %w", ErrNotConfigured)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	if opts.RetryWait > 0 {
		rc.RetryWaitMin = opts.RetryWait
		rc.RetryWaitMax = opts.RetryWait * 2
	}
	rc.Logger = zerologLeveled{}
	// keep non-2xx responses so callers can report the status and body
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := resty.NewWithClient(rc.StandardClient()).
		SetBaseURL(baseURL).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	return &Ollama{client: client, opts: opts, BaseURL: baseURL}, nil
}

func (o *Ollama) Name() string { return ollamaBackend }

// Generate posts a non-streaming generation request and returns the response text.
func (o *Ollama) Generate(ctx context.Context, req Request) (string, error) {
	if req.Model == "" {
		return "", fmt.Errorf("ollama model: %w", ErrNotConfigured)
	}
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	prompt := req.Prompt
	if req.System != "" {
		prompt = req.System + "\n" + req.Prompt
	}
	body := GenerateRequest{Model: req.Model, Prompt: prompt, Stream: false}
	if o.opts.Temperature > 0 {
		body.Options = map[string]any{"temperature": o.opts.Temperature}
	}

	var out GenerateResponse
	start := time.Now()
	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		ForceContentType("application/json").
		Post("/api/generate")
	if err != nil {
		log.Error().Err(err).Str("base_url", o.BaseURL).Msg("ollama generate request failed")
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	if resp.IsError() {
		log.Error().Int("status", resp.StatusCode()).Str("body", resp.String()).Msg("ollama generate non-2xx")
		return "", &StatusError{Backend: ollamaBackend, StatusCode: resp.StatusCode(), Body: truncate(resp.String(), statusBodyLimit)}
	}

	log.Debug().
		Str("model", req.Model).
		Dur("latency", time.Since(start)).
		Int("response_len", len(out.Response)).
		Msg("ollama generate done")
	return out.Response, nil
}

// zerologLeveled adapts zerolog to retryablehttp.LeveledLogger.
type zerologLeveled struct{}

func (zerologLeveled) Error(msg string, kv ...interface{}) { log.Error().Fields(kv).Msg(msg) }
func (zerologLeveled) Info(msg string, kv ...interface{})  { log.Debug().Fields(kv).Msg(msg) }
func (zerologLeveled) Debug(msg string, kv ...interface{}) { log.Trace().Fields(kv).Msg(msg) }
func (zerologLeveled) Warn(msg string, kv ...interface{})  { log.Warn().Fields(kv).Msg(msg) }
