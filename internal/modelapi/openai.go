package modelapi

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"
)

const openaiBackend = "openai"

// OpenAI implements Client over an OpenAI-compatible chat completions API,
// which recent Ollama releases also expose under /v1.
type OpenAI struct {
	Temperature float64
	Opts        []option.RequestOption
}

func NewOpenAI(baseURL string, opts Options) (*OpenAI, error) {
	if opts.APIKey == "" && baseURL == "" {
		return nil, fmt.Errorf("openai api key or base url: %w", ErrNotConfigured)
	}
	reqOpts := []option.RequestOption{option.WithMaxRetries(opts.RetryMax)}
	if opts.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
	} else {
		// local OpenAI-compatible servers ignore the key but the SDK requires one
		reqOpts = append(reqOpts, option.WithAPIKey("local"))
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}
	return &OpenAI{Temperature: opts.Temperature, Opts: reqOpts}, nil
}

func (o *OpenAI) Name() string { return openaiBackend }

func (o *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	if req.Model == "" {
		return "", fmt.Errorf("openai model: %w", ErrNotConfigured)
	}
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	client := openai.NewClient(o.Opts...)

	var msgs []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	msgs = append(msgs, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: msgs,
	}
	if o.Temperature > 0 {
		params.Temperature = openai.Float(o.Temperature)
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &StatusError{Backend: openaiBackend, StatusCode: apiErr.StatusCode, Body: truncate(apiErr.Message, statusBodyLimit)}
		}
		log.Error().Err(err).Msg("openai chat completion failed")
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty choices: %w", ErrMalformedOutput)
	}
	return resp.Choices[0].Message.Content, nil
}
