// Package modelapi talks to text generation backends and parses what they return.
package modelapi

import (
	"context"
	"fmt"
	"strings"
)

// Client sends one prompt and returns the raw completion text.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

// New returns the backend named by provider, pointed at baseURL.
func New(provider, baseURL string, opts Options) (Client, error) {
	switch strings.ToLower(provider) {
	case "", "ollama":
		return NewOllama(baseURL, opts)
	case "openai":
		return NewOpenAI(baseURL, opts)
	default:
		return nil, fmt.Errorf("unknown model provider %q", provider)
	}
}
