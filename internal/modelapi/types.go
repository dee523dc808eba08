package modelapi

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotConfigured   = errors.New("model not configured")
	ErrNoHTMLOutput    = errors.New("no HTML_OUTPUT markers in model response")
	ErrMalformedOutput = errors.New("malformed model output")
)

// Request is one prompt sent to a backend.
type Request struct {
	Model  string
	System string
	Prompt string
	// Timeout bounds this call; zero keeps the client default.
	Timeout time.Duration
}

// Options configures a backend client.
type Options struct {
	Timeout     time.Duration
	RetryMax    int
	RetryWait   time.Duration
	Temperature float64
	APIKey      string
}

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

// GenerateResponse is the non-streaming reply of POST /api/generate.
type GenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// StatusError reports a non-2xx reply from a backend.
type StatusError struct {
	Backend    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s status %d: %s", e.Backend, e.StatusCode, e.Body)
}

const statusBodyLimit = 160

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
