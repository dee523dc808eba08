package modelapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAI_NotConfigured(t *testing.T) {
	_, err := NewOpenAI("", Options{})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestOpenAIGenerate_Success(t *testing.T) {
	var gotMessages int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body struct {
			Model    string           `json:"model"`
			Messages []map[string]any `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotMessages = len(body.Messages)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"c1","object":"chat.completion","created":1,"model":%q,"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"<HTML_OUTPUT>hi</HTML_OUTPUT>"}}]}`, body.Model)
	}))
	defer ts.Close()

	c, err := NewOpenAI(ts.URL+"/v1", Options{})
	require.NoError(t, err)

	out, err := c.Generate(context.Background(), Request{Model: "qwen", System: "sys", Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "<HTML_OUTPUT>hi</HTML_OUTPUT>", out)
	assert.Equal(t, 2, gotMessages)
}

func TestOpenAIGenerate_StatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"bad model","type":"invalid_request_error","param":null,"code":null}}`)
	}))
	defer ts.Close()

	c, err := NewOpenAI(ts.URL+"/v1", Options{})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), Request{Model: "nope", Prompt: "p"})
	var se *StatusError
	require.True(t, errors.As(err, &se), "expected StatusError, got %v", err)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
}
