package sitegen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/pridano/internal/modelapi"
)

func ollamaStub(t *testing.T, handler func(n int32, w http.ResponseWriter)) string {
	t.Helper()
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler(hits.Add(1), w)
	}))
	t.Cleanup(ts.Close)
	return ts.URL
}

func respond(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(modelapi.GenerateResponse{Response: text, Done: true})
}

func newTestEditor(opts ...EditorOption) *Editor {
	return NewEditor(OllamaFactory(modelapi.Options{}), opts...)
}

func TestEditNotConfigured(t *testing.T) {
	res := newTestEditor().Edit(context.Background(), EditRequest{HTML: bareDoc, Prompt: "bonjour"})

	assert.Equal(t, bareDoc, res.HTML)
	assert.Equal(t, "Ollama not configured, heuristics applied.\n"+NothingDetectedLog, res.Log)
}

func TestEditUnreachableFallsBackToHeuristics(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	res := newTestEditor().Edit(context.Background(), EditRequest{
		HTML:      bareDoc,
		Prompt:    "ajoute une FAQ",
		Model:     "llama3",
		OllamaURL: url,
	})

	lines := strings.Split(res.Log, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Ollama unavailable: "), lines[0])
	assert.True(t, strings.HasSuffix(lines[0], ". Heuristics applied."), lines[0])
	assert.Equal(t, "✔ FAQ section added", lines[1])
	assert.Contains(t, res.HTML, "FAQ")
}

func TestEditUsesMarkedOutput(t *testing.T) {
	url := ollamaStub(t, func(_ int32, w http.ResponseWriter) {
		respond(w, "Voici:\n<HTML_OUTPUT>\n<p>nouveau</p>\n</HTML_OUTPUT>")
	})

	res := newTestEditor().Edit(context.Background(), EditRequest{HTML: bareDoc, Prompt: "x", Model: "llama3", OllamaURL: url})
	assert.Equal(t, "<p>nouveau</p>", res.HTML)
	assert.Equal(t, "Ollama response used.", res.Log)
}

func TestEditUsesUnmarkedText(t *testing.T) {
	url := ollamaStub(t, func(_ int32, w http.ResponseWriter) {
		respond(w, "\n  <p>brut</p>\n")
	})

	res := newTestEditor().Edit(context.Background(), EditRequest{HTML: bareDoc, Prompt: "x", Model: "llama3", OllamaURL: url})
	assert.Equal(t, "<p>brut</p>", res.HTML)
	assert.Equal(t, "Ollama text without markers, used as is.", res.Log)
}

func TestEditEmptyMarkersFallBack(t *testing.T) {
	url := ollamaStub(t, func(_ int32, w http.ResponseWriter) {
		respond(w, "<HTML_OUTPUT>  </HTML_OUTPUT>")
	})

	res := newTestEditor().Edit(context.Background(), EditRequest{HTML: bareDoc, Prompt: "ajoute une faq", Model: "llama3", OllamaURL: url})
	assert.NotContains(t, res.HTML, "HTML_OUTPUT")
	assert.Contains(t, res.HTML, "FAQ")
	assert.True(t, strings.HasPrefix(res.Log, "Ollama unavailable: "+modelapi.ErrNoHTMLOutput.Error()), res.Log)
}

func TestEditEmptyResponseFallsBack(t *testing.T) {
	url := ollamaStub(t, func(_ int32, w http.ResponseWriter) {
		respond(w, "   ")
	})

	res := newTestEditor().Edit(context.Background(), EditRequest{HTML: bareDoc, Prompt: "cta", Model: "llama3", OllamaURL: url})
	assert.Contains(t, res.Log, "Ollama unavailable: "+modelapi.ErrNoHTMLOutput.Error())
	assert.Contains(t, res.Log, "✔ CTA added")
}

func TestEditStatusErrorFallsBack(t *testing.T) {
	url := ollamaStub(t, func(_ int32, w http.ResponseWriter) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	})

	res := newTestEditor().Edit(context.Background(), EditRequest{HTML: bareDoc, Prompt: "rien", Model: "llama3", OllamaURL: url})
	assert.Equal(t, "Ollama unavailable: ollama status 500: boom. Heuristics applied.\n"+NothingDetectedLog, res.Log)
	assert.Equal(t, bareDoc, res.HTML)
}

func TestEditRetriesWithinAttempts(t *testing.T) {
	url := ollamaStub(t, func(n int32, w http.ResponseWriter) {
		if n == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		respond(w, "<HTML_OUTPUT><p>ok</p></HTML_OUTPUT>")
	})

	policy := DefaultPolicy()
	policy.ModelAttempts = 2
	res := newTestEditor(WithEditorPolicy(policy)).Edit(context.Background(), EditRequest{HTML: bareDoc, Prompt: "x", Model: "llama3", OllamaURL: url})
	assert.Equal(t, "<p>ok</p>", res.HTML)
}

func TestEditDefaultModel(t *testing.T) {
	var seen atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body modelapi.GenerateRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		seen.Store(body.Model)
		respond(w, "<HTML_OUTPUT>x</HTML_OUTPUT>")
	}))
	defer ts.Close()

	e := newTestEditor(WithDefaultModel("mistral"))
	res := e.Edit(context.Background(), EditRequest{HTML: bareDoc, Prompt: "x", OllamaURL: ts.URL})
	assert.Equal(t, "x", res.HTML)
	assert.Equal(t, "mistral", seen.Load())
}

func TestEditFixedClient(t *testing.T) {
	e := NewEditor(FixedClient(nil), WithDefaultModel("gpt-4o-mini"))
	res := e.Edit(context.Background(), EditRequest{HTML: bareDoc, Prompt: "faq"})
	assert.True(t, strings.HasPrefix(res.Log, "Ollama not configured"))
	assert.Contains(t, res.HTML, "FAQ")
}
