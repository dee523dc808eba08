package client

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/pridano/internal/config"
	"github.com/tensorplex-labs/pridano/internal/core"
	"github.com/tensorplex-labs/pridano/internal/modelapi"
	"github.com/tensorplex-labs/pridano/internal/runstore"
	"github.com/tensorplex-labs/pridano/internal/scoring"
	"github.com/tensorplex-labs/pridano/internal/server"
	"github.com/tensorplex-labs/pridano/internal/sitegen"
)

// startServer runs the real HTTP server on a random local port.
func startServer(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	cfg := config.ServerEnvConfig{
		Host:      "127.0.0.1",
		BodyLimit: 1 << 20,
		SiteRoot:  root,
		RunsDir:   filepath.Join(root, "runs"),
	}
	store, err := runstore.New(cfg.RunsDir)
	require.NoError(t, err)
	scorers := scoring.DefaultRegistry(42)

	srv := server.New(cfg, server.Deps{
		Generator: sitegen.NewGenerator(store, scorers.Default()),
		Editor:    sitegen.NewEditor(sitegen.OllamaFactory(modelapi.Options{})),
		Scorers:   scorers,
		Store:     store,
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.App.Listener(ln) }()
	t.Cleanup(func() { _ = srv.App.Shutdown() })
	return "http://" + ln.Addr().String()
}

func newTestClient(t *testing.T, baseURL string, zstd bool) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: baseURL, ZstdCompression: zstd})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "  "})
	assert.Error(t, err)
}

func TestClientAgainstServer(t *testing.T) {
	baseURL := startServer(t)

	for _, compressed := range []bool{false, true} {
		c := newTestClient(t, baseURL, compressed)
		ctx := context.Background()

		require.NoError(t, c.Health(ctx))

		brief := core.DefaultBrief()
		brief.ProjectName = "Atelier " + strconv.FormatBool(compressed)
		res, err := c.Generate(ctx, brief, 2, scoring.WeightedName)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(res.SavedAt, "_atelier-"+strconv.FormatBool(compressed)), res.SavedAt)
		assert.Len(t, res.Variants, 2)
		assert.Contains(t, res.Best.Files.Index(), brief.ProjectName)

		edit, err := c.Edit(ctx, sitegen.EditRequest{HTML: "<body></body>", Prompt: "stripe"})
		require.NoError(t, err)
		assert.Contains(t, edit.Log, "✔ Stripe demo button inserted")

		runs, err := c.Runs(ctx, 10)
		require.NoError(t, err)
		assert.NotEmpty(t, runs)
	}
}

func TestClientReportsAPIErrors(t *testing.T) {
	c := newTestClient(t, startServer(t), true)

	_, err := c.Generate(context.Background(), core.DefaultBrief(), 7, "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "variant count out of range")
}

func TestGenerateMany(t *testing.T) {
	c := newTestClient(t, startServer(t), false)

	briefs := []core.Brief{core.DefaultBrief(), core.DefaultBrief(), core.DefaultBrief()}
	briefs[1].ProjectName = "Deux"
	briefs[2].ProjectName = "Trois"

	results, errs := c.GenerateMany(context.Background(), briefs, 1, "")
	require.Len(t, results, 3)
	for i := range briefs {
		require.NoError(t, errs[i])
		assert.Contains(t, results[i].Best.Files.Index(), briefs[i].ProjectName)
	}
}

func TestDecodeDetailMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"missing"}`))
	}))
	defer ts.Close()

	err := newTestClient(t, ts.URL, false).Health(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "missing", apiErr.Message)
	assert.Equal(t, "HTTP error 404: missing", err.Error())
}
