package modelapi

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/pridano/internal/core"
)

func TestExtractHTMLOutput(t *testing.T) {
	t.Run("extracts and trims between markers", func(t *testing.T) {
		out, ok := ExtractHTMLOutput("Voici:\n<HTML_OUTPUT>\n<p>x</p>\n</HTML_OUTPUT>\nfin")
		require.True(t, ok)
		assert.Equal(t, "<p>x</p>", out)
	})

	t.Run("spans multiple lines", func(t *testing.T) {
		out, ok := ExtractHTMLOutput("<HTML_OUTPUT><div>\n<p>a</p>\n</div></HTML_OUTPUT>")
		require.True(t, ok)
		assert.Equal(t, "<div>\n<p>a</p>\n</div>", out)
	})

	t.Run("reports missing markers", func(t *testing.T) {
		_, ok := ExtractHTMLOutput("<html></html>")
		assert.False(t, ok)
	})
}

func TestExtractFileSet(t *testing.T) {
	t.Run("reads the three files from a fenced object", func(t *testing.T) {
		text := "Sure!\n```json\n{\"index.html\": \"<h1>Hi</h1>\", \"style.css\": \"h1{color:red}\", \"script.js\": \"console.log(1)\"}\n```"
		files, err := ExtractFileSet(text)
		require.NoError(t, err)
		assert.Equal(t, "<h1>Hi</h1>", files[core.IndexFile])
		assert.Equal(t, "h1{color:red}", files[core.StyleFile])
		assert.Equal(t, "console.log(1)", files[core.ScriptFile])
	})

	t.Run("missing optional files are empty", func(t *testing.T) {
		files, err := ExtractFileSet(`{"index.html": "<p>x</p>"}`)
		require.NoError(t, err)
		assert.Equal(t, "", files[core.StyleFile])
		assert.Equal(t, "", files[core.ScriptFile])
	})

	t.Run("nested braces in css survive", func(t *testing.T) {
		files, err := ExtractFileSet(`{"index.html": "<p>x</p>", "style.css": "p{margin:0}"} trailing`)
		require.NoError(t, err)
		assert.Equal(t, "p{margin:0}", files[core.StyleFile])
	})

	cases := map[string]string{
		"no object":     "I cannot do that",
		"invalid json":  `{"index.html": <p>}`,
		"missing index": `{"style.css": "body{}"}`,
		"blank index":   `{"index.html": "   "}`,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ExtractFileSet(text)
			require.ErrorIs(t, err, ErrMalformedOutput)
		})
	}
}

func TestBuildPrompts(t *testing.T) {
	edit := BuildEditPrompt("ajoute une FAQ", "<body></body>")
	assert.True(t, strings.HasPrefix(edit, "Demande: ajoute une FAQ\nHTML:\n<<<HTML\n"))
	assert.True(t, strings.HasSuffix(edit, "<body></body>\nHTML>>>"))

	b := core.DefaultBrief()
	b.ProjectName = "Acme"
	single := BuildSitePrompt(b, 1, 1)
	assert.Contains(t, single, "Projet: Acme")
	assert.Contains(t, single, "principale: #12C2E9")
	assert.NotContains(t, single, "Variante")

	multi := BuildSitePrompt(b, 2, 3)
	assert.Contains(t, multi, "Variante 2 sur 3")
}
