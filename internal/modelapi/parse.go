package modelapi

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/tensorplex-labs/pridano/internal/core"
)

var htmlOutputRe = regexp.MustCompile(`(?s)<HTML_OUTPUT>(.*)</HTML_OUTPUT>`)

// ExtractHTMLOutput returns the trimmed text between the HTML_OUTPUT markers.
func ExtractHTMLOutput(text string) (string, bool) {
	m := htmlOutputRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// ExtractFileSet reads the three recognized files out of the first brace
// delimited object in text. Models often wrap the object in prose or code
// fences, so everything outside the outermost braces is ignored.
func ExtractFileSet(text string) (core.FileSet, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no json object found: %w", ErrMalformedOutput)
	}

	raw := text[start : end+1]
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("invalid json object: %w", ErrMalformedOutput)
	}

	doc := gjson.Parse(raw)
	files := make(core.FileSet, len(core.RecognizedFiles))
	for _, name := range core.RecognizedFiles {
		files[name] = doc.Get(escapePath(name)).String()
	}
	if strings.TrimSpace(files.Index()) == "" {
		return nil, fmt.Errorf("missing %s: %w", core.IndexFile, ErrMalformedOutput)
	}
	return files, nil
}

// escapePath makes a file name usable as a single gjson path component.
func escapePath(name string) string {
	return strings.ReplaceAll(name, ".", `\.`)
}
