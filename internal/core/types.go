// Package core holds the domain types shared by the generator, the model
// clients, the scorers and the run store.
package core

import "time"

const (
	IndexFile  = "index.html"
	StyleFile  = "style.css"
	ScriptFile = "script.js"

	DefaultBrandColor = "#12C2E9"
)

// RecognizedFiles lists the files a run directory always contains, in write order.
var RecognizedFiles = []string{IndexFile, StyleFile, ScriptFile}

// FileSet maps a filename to its contents.
type FileSet map[string]string

// Index returns the index.html contents, empty when absent.
func (f FileSet) Index() string {
	return f[IndexFile]
}

// Get returns the contents of name, empty when absent.
func (f FileSet) Get(name string) string {
	return f[name]
}

// Source tells where a variant came from.
type Source string

const (
	SourceAssembler Source = "assembler"
	SourceModel     Source = "model"
)

// Variant is one scored candidate.
type Variant struct {
	Files  FileSet `json:"files"`
	Score  float64 `json:"score"`
	Source Source  `json:"source"`
}

// Brief describes the site to generate. Decoders start from DefaultBrief so
// absent JSON fields keep their documented defaults.
type Brief struct {
	ProjectName string   `json:"project_name"`
	Tone        string   `json:"tone"`
	BrandColors []string `json:"brand_colors"`
	Pages       []string `json:"pages"`
	Features    []string `json:"features"`
	Tech        []string `json:"tech"`
	DarkMode    bool     `json:"dark_mode"`
	Model       string   `json:"model,omitempty"`
}

// DefaultBrief returns the brief used when a request omits every field.
func DefaultBrief() Brief {
	return Brief{
		ProjectName: "Mon Site",
		Tone:        "moderne",
		BrandColors: []string{DefaultBrandColor},
		Pages:       []string{"Accueil", "Services", "Contact"},
		Features:    []string{},
		Tech:        []string{"HTML+Tailwind"},
	}
}

// PrimaryColor returns the first brand color or the default one.
func (b Brief) PrimaryColor() string {
	if len(b.BrandColors) == 0 {
		return DefaultBrandColor
	}
	return b.BrandColors[0]
}

// HasFeature reports whether name is listed in the features.
func (b Brief) HasFeature(name string) bool {
	for _, f := range b.Features {
		if f == name {
			return true
		}
	}
	return false
}

// Run is a persisted file set.
type Run struct {
	Name        string    `json:"name"`
	Path        string    `json:"saved_at"`
	ProjectName string    `json:"project_name,omitempty"`
	Score       float64   `json:"score"`
	CreatedAt   time.Time `json:"created_at"`
}
