// Package scoring ranks generated file sets from shallow textual signals.
package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tensorplex-labs/pridano/internal/core"
)

const (
	WeightedName       = "weighted"
	PlaceholderNetName = "placeholder-net"
)

// Scorer assigns a quality score to a file set; higher is better.
type Scorer interface {
	Name() string
	Score(files core.FileSet) float64
}

// Registry resolves scorers by name. It is read-only after construction.
type Registry struct {
	scorers  map[string]Scorer
	fallback string
}

// NewRegistry registers the given scorers; the first one is the default.
func NewRegistry(scorers ...Scorer) *Registry {
	r := &Registry{scorers: make(map[string]Scorer, len(scorers))}
	for i, s := range scorers {
		if i == 0 {
			r.fallback = s.Name()
		}
		r.scorers[s.Name()] = s
	}
	return r
}

// DefaultRegistry holds the weighted scorer (default) and the placeholder
// network seeded with seed.
func DefaultRegistry(seed uint64) *Registry {
	return NewRegistry(NewWeightedScorer(), NewPlaceholderNet(WithSeed(seed)))
}

// Get returns the scorer called name, or the default one when name is empty.
func (r *Registry) Get(name string) (Scorer, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		name = r.fallback
	}
	s, ok := r.scorers[name]
	if !ok {
		return nil, fmt.Errorf("unknown scorer %q, expected one of %s", name, strings.Join(r.Names(), ", "))
	}
	return s, nil
}

// WithDefault returns a copy of r whose default scorer is name.
func (r *Registry) WithDefault(name string) (*Registry, error) {
	s, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return &Registry{scorers: r.scorers, fallback: s.Name()}, nil
}

// Default returns the default scorer.
func (r *Registry) Default() Scorer {
	return r.scorers[r.fallback]
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.scorers))
	for n := range r.scorers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
