package scoring

import (
	"gonum.org/v1/gonum/floats"

	"github.com/tensorplex-labs/pridano/internal/core"
)

// DefaultWeights apply to accessibility, class density and contrast.
var DefaultWeights = []float64{0.3, 0.4, 0.3}

// WeightedScorer is a fixed linear combination of the features. With
// non-negative weights summing to 1 the score lies in [0,1] and grows with
// each feature.
type WeightedScorer struct {
	weights []float64
}

func NewWeightedScorer() *WeightedScorer {
	w := make([]float64, len(DefaultWeights))
	copy(w, DefaultWeights)
	return &WeightedScorer{weights: w}
}

func (s *WeightedScorer) Name() string { return WeightedName }

func (s *WeightedScorer) Score(files core.FileSet) float64 {
	return floats.Dot(s.weights, ExtractFeatures(files).Vector())
}
