package scoring

import (
	"gonum.org/v1/gonum/floats"

	"github.com/tensorplex-labs/pridano/internal/core"
	"github.com/tensorplex-labs/pridano/internal/utils/logger"
)

// Candidate is a file set waiting to be scored.
type Candidate struct {
	Files  core.FileSet
	Source core.Source
}

// ScoreAll scores every candidate with s, keeping input order.
func ScoreAll(s Scorer, candidates []Candidate) []core.Variant {
	variants := make([]core.Variant, len(candidates))
	for i, c := range candidates {
		variants[i] = core.Variant{Files: c.Files, Score: s.Score(c.Files), Source: c.Source}
	}

	if len(variants) > 0 {
		raw := Scores(variants)
		logger.Sugar().Infow("Scored variants",
			"scorer", s.Name(),
			"count", len(variants),
			"min", floats.Min(raw),
			"max", floats.Max(raw),
		)
	}
	return variants
}

// SelectBest returns the highest scoring variant. A later variant replaces
// the current best only when its score is strictly greater, so ties keep the
// earliest. ok is false for an empty slice.
func SelectBest(variants []core.Variant) (best core.Variant, idx int, ok bool) {
	if len(variants) == 0 {
		return core.Variant{}, -1, false
	}
	idx = 0
	for i := 1; i < len(variants); i++ {
		if variants[i].Score > variants[idx].Score {
			idx = i
		}
	}
	return variants[idx], idx, true
}

// Scores extracts the raw scores in order.
func Scores(variants []core.Variant) []float64 {
	out := make([]float64, len(variants))
	for i, v := range variants {
		out[i] = v.Score
	}
	return out
}

// Normalize min-max scales scores into [0,1]. When every score is equal the
// result is all zeros. The input is not modified.
func Normalize(scores []float64) []float64 {
	result := make([]float64, len(scores))
	copy(result, scores)
	if len(result) == 0 {
		return result
	}

	lo := floats.Min(result)
	hi := floats.Max(result)
	if hi != lo {
		floats.AddConst(-lo, result)
		floats.Scale(1.0/(hi-lo), result)
	} else {
		floats.Scale(0, result)
	}
	return result
}
