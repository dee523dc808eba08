package scoring

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/pridano/internal/core"
)

const defaultHiddenUnits = 4

// PlaceholderNet is a fixed two-layer network over the three features. Its
// weights come from a seeded PRNG and are never trained, so the output is an
// arbitrary but deterministic function of the features in (0,1). It exists to
// exercise the scorer interface, not as a quality signal.
type PlaceholderNet struct {
	seed   uint64
	hidden int
	w1     *mat.Dense
	b1     *mat.VecDense
	w2     *mat.Dense
	b2     float64
}

type PlaceholderNetOption func(*PlaceholderNet)

func WithSeed(seed uint64) PlaceholderNetOption {
	return func(n *PlaceholderNet) {
		n.seed = seed
	}
}

func WithHiddenUnits(units int) PlaceholderNetOption {
	return func(n *PlaceholderNet) {
		if units > 0 {
			n.hidden = units
		}
	}
}

func NewPlaceholderNet(opts ...PlaceholderNetOption) *PlaceholderNet {
	n := &PlaceholderNet{hidden: defaultHiddenUnits}
	for _, opt := range opts {
		opt(n)
	}

	rng := rand.New(rand.NewPCG(n.seed, n.seed^0x9e3779b97f4a7c15))
	uniform := func(int) float64 { return rng.Float64()*2 - 1 }

	n.w1 = mat.NewDense(n.hidden, featureCount, fill(n.hidden*featureCount, uniform))
	n.b1 = mat.NewVecDense(n.hidden, fill(n.hidden, uniform))
	n.w2 = mat.NewDense(1, n.hidden, fill(n.hidden, uniform))
	n.b2 = uniform(0)
	return n
}

func (n *PlaceholderNet) Name() string { return PlaceholderNetName }

func (n *PlaceholderNet) Score(files core.FileSet) float64 {
	x := mat.NewVecDense(featureCount, ExtractFeatures(files).Vector())

	h := mat.NewVecDense(n.hidden, nil)
	h.MulVec(n.w1, x)
	h.AddVec(h, n.b1)
	for i := range n.hidden {
		h.SetVec(i, math.Tanh(h.AtVec(i)))
	}

	out := mat.NewVecDense(1, nil)
	out.MulVec(n.w2, h)
	return sigmoid(out.AtVec(0) + n.b2)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func fill(size int, gen func(int) float64) []float64 {
	data := make([]float64, size)
	for i := range data {
		data[i] = gen(i)
	}
	return data
}
