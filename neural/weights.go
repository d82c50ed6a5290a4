package neural

import (
	"math"
	"math/rand"
	"unsafe"

	"github.com/google/uuid"
)

// Weights is an immutable parameter snapshot. Share it freely between
// goroutines; training publishes new snapshots instead of mutating one.
type Weights struct {
	id      string
	version int
	params  Params
}

func makeWeightsID() string {
	return uuid.NewString()
}

// NewZeroWeights returns the identity correction: every output is exactly 0.
func NewZeroWeights() *Weights {
	return &Weights{id: makeWeightsID()}
}

// NewInitialWeights draws a SIREN initialisation from seed. The output layer
// starts near zero so the first corrections are negligible.
func NewInitialWeights(seed int64) *Weights {
	rng := rand.New(rand.NewSource(seed))
	uniform := func(limit float64) float64 { return (2*rng.Float64() - 1) * limit }

	var p Params
	for i := 0; i < InputSize*HiddenSize; i++ {
		p[OffsetW0+i] = uniform(1.0 / InputSize)
	}
	for j := 0; j < HiddenSize; j++ {
		p[OffsetB0+j] = uniform(1 / math.Sqrt(InputSize))
	}
	hidden := math.Sqrt(6.0/HiddenSize) / Omega0
	for i := 0; i < HiddenSize*HiddenSize; i++ {
		p[OffsetW1+i] = uniform(hidden)
	}
	for k := 0; k < HiddenSize; k++ {
		p[OffsetB1+k] = uniform(1 / math.Sqrt(HiddenSize))
	}
	for i := 0; i < HiddenSize*OutputSize; i++ {
		p[OffsetWout+i] = uniform(1e-3)
	}
	return &Weights{id: makeWeightsID(), params: p}
}

// FromParams snapshots p under a fresh id.
func FromParams(p *Params, version int) *Weights {
	return &Weights{id: makeWeightsID(), version: version, params: *p}
}

func (w *Weights) ID() string   { return w.id }
func (w *Weights) Version() int { return w.version }

// Params returns a mutable copy of the parameters.
func (w *Weights) Params() Params { return w.params }

// Forward evaluates the network without allocating.
func (w *Weights) Forward(x Input) Output {
	var c Cache
	return w.params.Forward(x, &c)
}

// IsZero reports whether every parameter is zero.
func (w *Weights) IsZero() bool {
	for _, v := range w.params {
		if v != 0 {
			return false
		}
	}
	return true
}

func (w *Weights) MemoryFootprint() int {
	return int(unsafe.Sizeof(*w)) + len(w.id)
}
