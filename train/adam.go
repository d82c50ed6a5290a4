package train

import (
	"math"

	"github.com/zuclubit/momoto-sub008/neural"
)

// AdamState holds the first and second moment estimates.
type AdamState struct {
	M neural.Params
	V neural.Params
	T int
}

// Step applies one bias-corrected Adam update to p.
func (a *AdamState) Step(p, grad *neural.Params, cfg Config) {
	a.T++
	b1, b2 := cfg.Beta1, cfg.Beta2
	c1 := 1 - math.Pow(b1, float64(a.T))
	c2 := 1 - math.Pow(b2, float64(a.T))
	for i := range p {
		g := grad[i]
		a.M[i] = b1*a.M[i] + (1-b1)*g
		a.V[i] = b2*a.V[i] + (1-b2)*g*g
		mHat := a.M[i] / c1
		vHat := a.V[i] / c2
		p[i] -= cfg.LearningRate * mHat / (math.Sqrt(vHat) + cfg.Epsilon)
	}
}
