// Package hybrid wraps a physical BSDF with a neural residual correction.
package hybrid

import (
	"sync/atomic"
	"unsafe"

	"github.com/zuclubit/momoto-sub008/material"
	"github.com/zuclubit/momoto-sub008/neural"
)

// CorrectedBSDF refines a physical model with bounded network corrections
// and renormalizes the result. Weights are swapped atomically; evaluations in
// flight keep the snapshot they started with.
type CorrectedBSDF struct {
	physical material.BSDF
	weights  neural.Store
	enabled  atomic.Bool
}

// New wraps physical with w, or with zero weights when w is nil. The
// correction starts enabled.
func New(physical material.BSDF, w *neural.Weights) *CorrectedBSDF {
	c := &CorrectedBSDF{physical: physical}
	if w == nil {
		w = neural.NewZeroWeights()
	}
	c.weights.Swap(w)
	c.enabled.Store(true)
	return c
}

func (c *CorrectedBSDF) Evaluate(ctx material.Context) material.Response {
	phys := c.physical.Evaluate(ctx)
	if !c.enabled.Load() {
		return phys
	}
	w := c.weights.Get()
	out := w.Forward(Features(ctx, c.physical.Traits(), phys))
	return Apply(phys, out)
}

// EvaluatePhysical skips the correction regardless of the enabled flag.
func (c *CorrectedBSDF) EvaluatePhysical(ctx material.Context) material.Response {
	return c.physical.Evaluate(ctx)
}

func (c *CorrectedBSDF) EvaluateMany(ctxs []material.Context) []material.Response {
	return material.EvaluateMany(c, ctxs)
}

func (c *CorrectedBSDF) SetEnabled(on bool) { c.enabled.Store(on) }
func (c *CorrectedBSDF) Enabled() bool      { return c.enabled.Load() }

// Swap publishes w and returns the snapshot it replaced. nil is ignored.
func (c *CorrectedBSDF) Swap(w *neural.Weights) *neural.Weights {
	return c.weights.Swap(w)
}

func (c *CorrectedBSDF) Weights() *neural.Weights { return c.weights.Get() }

func (c *CorrectedBSDF) Physical() material.BSDF { return c.physical }

func (c *CorrectedBSDF) Kind() material.Kind { return material.KindHybrid }

func (c *CorrectedBSDF) Traits() material.Traits {
	t := c.physical.Traits()
	t.Kind = material.KindHybrid
	return t
}

func (c *CorrectedBSDF) MemoryFootprint() int {
	return int(unsafe.Sizeof(*c)) + c.physical.MemoryFootprint() + c.weights.Get().MemoryFootprint()
}

// Apply adds the corrections to a physical response, derives absorption
// from the remainder and renormalizes.
func Apply(phys material.Response, out neural.Output) material.Response {
	return material.Normalize(Corrected(phys, out))
}

// Corrected is the response before renormalization.
func Corrected(phys material.Response, out neural.Output) material.Response {
	r := phys.R + out.DeltaR
	t := phys.T + out.DeltaT
	return material.Response{R: r, T: t, A: 1 - r - t}
}
