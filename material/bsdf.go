package material

import (
	"runtime"
	"sync"
)

// BSDF maps an evaluation context to an energy-conserving response.
// Implementations are immutable and safe for concurrent use.
type BSDF interface {
	Evaluate(ctx Context) Response
	Kind() Kind
	Traits() Traits
	// MemoryFootprint estimates the bytes held by the value.
	MemoryFootprint() int
}

// Lobe is implemented by BSDFs that expose the raw scattering function
// f(wi, wo), which is what reciprocity is checked against.
type Lobe interface {
	Value(ctx Context) float64
}

// Refractor is implemented by BSDFs that bend light passing through them.
// The layer composer evaluates the layer below at the refracted context.
type Refractor interface {
	Refract(ctx Context) Context
}

// Traits summarises the parameters the neural correction is conditioned on.
type Traits struct {
	Kind       Kind
	Roughness  float64 // mean microfacet alpha, 0 when smooth
	IOR        float64 // real index at ReferenceWavelength
	Extinction float64 // imaginary index at ReferenceWavelength
}

// parallelThreshold is the batch size below which EvaluateMany stays on the caller's goroutine.
const parallelThreshold = 256

// EvaluateMany evaluates every context and keeps the input order. Large
// batches are split into contiguous chunks across runtime.NumCPU() workers.
func EvaluateMany(b BSDF, ctxs []Context) []Response {
	out := make([]Response, len(ctxs))
	if len(ctxs) < parallelThreshold {
		for i, ctx := range ctxs {
			out[i] = b.Evaluate(ctx)
		}
		return out
	}

	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	if workers > len(ctxs) {
		workers = len(ctxs)
	}
	per, rem := len(ctxs)/workers, len(ctxs)%workers

	var wg sync.WaitGroup
	start := 0
	for w := 0; w < workers; w++ {
		n := per
		if w < rem {
			n++
		}
		if n == 0 {
			continue
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				out[i] = b.Evaluate(ctxs[i])
			}
		}(start, start+n)
		start += n
	}
	wg.Wait()
	return out
}
