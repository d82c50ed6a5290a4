package material

import (
	"fmt"
	"unsafe"
)

// Layered stacks BSDFs from top to bottom and combines them with the
// closed-form sum of inter-layer bounces.
type Layered struct {
	layers []BSDF
}

func NewLayered(layers ...BSDF) (*Layered, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("%w: layered material needs at least one layer", ErrInvalidParameters)
	}
	for i, l := range layers {
		if l == nil {
			return nil, fmt.Errorf("%w: layer %d is nil", ErrInvalidParameters, i)
		}
	}
	return &Layered{layers: append([]BSDF(nil), layers...)}, nil
}

func (l *Layered) Layers() []BSDF { return append([]BSDF(nil), l.layers...) }

// Evaluate propagates the context downward through refracting layers, then
// folds the normalized layer responses from the bottom up.
func (l *Layered) Evaluate(ctx Context) Response {
	ctx = ctx.Sanitize()
	responses := make([]Response, len(l.layers))
	for i, layer := range l.layers {
		responses[i] = Normalize(layer.Evaluate(ctx))
		if rf, ok := layer.(Refractor); ok {
			ctx = rf.Refract(ctx)
		}
	}

	acc := responses[len(responses)-1]
	for i := len(responses) - 2; i >= 0; i-- {
		acc = combine(responses[i], acc)
	}
	return Normalize(acc)
}

// combine places top over bottom.
func combine(top, bottom Response) Response {
	denom := 1 - top.R*bottom.R
	if denom <= DegenerateEpsilon {
		// both layers are perfect mirrors towards each other
		return Response{R: top.R, T: 0, A: 1 - top.R}
	}
	r := top.R + top.T*top.T*bottom.R/denom
	t := top.T * bottom.T / denom
	return Response{R: r, T: t, A: 1 - r - t}
}

func (l *Layered) Kind() Kind { return KindLayered }

// Traits reports the top layer's optical constants.
func (l *Layered) Traits() Traits {
	t := l.layers[0].Traits()
	t.Kind = KindLayered
	return t
}

func (l *Layered) MemoryFootprint() int {
	size := int(unsafe.Sizeof(*l)) + len(l.layers)*int(unsafe.Sizeof(BSDF(nil)))
	for _, layer := range l.layers {
		size += layer.MemoryFootprint()
	}
	return size
}
