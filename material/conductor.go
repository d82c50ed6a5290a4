package material

import (
	"fmt"
	"unsafe"
)

// ConductorParams holds the spectral complex index n + ik of a metal.
type ConductorParams struct {
	N           Spectrum `json:"n" yaml:"n"`
	K           Spectrum `json:"k" yaml:"k"`
	ExteriorIOR float64  `json:"exteriorIor,omitempty" yaml:"exteriorIor,omitempty"`
}

func (p ConductorParams) Validate() error {
	if p.N.IsZero() || p.K.IsZero() {
		return fmt.Errorf("%w: conductor needs both n and k", ErrInvalidParameters)
	}
	if !p.N.valid() || !p.K.valid() {
		return fmt.Errorf("%w: conductor spectrum is malformed", ErrInvalidParameters)
	}
	if p.N.Min() <= 0 {
		return fmt.Errorf("%w: conductor n must be positive", ErrInvalidParameters)
	}
	if p.K.Min() < 0 {
		return fmt.Errorf("%w: conductor k must be >= 0", ErrInvalidParameters)
	}
	if p.ExteriorIOR < 0 || !isFinite(p.ExteriorIOR) {
		return fmt.Errorf("%w: conductor exterior ior %g", ErrInvalidParameters, p.ExteriorIOR)
	}
	return nil
}

// Conductor is an opaque smooth metal: T = 0 and A = 1 - R.
type Conductor struct {
	p ConductorParams
}

// NewConductor builds a wavelength-independent conductor. Invalid values
// fall back to n = 1, k = 0 in the corresponding component.
func NewConductor(n, k float64) *Conductor {
	if !isFinite(n) || n <= 0 {
		n = 1
	}
	if !isFinite(k) || k < 0 {
		k = 0
	}
	return &Conductor{p: ConductorParams{N: Constant(n), K: Constant(k), ExteriorIOR: 1}}
}

func NewSpectralConductor(p ConductorParams) (*Conductor, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.N, p.K = p.N.clone(), p.K.clone()
	p.ExteriorIOR = exteriorOrVacuum(p.ExteriorIOR)
	return &Conductor{p: p}, nil
}

func (c *Conductor) Params() ConductorParams {
	p := c.p
	p.N, p.K = p.N.clone(), p.K.clone()
	return p
}

// IndexAt returns n and k at wavelength.
func (c *Conductor) IndexAt(wavelength float64) (n, k float64) {
	return c.p.N.At(wavelength), c.p.K.At(wavelength)
}

func (c *Conductor) Evaluate(ctx Context) Response {
	ctx = ctx.Sanitize()
	n, k := c.IndexAt(ctx.Wavelength)
	r := fresnelConductor(ctx.CosThetaI(), c.p.ExteriorIOR, n, k)
	return Normalize(Response{R: r, A: 1 - r})
}

func (c *Conductor) Kind() Kind { return KindConductor }

func (c *Conductor) Traits() Traits {
	n, k := c.IndexAt(ReferenceWavelength)
	return Traits{Kind: KindConductor, IOR: n, Extinction: k}
}

func (c *Conductor) MemoryFootprint() int {
	return int(unsafe.Sizeof(*c)) + 8*(len(c.p.N.Values)+len(c.p.N.Wavelengths)+len(c.p.K.Values)+len(c.p.K.Wavelengths))
}
