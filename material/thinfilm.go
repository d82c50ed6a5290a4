package material

import (
	"fmt"
	"math"
	"math/cmplx"
	"unsafe"
)

// FilmLayer is one homogeneous coating layer.
type FilmLayer struct {
	IOR        float64 `json:"ior" yaml:"ior"`
	Extinction float64 `json:"extinction,omitempty" yaml:"extinction,omitempty"`
	// Thickness in nm.
	Thickness float64 `json:"thickness" yaml:"thickness"`
}

// ThinFilmParams lists layers from the exterior side down to the substrate.
type ThinFilmParams struct {
	Layers              []FilmLayer `json:"layers" yaml:"layers"`
	SubstrateIOR        Spectrum    `json:"substrateIor" yaml:"substrateIor"`
	SubstrateExtinction Spectrum    `json:"substrateExtinction,omitempty" yaml:"substrateExtinction,omitempty"`
	ExteriorIOR         float64     `json:"exteriorIor,omitempty" yaml:"exteriorIor,omitempty"`
}

func (p ThinFilmParams) Validate() error {
	for i, l := range p.Layers {
		if !isFinite(l.IOR) || l.IOR <= 0 {
			return fmt.Errorf("%w: film layer %d ior %g must be positive", ErrInvalidParameters, i, l.IOR)
		}
		if !isFinite(l.Extinction) || l.Extinction < 0 {
			return fmt.Errorf("%w: film layer %d extinction %g must be >= 0", ErrInvalidParameters, i, l.Extinction)
		}
		if !isFinite(l.Thickness) || l.Thickness < 0 {
			return fmt.Errorf("%w: film layer %d thickness %g must be >= 0", ErrInvalidParameters, i, l.Thickness)
		}
	}
	if p.SubstrateIOR.IsZero() || !p.SubstrateIOR.valid() || p.SubstrateIOR.Min() <= 0 {
		return fmt.Errorf("%w: film substrate ior must be positive", ErrInvalidParameters)
	}
	if !p.SubstrateExtinction.valid() || p.SubstrateExtinction.Min() < 0 {
		return fmt.Errorf("%w: film substrate extinction must be >= 0", ErrInvalidParameters)
	}
	if p.ExteriorIOR < 0 || !isFinite(p.ExteriorIOR) {
		return fmt.Errorf("%w: film exterior ior %g", ErrInvalidParameters, p.ExteriorIOR)
	}
	return nil
}

// ThinFilm evaluates an interference coating stack with the characteristic
// matrix method. An absorbing substrate is opaque.
type ThinFilm struct {
	p ThinFilmParams
}

func NewThinFilm(p ThinFilmParams) (*ThinFilm, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.Layers = append([]FilmLayer(nil), p.Layers...)
	p.SubstrateIOR = p.SubstrateIOR.clone()
	p.SubstrateExtinction = p.SubstrateExtinction.clone()
	p.ExteriorIOR = exteriorOrVacuum(p.ExteriorIOR)
	return &ThinFilm{p: p}, nil
}

// NewSingleFilm coats a transparent substrate with one layer of thickness nm.
func NewSingleFilm(filmIOR, thickness, substrateIOR float64) (*ThinFilm, error) {
	return NewThinFilm(ThinFilmParams{
		Layers:       []FilmLayer{{IOR: filmIOR, Thickness: thickness}},
		SubstrateIOR: Constant(substrateIOR),
	})
}

func (f *ThinFilm) Params() ThinFilmParams {
	p := f.p
	p.Layers = append([]FilmLayer(nil), p.Layers...)
	p.SubstrateIOR = p.SubstrateIOR.clone()
	p.SubstrateExtinction = p.SubstrateExtinction.clone()
	return p
}

func (f *ThinFilm) substrate(wavelength float64) (n, k float64) {
	return f.p.SubstrateIOR.At(wavelength), f.p.SubstrateExtinction.At(wavelength)
}

func (f *ThinFilm) Evaluate(ctx Context) Response {
	ctx = ctx.Sanitize()
	cosI := math.Max(ctx.CosThetaI(), minCos)
	rs, ts := f.stack(cosI, ctx.Wavelength, false)
	rp, tp := f.stack(cosI, ctx.Wavelength, true)
	r := clamp01(0.5 * (rs + rp))
	t := clamp01(0.5 * (ts + tp))
	if _, k := f.substrate(ctx.Wavelength); k > 0 {
		t = 0
	}
	return Normalize(Response{R: r, T: t, A: 1 - r - t})
}

// stack returns reflectance and transmittance for one polarization.
// Complex indices use the N = n - ik convention so that N cosθ lies in the
// fourth quadrant and the phase thickness decays inside absorbers.
func (f *ThinFilm) stack(cosI, wavelength float64, pPol bool) (float64, float64) {
	n0 := complex(f.p.ExteriorIOR, 0)
	sin0 := n0 * complex(math.Sqrt(math.Max(0, 1-cosI*cosI)), 0)
	sin0sq := sin0 * sin0

	admittance := func(n complex128) (eta, nCos complex128) {
		nCos = cmplx.Sqrt(n*n - sin0sq)
		if real(nCos) == 0 && imag(nCos) > 0 {
			// evanescent beyond the critical angle
			nCos = -nCos
		}
		if nCos == 0 {
			nCos = complex(minCos, 0)
		}
		if pPol {
			return n * n / nCos, nCos
		}
		return nCos, nCos
	}

	eta0, _ := admittance(n0)
	ns, ks := f.substrate(wavelength)
	etaSub, _ := admittance(complex(ns, -ks))

	// [B; C] = M_1 ... M_L [1; etaSub]
	b, c := complex(1, 0), etaSub
	for i := len(f.p.Layers) - 1; i >= 0; i-- {
		l := f.p.Layers[i]
		eta, nCos := admittance(complex(l.IOR, -l.Extinction))
		delta := complex(2*math.Pi*l.Thickness/wavelength, 0) * nCos
		cd, sd := cmplx.Cos(delta), cmplx.Sin(delta)
		b, c = cd*b+1i*sd/eta*c, 1i*eta*sd*b+cd*c
	}

	den := eta0*b + c
	if den == 0 {
		return 1, 0
	}
	rAmp := (eta0*b - c) / den
	r := sqAbs(rAmp)
	t := 4 * real(eta0) * real(etaSub) / sqAbs(den)
	if !isFinite(r) || !isFinite(t) {
		return 1, 0
	}
	return r, math.Max(0, t)
}

// Refract bends directions into the substrate; the layers drop out by Snell's invariant.
func (f *ThinFilm) Refract(ctx Context) Context {
	ctx = ctx.Sanitize()
	n, _ := f.substrate(ctx.Wavelength)
	eta := f.p.ExteriorIOR / n
	return Context{
		Wi:         refractDirection(ctx.Wi, eta),
		Wo:         refractDirection(ctx.Wo, eta),
		Wavelength: ctx.Wavelength,
	}
}

func (f *ThinFilm) Kind() Kind { return KindThinFilm }

func (f *ThinFilm) Traits() Traits {
	n, k := f.substrate(ReferenceWavelength)
	return Traits{Kind: KindThinFilm, IOR: n, Extinction: k}
}

func (f *ThinFilm) MemoryFootprint() int {
	size := int(unsafe.Sizeof(*f)) + len(f.p.Layers)*int(unsafe.Sizeof(FilmLayer{}))
	for _, s := range []Spectrum{f.p.SubstrateIOR, f.p.SubstrateExtinction} {
		size += 8 * (len(s.Values) + len(s.Wavelengths))
	}
	return size
}
