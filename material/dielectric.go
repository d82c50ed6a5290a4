package material

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl64"
)

// sodiumD is the Cauchy reference wavelength in micrometres.
const sodiumD = 0.5893

// DielectricParams describes a smooth transparent interface.
type DielectricParams struct {
	IOR float64 `json:"ior" yaml:"ior"`
	// Dispersion is the Cauchy B coefficient in µm².
	Dispersion float64 `json:"dispersion,omitempty" yaml:"dispersion,omitempty"`
	// ExteriorIOR of 0 means vacuum.
	ExteriorIOR float64 `json:"exteriorIor,omitempty" yaml:"exteriorIor,omitempty"`
	// Absorption is the Beer-Lambert coefficient in 1/mm over Thickness in mm.
	Absorption float64 `json:"absorption,omitempty" yaml:"absorption,omitempty"`
	Thickness  float64 `json:"thickness,omitempty" yaml:"thickness,omitempty"`
}

func (p DielectricParams) Validate() error {
	switch {
	case !isFinite(p.IOR) || p.IOR <= 0:
		return fmt.Errorf("%w: dielectric ior %g must be positive", ErrInvalidParameters, p.IOR)
	case !isFinite(p.Dispersion):
		return fmt.Errorf("%w: dielectric dispersion %g", ErrInvalidParameters, p.Dispersion)
	case p.ExteriorIOR < 0 || !isFinite(p.ExteriorIOR):
		return fmt.Errorf("%w: dielectric exterior ior %g", ErrInvalidParameters, p.ExteriorIOR)
	case p.Absorption < 0 || !isFinite(p.Absorption):
		return fmt.Errorf("%w: dielectric absorption %g must be >= 0", ErrInvalidParameters, p.Absorption)
	case p.Thickness < 0 || !isFinite(p.Thickness):
		return fmt.Errorf("%w: dielectric thickness %g must be >= 0", ErrInvalidParameters, p.Thickness)
	}
	return nil
}

// Dielectric is a smooth interface with exact Fresnel and optional
// Beer-Lambert absorption in the slab behind it.
type Dielectric struct {
	p DielectricParams
}

// NewDielectric returns a non-absorbing dielectric in vacuum. Non-positive or
// non-finite ior falls back to 1.5.
func NewDielectric(ior float64) *Dielectric {
	if !isFinite(ior) || ior <= 0 {
		ior = 1.5
	}
	return &Dielectric{p: DielectricParams{IOR: ior, ExteriorIOR: 1}}
}

func NewDielectricWithParams(p DielectricParams) (*Dielectric, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.ExteriorIOR = exteriorOrVacuum(p.ExteriorIOR)
	return &Dielectric{p: p}, nil
}

func (d *Dielectric) Params() DielectricParams { return d.p }

// IORAt applies the Cauchy dispersion term around the sodium D line.
func (d *Dielectric) IORAt(wavelength float64) float64 {
	if d.p.Dispersion == 0 {
		return d.p.IOR
	}
	um := wavelength / 1000
	n := d.p.IOR + d.p.Dispersion*(1/(um*um)-1/(sodiumD*sodiumD))
	return math.Max(n, 1e-3)
}

func (d *Dielectric) Evaluate(ctx Context) Response {
	ctx = ctx.Sanitize()
	etaI, etaT := d.p.ExteriorIOR, d.IORAt(ctx.Wavelength)
	cosI := ctx.CosThetaI()

	cosT, ok := refractedCos(clampCos(cosI), etaI, etaT)
	if !ok {
		return Response{R: 1}
	}
	r := fresnelDielectric(cosI, etaI, etaT)
	t := 1 - r
	if od := d.p.Absorption * d.p.Thickness; od > 0 {
		t *= math.Exp(-od / math.Max(cosT, minCos))
	}
	return Normalize(Response{R: r, T: t, A: 1 - r - t})
}

// Refract bends both directions into the medium, keeping their azimuths.
func (d *Dielectric) Refract(ctx Context) Context {
	ctx = ctx.Sanitize()
	eta := d.p.ExteriorIOR / d.IORAt(ctx.Wavelength)
	return Context{
		Wi:         refractDirection(ctx.Wi, eta),
		Wo:         refractDirection(ctx.Wo, eta),
		Wavelength: ctx.Wavelength,
	}
}

func (d *Dielectric) Kind() Kind { return KindDielectric }

func (d *Dielectric) Traits() Traits {
	return Traits{Kind: KindDielectric, IOR: d.IORAt(ReferenceWavelength)}
}

func (d *Dielectric) MemoryFootprint() int { return int(unsafe.Sizeof(*d)) }

// refractDirection maps a direction above the surface to the transmitted one
// (mirrored back to the upper hemisphere) for relative index eta = etaI/etaT.
func refractDirection(v mgl64.Vec3, eta float64) mgl64.Vec3 {
	sinX, sinY := v.X()*eta, v.Y()*eta
	sin2 := sinX*sinX + sinY*sinY
	if sin2 >= 1 {
		l := math.Sqrt(sin2)
		return mgl64.Vec3{sinX / l, sinY / l, 0}
	}
	return mgl64.Vec3{sinX, sinY, math.Sqrt(1 - sin2)}
}
