package material

import (
	"fmt"
	"math"
	"unsafe"
)

// SubsurfaceParams are the scattering properties of a semi-infinite
// turbid medium. Coefficients are in 1/mm.
type SubsurfaceParams struct {
	SigmaA Spectrum `json:"sigmaA" yaml:"sigmaA"`
	SigmaS Spectrum `json:"sigmaS" yaml:"sigmaS"`
	// G is the Henyey-Greenstein mean cosine.
	G   float64 `json:"g,omitempty" yaml:"g,omitempty"`
	IOR float64 `json:"ior" yaml:"ior"`
}

func (p SubsurfaceParams) Validate() error {
	if p.SigmaA.IsZero() || p.SigmaS.IsZero() || !p.SigmaA.valid() || !p.SigmaS.valid() {
		return fmt.Errorf("%w: subsurface needs sigmaA and sigmaS", ErrInvalidParameters)
	}
	if p.SigmaA.Min() < 0 || p.SigmaS.Min() < 0 {
		return fmt.Errorf("%w: subsurface coefficients must be >= 0", ErrInvalidParameters)
	}
	if !isFinite(p.G) || p.G <= -1 || p.G >= 1 {
		return fmt.Errorf("%w: subsurface g %g outside (-1, 1)", ErrInvalidParameters, p.G)
	}
	if !isFinite(p.IOR) || p.IOR <= 0 {
		return fmt.Errorf("%w: subsurface ior %g must be positive", ErrInvalidParameters, p.IOR)
	}
	if fdr := diffuseFresnel(p.IOR); fdr <= -1 || fdr >= 1 {
		return fmt.Errorf("%w: subsurface ior %g outside the diffusion fit", ErrInvalidParameters, p.IOR)
	}
	return nil
}

// Subsurface is the classical dipole diffusion model for multiple scattering
// below a smooth boundary.
type Subsurface struct {
	p SubsurfaceParams
	// boundary is the internal reflection term A(η).
	boundary float64
}

func NewSubsurface(p SubsurfaceParams) (*Subsurface, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.SigmaA, p.SigmaS = p.SigmaA.clone(), p.SigmaS.clone()
	fdr := diffuseFresnel(p.IOR)
	return &Subsurface{p: p, boundary: (1 + fdr) / (1 - fdr)}, nil
}

func (s *Subsurface) Params() SubsurfaceParams {
	p := s.p
	p.SigmaA, p.SigmaS = p.SigmaA.clone(), p.SigmaS.clone()
	return p
}

// diffuseFresnel is the polynomial fit of the hemispherical internal reflectance.
func diffuseFresnel(eta float64) float64 {
	return -1.440/(eta*eta) + 0.710/eta + 0.668 + 0.0636*eta
}

// coefficients returns the reduced albedo, reduced extinction and effective transport coefficient.
func (s *Subsurface) coefficients(wavelength float64) (albedo, sigmaT, sigmaTr float64) {
	sa := s.p.SigmaA.At(wavelength)
	ss := s.p.SigmaS.At(wavelength) * (1 - s.p.G)
	sigmaT = sa + ss
	if sigmaT <= 0 {
		return 0, 0, 0
	}
	return ss / sigmaT, sigmaT, math.Sqrt(3 * sa * sigmaT)
}

// TotalDiffuseReflectance is the profile integrated over the surface.
func (s *Subsurface) TotalDiffuseReflectance(wavelength float64) float64 {
	albedo, _, _ := s.coefficients(clampWavelength(wavelength))
	e := math.Sqrt(3 * (1 - albedo))
	return clamp01(0.5 * albedo * (1 + math.Exp(-4.0/3.0*s.boundary*e)) * math.Exp(-e))
}

// Profile is the diffuse reflectance R_d(r) at distance r (mm) from the
// point of incidence.
func (s *Subsurface) Profile(r, wavelength float64) float64 {
	albedo, sigmaT, sigmaTr := s.coefficients(clampWavelength(wavelength))
	if sigmaT == 0 || !isFinite(r) {
		return 0
	}
	zr := 1 / sigmaT
	zv := zr * (1 + 4.0/3.0*s.boundary)
	dr := math.Sqrt(r*r + zr*zr)
	dv := math.Sqrt(r*r + zv*zv)

	primary := zr * (sigmaTr*dr + 1) * math.Exp(-sigmaTr*dr) / (dr * dr * dr)
	virtual := zv * (sigmaTr*dv + 1) * math.Exp(-sigmaTr*dv) / (dv * dv * dv)
	return albedo / (4 * math.Pi) * (primary + virtual)
}

func (s *Subsurface) Evaluate(ctx Context) Response {
	ctx = ctx.Sanitize()
	fr := fresnelDielectric(ctx.CosThetaI(), 1, s.p.IOR)
	r := fr + (1-fr)*s.TotalDiffuseReflectance(ctx.Wavelength)
	return Normalize(Response{R: r, A: 1 - r})
}

// Value is the diffuse lobe (1/π)·Ft(wi)·Rd·Ft(wo).
func (s *Subsurface) Value(ctx Context) float64 {
	ctx = ctx.Sanitize()
	fti := 1 - fresnelDielectric(ctx.CosThetaI(), 1, s.p.IOR)
	fto := 1 - fresnelDielectric(ctx.CosThetaO(), 1, s.p.IOR)
	return fti * s.TotalDiffuseReflectance(ctx.Wavelength) * fto / math.Pi
}

func (s *Subsurface) Kind() Kind { return KindSubsurface }

func (s *Subsurface) Traits() Traits {
	return Traits{Kind: KindSubsurface, Roughness: 0, IOR: s.p.IOR}
}

func (s *Subsurface) MemoryFootprint() int {
	n := len(s.p.SigmaA.Values) + len(s.p.SigmaA.Wavelengths) + len(s.p.SigmaS.Values) + len(s.p.SigmaS.Wavelengths)
	return int(unsafe.Sizeof(*s)) + 8*n
}
