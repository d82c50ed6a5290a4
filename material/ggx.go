package material

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	minAlpha = 1e-4
	maxAlpha = 1.0

	// DefaultGGXSamples is the per-axis size of the stratified albedo grid.
	DefaultGGXSamples = 16
	maxGGXSamples     = 64
)

// GGXParams describes a rough interface with an anisotropic GGX distribution.
// Extinction > 0 selects a conductor base, otherwise the base is dielectric.
type GGXParams struct {
	AlphaX      float64 `json:"alphaX" yaml:"alphaX"`
	AlphaY      float64 `json:"alphaY" yaml:"alphaY"`
	IOR         float64 `json:"ior" yaml:"ior"`
	Extinction  float64 `json:"extinction,omitempty" yaml:"extinction,omitempty"`
	ExteriorIOR float64 `json:"exteriorIor,omitempty" yaml:"exteriorIor,omitempty"`
	Samples     int     `json:"samples,omitempty" yaml:"samples,omitempty"`
}

func (p GGXParams) Validate() error {
	switch {
	case !isFinite(p.AlphaX) || !isFinite(p.AlphaY) || p.AlphaX < 0 || p.AlphaY < 0:
		return fmt.Errorf("%w: ggx roughness (%g, %g) must be >= 0", ErrInvalidParameters, p.AlphaX, p.AlphaY)
	case !isFinite(p.IOR) || p.IOR <= 0:
		return fmt.Errorf("%w: ggx ior %g must be positive", ErrInvalidParameters, p.IOR)
	case !isFinite(p.Extinction) || p.Extinction < 0:
		return fmt.Errorf("%w: ggx extinction %g must be >= 0", ErrInvalidParameters, p.Extinction)
	case p.ExteriorIOR < 0 || !isFinite(p.ExteriorIOR):
		return fmt.Errorf("%w: ggx exterior ior %g", ErrInvalidParameters, p.ExteriorIOR)
	case p.Samples < 0 || p.Samples > maxGGXSamples:
		return fmt.Errorf("%w: ggx samples %d outside [0, %d]", ErrInvalidParameters, p.Samples, maxGGXSamples)
	}
	return nil
}

// AnisotropicGGX is a microfacet interface with height-correlated Smith
// masking and exact Fresnel. Its response is the directional albedo.
type AnisotropicGGX struct {
	p GGXParams
}

func NewAnisotropicGGX(p GGXParams) (*AnisotropicGGX, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.AlphaX = clampAlpha(p.AlphaX)
	p.AlphaY = clampAlpha(p.AlphaY)
	p.ExteriorIOR = exteriorOrVacuum(p.ExteriorIOR)
	if p.Samples == 0 {
		p.Samples = DefaultGGXSamples
	}
	return &AnisotropicGGX{p: p}, nil
}

func NewIsotropicGGX(alpha, ior float64) (*AnisotropicGGX, error) {
	return NewAnisotropicGGX(GGXParams{AlphaX: alpha, AlphaY: alpha, IOR: ior})
}

func (g *AnisotropicGGX) Params() GGXParams { return g.p }

func (g *AnisotropicGGX) conductor() bool { return g.p.Extinction > 0 }

func (g *AnisotropicGGX) fresnel(cosH float64) float64 {
	if g.conductor() {
		return fresnelConductor(cosH, g.p.ExteriorIOR, g.p.IOR, g.p.Extinction)
	}
	return fresnelDielectric(cosH, g.p.ExteriorIOR, g.p.IOR)
}

// D is the anisotropic GGX normal distribution.
func (g *AnisotropicGGX) D(h mgl64.Vec3) float64 {
	if h.Z() <= 0 {
		return 0
	}
	ax, ay := g.p.AlphaX, g.p.AlphaY
	e := h.X()*h.X()/(ax*ax) + h.Y()*h.Y()/(ay*ay) + h.Z()*h.Z()
	return 1 / (math.Pi * ax * ay * e * e)
}

// lambda is the Smith auxiliary function; the sign of w.Z is ignored.
func (g *AnisotropicGGX) lambda(w mgl64.Vec3) float64 {
	z2 := w.Z() * w.Z()
	if z2 < minCos*minCos {
		z2 = minCos * minCos
	}
	a2 := (g.p.AlphaX*g.p.AlphaX*w.X()*w.X() + g.p.AlphaY*g.p.AlphaY*w.Y()*w.Y()) / z2
	return 0.5 * (-1 + math.Sqrt(1+a2))
}

func (g *AnisotropicGGX) g1(w mgl64.Vec3) float64 { return 1 / (1 + g.lambda(w)) }

func (g *AnisotropicGGX) g2(wi, wo mgl64.Vec3) float64 {
	return 1 / (1 + g.lambda(wi) + g.lambda(wo))
}

// Value is the reflection lobe D·G2·F / (4 cosθi cosθo).
func (g *AnisotropicGGX) Value(ctx Context) float64 {
	ctx = ctx.Sanitize()
	wi, wo := ctx.Wi, ctx.Wo
	ci, co := wi.Z(), wo.Z()
	if ci < minCos || co < minCos {
		return 0
	}
	h := wi.Add(wo)
	if h.Len() == 0 {
		return 0
	}
	h = h.Normalize()
	f := g.fresnel(math.Abs(wi.Dot(h)))
	return g.D(h) * g.g2(wi, wo) * f / (4 * ci * co)
}

// Evaluate integrates the lobe over the hemisphere with a stratified grid
// of visible-normal samples, so R and T are bounded by the Fresnel terms.
func (g *AnisotropicGGX) Evaluate(ctx Context) Response {
	ctx = ctx.Sanitize()
	wi := ctx.Wi
	if wi.Z() < minCos {
		wi = mgl64.Vec3{wi.X(), wi.Y(), minCos}.Normalize()
	}
	g1i := g.g1(wi)
	n := g.p.Samples
	var r, t float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			u1 := (float64(i) + 0.5) / float64(n)
			u2 := (float64(j) + 0.5) / float64(n)
			h := g.sampleVisibleNormal(wi, u1, u2)
			cosH := wi.Dot(h)
			if cosH <= 0 {
				continue
			}
			f := g.fresnel(cosH)

			wo := h.Mul(2 * cosH).Sub(wi)
			if wo.Z() > 0 {
				r += f * g.g2(wi, wo) / g1i
			}
			if g.conductor() || f >= 1 {
				continue
			}
			if wt, ok := refractAbout(wi, h, g.p.ExteriorIOR/g.p.IOR); ok {
				t += (1 - f) * g.g2(wi, wt) / g1i
			}
		}
	}
	inv := 1 / float64(n*n)
	r, t = clamp01(r*inv), clamp01(t*inv)
	return Normalize(Response{R: r, T: t, A: 1 - r - t})
}

// sampleVisibleNormal draws a microfacet normal from the distribution of
// normals visible from wi (Heitz 2018).
func (g *AnisotropicGGX) sampleVisibleNormal(wi mgl64.Vec3, u1, u2 float64) mgl64.Vec3 {
	ax, ay := g.p.AlphaX, g.p.AlphaY
	vh := mgl64.Vec3{ax * wi.X(), ay * wi.Y(), wi.Z()}.Normalize()

	t1 := mgl64.Vec3{1, 0, 0}
	if lensq := vh.X()*vh.X() + vh.Y()*vh.Y(); lensq > 0 {
		t1 = mgl64.Vec3{-vh.Y(), vh.X(), 0}.Mul(1 / math.Sqrt(lensq))
	}
	t2 := vh.Cross(t1)

	rad := math.Sqrt(u1)
	sp, cp := math.Sincos(2 * math.Pi * u2)
	p1, p2 := rad*cp, rad*sp
	s := 0.5 * (1 + vh.Z())
	p2 = (1-s)*math.Sqrt(math.Max(0, 1-p1*p1)) + s*p2

	nh := t1.Mul(p1).Add(t2.Mul(p2)).Add(vh.Mul(math.Sqrt(math.Max(0, 1-p1*p1-p2*p2))))
	return mgl64.Vec3{ax * nh.X(), ay * nh.Y(), math.Max(1e-9, nh.Z())}.Normalize()
}

// refractAbout refracts wi through the microfacet normal h for relative
// index eta = etaI/etaT. The result points into the lower hemisphere.
func refractAbout(wi, h mgl64.Vec3, eta float64) (mgl64.Vec3, bool) {
	cosI := wi.Dot(h)
	sin2T := eta * eta * math.Max(0, 1-cosI*cosI)
	if sin2T >= 1 {
		return mgl64.Vec3{}, false
	}
	cosT := math.Sqrt(1 - sin2T)
	return wi.Mul(-eta).Add(h.Mul(eta*cosI - cosT)), true
}

func (g *AnisotropicGGX) Kind() Kind { return KindAnisotropicGGX }

func (g *AnisotropicGGX) Traits() Traits {
	return Traits{
		Kind:       KindAnisotropicGGX,
		Roughness:  0.5 * (g.p.AlphaX + g.p.AlphaY),
		IOR:        g.p.IOR,
		Extinction: g.p.Extinction,
	}
}

func (g *AnisotropicGGX) MemoryFootprint() int { return int(unsafe.Sizeof(*g)) }

func clampAlpha(a float64) float64 {
	return math.Max(minAlpha, math.Min(maxAlpha, a))
}
