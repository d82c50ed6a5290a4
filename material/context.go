package material

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	MinWavelength       = 360.0
	MaxWavelength       = 830.0
	ReferenceWavelength = 550.0

	// minCos keeps grazing directions away from the 1/cos singularities.
	minCos = 1e-6
)

// Channel selects one of the three RGB sample wavelengths.
type Channel int

const (
	ChannelR Channel = iota
	ChannelG
	ChannelB
)

// Channels lists the RGB channels in order.
var Channels = [3]Channel{ChannelR, ChannelG, ChannelB}

func (c Channel) Wavelength() float64 {
	switch c {
	case ChannelR:
		return 630
	case ChannelG:
		return 532
	case ChannelB:
		return 465
	}
	return ReferenceWavelength
}

func (c Channel) String() string {
	switch c {
	case ChannelR:
		return "R"
	case ChannelG:
		return "G"
	case ChannelB:
		return "B"
	}
	return "?"
}

// ChannelForWavelength returns the RGB channel whose sample wavelength is nearest.
func ChannelForWavelength(wavelength float64) Channel {
	best := ChannelR
	bestDist := math.Inf(1)
	for _, c := range Channels {
		if d := math.Abs(c.Wavelength() - wavelength); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// Context is the immutable input of one evaluation. Wi and Wo are unit
// vectors in the local shading frame (+Z is the surface normal), both
// pointing away from the surface.
type Context struct {
	Wi         mgl64.Vec3
	Wo         mgl64.Vec3
	Wavelength float64 // nm
}

// NewContext builds a context in the plane of incidence with the exitant
// direction on the mirror side.
func NewContext(cosI, cosO, wavelength float64) Context {
	ci := clampCos(cosI)
	co := clampCos(cosO)
	return Context{
		Wi:         mgl64.Vec3{math.Sqrt(1 - ci*ci), 0, ci},
		Wo:         mgl64.Vec3{-math.Sqrt(1 - co*co), 0, co},
		Wavelength: wavelength,
	}
}

// NewContextAngles builds a context from polar and azimuthal angles in radians.
func NewContextAngles(thetaI, phiI, thetaO, phiO, wavelength float64) Context {
	return Context{
		Wi:         sphericalDirection(thetaI, phiI),
		Wo:         sphericalDirection(thetaO, phiO),
		Wavelength: wavelength,
	}
}

func ChannelContext(cosI, cosO float64, ch Channel) Context {
	return NewContext(cosI, cosO, ch.Wavelength())
}

func (c Context) CosThetaI() float64 { return c.Wi.Z() }
func (c Context) CosThetaO() float64 { return c.Wo.Z() }

// Swapped exchanges the incident and exitant directions.
func (c Context) Swapped() Context {
	return Context{Wi: c.Wo, Wo: c.Wi, Wavelength: c.Wavelength}
}

// WithWavelength returns a copy of c sampled at another wavelength.
func (c Context) WithWavelength(wavelength float64) Context {
	c.Wavelength = wavelength
	return c
}

// Sanitize clamps out-of-domain inputs instead of failing: NaN directions
// become the normal, directions below the horizon are folded onto it and the
// wavelength is clamped into [MinWavelength, MaxWavelength].
func (c Context) Sanitize() Context {
	return Context{
		Wi:         sanitizeDirection(c.Wi),
		Wo:         sanitizeDirection(c.Wo),
		Wavelength: clampWavelength(c.Wavelength),
	}
}

func sphericalDirection(theta, phi float64) mgl64.Vec3 {
	st, ct := math.Sincos(theta)
	sp, cp := math.Sincos(phi)
	return mgl64.Vec3{st * cp, st * sp, ct}
}

func clampCos(c float64) float64 {
	if math.IsNaN(c) {
		return 1
	}
	return math.Max(0, math.Min(1, c))
}

func clampWavelength(wl float64) float64 {
	if math.IsNaN(wl) {
		return ReferenceWavelength
	}
	return math.Max(MinWavelength, math.Min(MaxWavelength, wl))
}

func sanitizeDirection(v mgl64.Vec3) mgl64.Vec3 {
	x, y, z := v.X(), v.Y(), v.Z()
	if !isFinite(x) || !isFinite(y) || !isFinite(z) {
		return mgl64.Vec3{0, 0, 1}
	}
	if z < 0 {
		z = 0
	}
	l := math.Sqrt(x*x + y*y + z*z)
	if z == v.Z() && math.Abs(l-1) <= 1e-12 {
		return v
	}
	if l == 0 {
		if z == 0 && v.Z() < 0 {
			// straight down folds onto the horizon at phi = 0
			return mgl64.Vec3{1, 0, 0}
		}
		return mgl64.Vec3{0, 0, 1}
	}
	return mgl64.Vec3{x / l, y / l, z / l}
}

func isFinite(x float64) bool { return !math.IsInf(x, 0) && !math.IsNaN(x) }
