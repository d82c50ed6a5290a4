package validate

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("invalid validator config")

// Config sets the sampling grid and tolerances of every check.
type Config struct {
	IncidenceAngles int     // samples over [0°, 90°]
	Azimuths        int     // samples over [0, 2π)
	MinWavelength   float64 // nm
	MaxWavelength   float64 // nm
	WavelengthStep  float64 // nm

	EnergyTolerance float64
	// ReciprocityTolerance is relative to max(1, |f|).
	ReciprocityTolerance float64
	// SmoothnessThreshold bounds |ΔR| and |ΔT| per nm.
	SmoothnessThreshold float64
	// MonotonicityTolerance bounds the per-step decrease of R for dielectrics.
	MonotonicityTolerance float64
	// ConductorMonotonicityTolerance allows the shallow pre-grazing dip of
	// complex-index Fresnel reflectance.
	ConductorMonotonicityTolerance float64
	// ReciprocityStride subsamples the angle grid for the pairwise check.
	ReciprocityStride int
}

func DefaultConfig() Config {
	return Config{
		IncidenceAngles:       46,
		Azimuths:              4,
		MinWavelength:         380,
		MaxWavelength:         780,
		WavelengthStep:        10,
		EnergyTolerance:       1e-9,
		ReciprocityTolerance:  1e-6,
		SmoothnessThreshold:   0.02,
		MonotonicityTolerance: 1e-3,
		ReciprocityStride:     5,

		ConductorMonotonicityTolerance: 0.05,
	}
}

func (c Config) Validate() error {
	switch {
	case c.IncidenceAngles < 2:
		return fmt.Errorf("%w: need at least 2 incidence angles, got %d", ErrInvalidConfig, c.IncidenceAngles)
	case c.Azimuths < 1:
		return fmt.Errorf("%w: need at least 1 azimuth, got %d", ErrInvalidConfig, c.Azimuths)
	case c.WavelengthStep <= 0:
		return fmt.Errorf("%w: wavelength step %g must be positive", ErrInvalidConfig, c.WavelengthStep)
	case c.MaxWavelength < c.MinWavelength:
		return fmt.Errorf("%w: wavelength range [%g, %g] is empty", ErrInvalidConfig, c.MinWavelength, c.MaxWavelength)
	case c.EnergyTolerance < 0 || c.ReciprocityTolerance < 0 || c.SmoothnessThreshold < 0 || c.MonotonicityTolerance < 0 || c.ConductorMonotonicityTolerance < 0:
		return fmt.Errorf("%w: tolerances must be >= 0", ErrInvalidConfig)
	case c.ReciprocityStride < 1:
		return fmt.Errorf("%w: reciprocity stride %d must be >= 1", ErrInvalidConfig, c.ReciprocityStride)
	}
	return nil
}

func (c Config) wavelengths() []float64 {
	var out []float64
	for wl := c.MinWavelength; wl <= c.MaxWavelength+1e-9; wl += c.WavelengthStep {
		out = append(out, wl)
	}
	return out
}
