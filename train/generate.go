package train

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/zuclubit/momoto-sub008/hybrid"
	"github.com/zuclubit/momoto-sub008/material"
)

// MaxTarget bounds generated residuals to what the network can express.
const MaxTarget = 0.1

// Reference produces the response the corrected model should reproduce.
type Reference interface {
	Reference(ctx material.Context, phys material.Response) material.Response
}

// ReferenceFunc adapts a function to Reference.
type ReferenceFunc func(ctx material.Context, phys material.Response) material.Response

func (f ReferenceFunc) Reference(ctx material.Context, phys material.Response) material.Response {
	return f(ctx, phys)
}

// ConstantOffset shifts every physical response by a fixed amount.
type ConstantOffset struct {
	DeltaR float64
	DeltaT float64
}

func (c ConstantOffset) Reference(_ material.Context, phys material.Response) material.Response {
	return material.Response{R: phys.R + c.DeltaR, T: phys.T + c.DeltaT, A: phys.A - c.DeltaR - c.DeltaT}
}

// MaterialReference uses a second, usually more detailed, BSDF as ground truth.
type MaterialReference struct {
	BSDF material.BSDF
}

func (m MaterialReference) Reference(ctx material.Context, _ material.Response) material.Response {
	return m.BSDF.Evaluate(ctx)
}

type GeneratorConfig struct {
	Materials []material.BSDF
	Reference Reference
	// SamplesPerMaterial defaults to 256.
	SamplesPerMaterial int
	Seed               int64
	// Specular keeps the exitant direction mirrored, which is where smooth
	// models are defined.
	Specular bool
}

// Generate draws random contexts for every material and records the
// clamped residual between the reference and the physical response.
func Generate(cfg GeneratorConfig) (*Dataset, error) {
	if len(cfg.Materials) == 0 {
		return nil, fmt.Errorf("%w: no materials to sample", ErrEmptyDataset)
	}
	if cfg.Reference == nil {
		return nil, errors.New("generate: nil reference")
	}
	n := cfg.SamplesPerMaterial
	if n <= 0 {
		n = 256
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	samples := make([]Sample, 0, n*len(cfg.Materials))
	for mi, m := range cfg.Materials {
		if m == nil {
			return nil, fmt.Errorf("generate: material %d is nil", mi)
		}
		traits := m.Traits()
		for i := 0; i < n; i++ {
			ctx := randomContext(rng, cfg.Specular)
			phys := m.Evaluate(ctx)
			ref := cfg.Reference.Reference(ctx, phys)
			samples = append(samples, Sample{
				Features: hybrid.Features(ctx, traits, phys),
				DeltaR:   clampTarget(ref.R - phys.R),
				DeltaT:   clampTarget(ref.T - phys.T),
			})
		}
	}
	return &Dataset{samples: samples}, nil
}

func randomContext(rng *rand.Rand, specular bool) material.Context {
	thetaI := math.Acos(0.05 + 0.95*rng.Float64())
	phiI := 2 * math.Pi * rng.Float64()
	thetaO, phiO := thetaI, phiI+math.Pi
	if !specular {
		thetaO = math.Acos(0.05 + 0.95*rng.Float64())
		phiO = 2 * math.Pi * rng.Float64()
	}
	wl := 380 + 400*rng.Float64()
	return material.NewContextAngles(thetaI, phiI, thetaO, phiO, wl)
}

func clampTarget(x float64) float64 {
	return math.Max(-MaxTarget, math.Min(MaxTarget, x))
}
