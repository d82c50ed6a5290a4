package hybrid

import (
	"math"

	"github.com/zuclubit/momoto-sub008/material"
	"github.com/zuclubit/momoto-sub008/neural"
)

// Features builds the network input:
// [cosθi, cosθo, cosΔφ, λ, roughness, ior, extinction, R, T, cosθh]
// with λ, ior and extinction scaled to roughly [0,1].
func Features(ctx material.Context, traits material.Traits, phys material.Response) neural.Input {
	ctx = ctx.Sanitize()
	wi, wo := ctx.Wi, ctx.Wo

	cosPhi := 1.0
	projI := math.Hypot(wi.X(), wi.Y())
	projO := math.Hypot(wo.X(), wo.Y())
	if projI > 1e-9 && projO > 1e-9 {
		cosPhi = (wi.X()*wo.X() + wi.Y()*wo.Y()) / (projI * projO)
		cosPhi = math.Max(-1, math.Min(1, cosPhi))
	}

	cosH := 0.0
	if h := wi.Add(wo); h.Len() > 1e-12 {
		cosH = h.Normalize().Z()
	}

	return neural.Input{
		ctx.CosThetaI(),
		ctx.CosThetaO(),
		cosPhi,
		(ctx.Wavelength - material.MinWavelength) / (material.MaxWavelength - material.MinWavelength),
		traits.Roughness,
		(traits.IOR - 1) / 2,
		traits.Extinction / 10,
		phys.R,
		phys.T,
		cosH,
	}
}
