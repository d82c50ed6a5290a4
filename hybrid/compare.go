package hybrid

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/zuclubit/momoto-sub008/material"
)

// ChannelColor places value in the sampled channel of an otherwise grey
// linear-RGB colour.
func ChannelColor(value, grey float64, ch material.Channel) colorful.Color {
	v, g := clamp01(value), clamp01(grey)
	switch ch {
	case material.ChannelR:
		return colorful.LinearRgb(v, g, g)
	case material.ChannelG:
		return colorful.LinearRgb(g, v, g)
	default:
		return colorful.LinearRgb(g, g, v)
	}
}

// DeltaE is the CIEDE2000 difference between a reflectance and a reference
// reflectance sampled at wavelength.
func DeltaE(value, reference, wavelength float64) float64 {
	ch := material.ChannelForWavelength(wavelength)
	return ChannelColor(value, reference, ch).DistanceCIEDE2000(ChannelColor(reference, reference, ch))
}

// Comparison summarises how far the corrected output drifts from the
// physical model over a set of contexts.
type Comparison struct {
	Samples        int
	MeanDeltaE     float64
	MaxDeltaE      float64
	MeanAbsDeltaR  float64
	MaxAbsDeltaR   float64
	MeanAbsDeltaT  float64
	MaxAbsDeltaT   float64
	RMSE           float64
	MaxEnergyError float64
}

func (c Comparison) String() string {
	return fmt.Sprintf("n=%d ΔE2000 mean=%.4f max=%.4f |ΔR| mean=%.5f max=%.5f |ΔT| mean=%.5f max=%.5f rmse=%.5f energy=%.2e",
		c.Samples, c.MeanDeltaE, c.MaxDeltaE, c.MeanAbsDeltaR, c.MaxAbsDeltaR,
		c.MeanAbsDeltaT, c.MaxAbsDeltaT, c.RMSE, c.MaxEnergyError)
}

// Compare evaluates the physical and corrected responses at every context.
func (c *CorrectedBSDF) Compare(ctxs []material.Context) Comparison {
	if len(ctxs) == 0 {
		return Comparison{}
	}
	phys := material.EvaluateMany(c.physical, ctxs)
	hyb := c.EvaluateMany(ctxs)

	n := len(ctxs)
	de := make([]float64, n)
	dr := make([]float64, n)
	dt := make([]float64, n)
	var sq, maxEnergy float64
	for i := range ctxs {
		de[i] = DeltaE(hyb[i].R, phys[i].R, ctxs[i].Sanitize().Wavelength)
		dr[i] = math.Abs(hyb[i].R - phys[i].R)
		dt[i] = math.Abs(hyb[i].T - phys[i].T)
		sq += dr[i]*dr[i] + dt[i]*dt[i]
		maxEnergy = math.Max(maxEnergy, hyb[i].EnergyError())
	}

	return Comparison{
		Samples:        n,
		MeanDeltaE:     stat.Mean(de, nil),
		MaxDeltaE:      floats.Max(de),
		MeanAbsDeltaR:  stat.Mean(dr, nil),
		MaxAbsDeltaR:   floats.Max(dr),
		MeanAbsDeltaT:  stat.Mean(dt, nil),
		MaxAbsDeltaT:   floats.Max(dt),
		RMSE:           math.Sqrt(sq / float64(2*n)),
		MaxEnergyError: maxEnergy,
	}
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(0, math.Min(1, x))
}
