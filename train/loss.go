package train

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"

	"github.com/zuclubit/momoto-sub008/hybrid"
	"github.com/zuclubit/momoto-sub008/material"
	"github.com/zuclubit/momoto-sub008/neural"
)

// headStep is the finite-difference step for the loss head derivatives.
const headStep = 1e-6

// LossTerms breaks a batch loss into its weighted parts.
type LossTerms struct {
	Perceptual float64
	Spectral   float64
	Energy     float64
	Magnitude  float64
	Total      float64
}

func (l *LossTerms) add(o LossTerms, scale float64) {
	l.Perceptual += scale * o.Perceptual
	l.Spectral += scale * o.Spectral
	l.Energy += scale * o.Energy
	l.Magnitude += scale * o.Magnitude
	l.Total += scale * o.Total
}

// sampleHead holds the per-sample loss terms other than the batch RMSE.
// Each term is already weighted.
func sampleHead(s Sample, dr, dt float64, w LossWeights) (perceptual, energy, magnitude float64) {
	pr, pt := s.Physical()
	refR, _ := s.Target()
	out := neural.Output{DeltaR: dr, DeltaT: dt}
	phys := material.Response{R: pr, T: pt, A: 1 - pr - pt}

	raw := hybrid.Corrected(phys, out)
	corrected := hybrid.Apply(phys, out)

	perceptual = w.Perceptual * hybrid.DeltaE(corrected.R, refR, s.Wavelength())
	clamped := math.Max(0, raw.R) + math.Max(0, raw.T) + math.Max(0, raw.A)
	energy = w.Energy * math.Abs(clamped-1)
	magnitude = w.Magnitude * (dr*dr + dt*dt)
	return perceptual, energy, magnitude
}

// batchLoss evaluates the loss of outs against batch and, when grads is
// non-nil, fills the derivative of the total with respect to each output.
func batchLoss(batch []Sample, outs []neural.Output, w LossWeights, grads [][neural.OutputSize]float64) LossTerms {
	n := float64(len(batch))
	var terms LossTerms
	var sq float64
	for i, s := range batch {
		p, e, m := sampleHead(s, outs[i].DeltaR, outs[i].DeltaT, w)
		terms.Perceptual += p / n
		terms.Energy += e / n
		terms.Magnitude += m / n

		er, et := residual(s, outs[i])
		sq += er*er + et*et
	}
	rmse := math.Sqrt(sq / (2 * n))
	terms.Spectral = w.Spectral * rmse
	terms.Total = terms.Perceptual + terms.Spectral + terms.Energy + terms.Magnitude

	if grads == nil {
		return terms
	}
	settings := &fd.Settings{Formula: fd.Central, Step: headStep}
	var x, g [neural.OutputSize]float64
	for i, s := range batch {
		head := func(v []float64) float64 {
			p, e, m := sampleHead(s, v[0], v[1], w)
			return (p + e + m) / n
		}
		x = [neural.OutputSize]float64{outs[i].DeltaR, outs[i].DeltaT}
		fd.Gradient(g[:], head, x[:], settings)
		grads[i] = g

		if rmse > 0 {
			er, et := residual(s, outs[i])
			coef := w.Spectral / (2 * n * rmse)
			grads[i][0] += coef * er
			grads[i][1] += coef * et
		}
	}
	return terms
}

// residual is the corrected minus reference R and T before normalization.
func residual(s Sample, out neural.Output) (float64, float64) {
	pr, pt := s.Physical()
	refR, refT := s.Target()
	return pr + out.DeltaR - refR, pt + out.DeltaT - refT
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
