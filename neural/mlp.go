// Package neural implements the small sinusoidal network that produces
// bounded residual corrections to physical reflectance and transmittance.
package neural

import "math"

const (
	InputSize  = 10
	HiddenSize = 32
	OutputSize = 2

	// Omega0 scales the first sine activation.
	Omega0 = 30.0
	// OutputScale bounds every output to [-OutputScale, OutputScale].
	OutputScale = 0.1

	ParamCount = InputSize*HiddenSize + HiddenSize + HiddenSize*HiddenSize + HiddenSize + HiddenSize*OutputSize + OutputSize
)

// Offsets of each tensor inside the flat parameter vector. Matrices are
// row-major with the input index first.
const (
	OffsetW0   = 0
	OffsetB0   = OffsetW0 + InputSize*HiddenSize
	OffsetW1   = OffsetB0 + HiddenSize
	OffsetB1   = OffsetW1 + HiddenSize*HiddenSize
	OffsetWout = OffsetB1 + HiddenSize
	OffsetBout = OffsetWout + HiddenSize*OutputSize
)

// Input is the feature vector fed to the network.
type Input [InputSize]float64

// Output holds the residual corrections.
type Output struct {
	DeltaR float64
	DeltaT float64
}

// Params is the mutable flat parameter vector used while training.
type Params [ParamCount]float64

// Cache keeps the activations of one forward pass for Backward.
type Cache struct {
	X   Input
	Z0  [HiddenSize]float64
	H0  [HiddenSize]float64
	Z1  [HiddenSize]float64
	H1  [HiddenSize]float64
	Out [OutputSize]float64 // tanh of the output pre-activation
}

// Forward runs the network. c may be nil when no gradient is needed.
func (p *Params) Forward(x Input, c *Cache) Output {
	var local Cache
	if c == nil {
		c = &local
	}
	c.X = x

	// layer 0: h0 = sin(ω0 (W0ᵀx + b0))
	for j := 0; j < HiddenSize; j++ {
		z := p[OffsetB0+j]
		for i := 0; i < InputSize; i++ {
			z += p[OffsetW0+i*HiddenSize+j] * x[i]
		}
		c.Z0[j] = z
		c.H0[j] = math.Sin(Omega0 * z)
	}

	// layer 1: h1 = sin(W1ᵀh0 + b1)
	for k := 0; k < HiddenSize; k++ {
		z := p[OffsetB1+k]
		for j := 0; j < HiddenSize; j++ {
			z += p[OffsetW1+j*HiddenSize+k] * c.H0[j]
		}
		c.Z1[k] = z
		c.H1[k] = math.Sin(z)
	}

	// output: 0.1·tanh(Woutᵀh1 + bout)
	for o := 0; o < OutputSize; o++ {
		z := p[OffsetBout+o]
		for k := 0; k < HiddenSize; k++ {
			z += p[OffsetWout+k*OutputSize+o] * c.H1[k]
		}
		c.Out[o] = math.Tanh(z)
	}
	return Output{DeltaR: OutputScale * c.Out[0], DeltaT: OutputScale * c.Out[1]}
}

// Backward accumulates into grad the gradient of a scalar loss whose
// derivatives with respect to the two outputs are dOut. c must hold the
// activations of the matching Forward call.
func (p *Params) Backward(c *Cache, dOut [OutputSize]float64, grad *Params) {
	var dzOut [OutputSize]float64
	for o := 0; o < OutputSize; o++ {
		dzOut[o] = dOut[o] * OutputScale * (1 - c.Out[o]*c.Out[o])
		grad[OffsetBout+o] += dzOut[o]
	}

	var dz1 [HiddenSize]float64
	for k := 0; k < HiddenSize; k++ {
		var dh float64
		for o := 0; o < OutputSize; o++ {
			grad[OffsetWout+k*OutputSize+o] += c.H1[k] * dzOut[o]
			dh += p[OffsetWout+k*OutputSize+o] * dzOut[o]
		}
		dz1[k] = dh * math.Cos(c.Z1[k])
		grad[OffsetB1+k] += dz1[k]
	}

	for j := 0; j < HiddenSize; j++ {
		var dh float64
		for k := 0; k < HiddenSize; k++ {
			grad[OffsetW1+j*HiddenSize+k] += c.H0[j] * dz1[k]
			dh += p[OffsetW1+j*HiddenSize+k] * dz1[k]
		}
		dz0 := dh * Omega0 * math.Cos(Omega0*c.Z0[j])
		grad[OffsetB0+j] += dz0
		for i := 0; i < InputSize; i++ {
			grad[OffsetW0+i*HiddenSize+j] += c.X[i] * dz0
		}
	}
}

// Finite reports whether every parameter is a finite number.
func (p *Params) Finite() bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
