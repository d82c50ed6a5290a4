package material

import (
	"fmt"
	"math"
)

const (
	// DegenerateEpsilon is the total below which Normalize leaves a response untouched.
	DegenerateEpsilon = 1e-12

	normalizedTolerance = 1e-12
)

// Response splits incident energy into reflected, transmitted and absorbed parts.
type Response struct {
	R float64 `json:"r"`
	T float64 `json:"t"`
	A float64 `json:"a"`
}

func (r Response) Sum() float64 { return r.R + r.T + r.A }

// EnergyError is |R+T+A-1|.
func (r Response) EnergyError() float64 { return math.Abs(r.Sum() - 1) }

// InRange reports whether every component lies in [0,1].
func (r Response) InRange() bool {
	return in01(r.R) && in01(r.T) && in01(r.A)
}

func (r Response) String() string {
	return fmt.Sprintf("R=%.6f T=%.6f A=%.6f", r.R, r.T, r.A)
}

// Normalize enforces R+T+A = 1 with non-negative components. NaN and
// negative parts are zeroed first. A total at or below DegenerateEpsilon is
// returned unchanged, as is an already normalized response.
func Normalize(r Response) Response {
	r.R, r.T, r.A = nonNegative(r.R), nonNegative(r.T), nonNegative(r.A)

	sum := r.Sum()
	if sum <= DegenerateEpsilon {
		return r
	}
	if math.Abs(sum-1) <= normalizedTolerance {
		return r
	}

	r.R /= sum
	r.T /= sum
	r.A = math.Max(0, 1-r.R-r.T)
	return r
}

func nonNegative(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if math.IsInf(x, 1) {
		return math.MaxFloat64
	}
	return x
}

func in01(x float64) bool { return x >= 0 && x <= 1 }
