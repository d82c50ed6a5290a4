package material

import (
	"math"
	"math/cmplx"
)

// fresnelDielectric is the exact unpolarized reflectance of a smooth interface
// from a medium of index etaI into one of index etaT. Total internal
// reflection yields 1.
func fresnelDielectric(cosI, etaI, etaT float64) float64 {
	cosI = clampCos(cosI)
	cosT, ok := refractedCos(cosI, etaI, etaT)
	if !ok {
		return 1
	}
	rs := (etaI*cosI - etaT*cosT) / (etaI*cosI + etaT*cosT)
	rp := (etaT*cosI - etaI*cosT) / (etaT*cosI + etaI*cosT)
	return clamp01(0.5 * (rs*rs + rp*rp))
}

// refractedCos applies Snell's law; ok is false under total internal reflection.
func refractedCos(cosI, etaI, etaT float64) (float64, bool) {
	sinI2 := math.Max(0, 1-cosI*cosI)
	eta := etaI / etaT
	sinT2 := eta * eta * sinI2
	if sinT2 >= 1 {
		return 0, false
	}
	return math.Sqrt(1 - sinT2), true
}

// fresnelConductor is the exact unpolarized reflectance of an interface from a
// real exterior index etaI onto a medium with complex index n + ik.
func fresnelConductor(cosI, etaI, n, k float64) float64 {
	cosI = clampCos(cosI)
	eta := complex(n, k) / complex(etaI, 0)
	ci := complex(cosI, 0)
	sinI2 := complex(1-cosI*cosI, 0)
	cosT := cmplx.Sqrt(1 - sinI2/(eta*eta))

	rParl := (eta*ci - cosT) / (eta*ci + cosT)
	rPerp := (ci - eta*cosT) / (ci + eta*cosT)
	r := 0.5 * (sqAbs(rParl) + sqAbs(rPerp))
	if !isFinite(r) {
		return 1
	}
	return clamp01(r)
}

func sqAbs(z complex128) float64 {
	return real(z)*real(z) + imag(z)*imag(z)
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(0, math.Min(1, x))
}

func exteriorOrVacuum(ext float64) float64 {
	if ext <= 0 || !isFinite(ext) {
		return 1
	}
	return ext
}
