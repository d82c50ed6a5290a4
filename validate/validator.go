// Package validate checks BSDFs against physical constraints over a dense
// angle and wavelength grid.
package validate

import (
	"fmt"
	"math"

	"github.com/zuclubit/momoto-sub008/logging"
	"github.com/zuclubit/momoto-sub008/material"
)

type Validator struct {
	cfg    Config
	logger logging.Logger
}

func New(cfg Config, logger logging.Logger) (*Validator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Validator{cfg: cfg, logger: logging.OrNop(logger)}, nil
}

func (v *Validator) Config() Config { return v.cfg }

// grid holds the evaluated sample lattice, indexed [angle][azimuth][wavelength].
type grid struct {
	angles      []float64
	azimuths    []float64
	wavelengths []float64
	ctxs        []material.Context
	responses   []material.Response
}

func (g *grid) index(a, p, w int) int {
	return (a*len(g.azimuths)+p)*len(g.wavelengths) + w
}

func (v *Validator) buildGrid(b material.BSDF) *grid {
	g := &grid{wavelengths: v.cfg.wavelengths()}
	for i := 0; i < v.cfg.IncidenceAngles; i++ {
		g.angles = append(g.angles, float64(i)*(math.Pi/2)/float64(v.cfg.IncidenceAngles-1))
	}
	for j := 0; j < v.cfg.Azimuths; j++ {
		g.azimuths = append(g.azimuths, float64(j)*2*math.Pi/float64(v.cfg.Azimuths))
	}
	g.ctxs = make([]material.Context, 0, len(g.angles)*len(g.azimuths)*len(g.wavelengths))
	for _, theta := range g.angles {
		for _, phi := range g.azimuths {
			for _, wl := range g.wavelengths {
				g.ctxs = append(g.ctxs, material.NewContextAngles(theta, phi, theta, phi+math.Pi, wl))
			}
		}
	}
	g.responses = material.EvaluateMany(b, g.ctxs)
	return g
}

// Validate runs every check and always returns a complete report. A check
// that panics is reported as failed.
func (v *Validator) Validate(b material.BSDF) (report Report) {
	if b == nil {
		report.Checks = make([]CheckResult, 0, len(allChecks))
		for _, c := range allChecks {
			report.Checks = append(report.Checks, CheckResult{Check: c, Applicable: true, Detail: "nil material"})
		}
		return report
	}
	report.Kind = b.Kind()

	var g *grid
	func() {
		defer func() {
			if r := recover(); r != nil {
				v.logger.Errorf("validate %s: evaluation panicked: %v", report.Kind, r)
				g = nil
			}
		}()
		g = v.buildGrid(b)
	}()

	for _, c := range allChecks {
		report.Checks = append(report.Checks, v.run(c, b, g))
	}
	if report.Passed() {
		v.logger.Debugf("validate %s: all checks passed", report.Kind)
	} else {
		for _, f := range report.Failures() {
			v.logger.Warnf("validate %s: %s", report.Kind, f)
		}
	}
	return report
}

func (v *Validator) run(c Check, b material.BSDF, g *grid) (res CheckResult) {
	res = CheckResult{Check: c, Applicable: true}
	defer func() {
		if r := recover(); r != nil {
			res.Passed = false
			res.Detail = fmt.Sprintf("panic: %v", r)
		}
	}()
	if g == nil && c != CheckReciprocity {
		res.Detail = "evaluation failed"
		return res
	}

	switch c {
	case CheckEnergy:
		return v.checkEnergy(g)
	case CheckReciprocity:
		return v.checkReciprocity(b)
	case CheckSmoothness:
		return v.checkSmoothness(g)
	case CheckRange:
		return v.checkRange(g)
	case CheckMonotonicity:
		return v.checkMonotonicity(b, g)
	}
	res.Detail = "unknown check"
	return res
}

// tracker keeps the largest violation seen so far.
type tracker struct {
	res CheckResult
}

func newTracker(c Check, tol float64) *tracker {
	return &tracker{res: CheckResult{Check: c, Applicable: true, Tolerance: tol}}
}

func (t *tracker) observe(violation float64, ctx material.Context) {
	t.res.Samples++
	if math.IsNaN(violation) {
		violation = math.Inf(1)
	}
	if violation > t.res.MaxViolation || t.res.Samples == 1 {
		t.res.MaxViolation = violation
		t.res.Worst = ctx
	}
}

func (t *tracker) result() CheckResult {
	t.res.Passed = t.res.MaxViolation <= t.res.Tolerance
	return t.res
}

func (v *Validator) checkEnergy(g *grid) CheckResult {
	t := newTracker(CheckEnergy, v.cfg.EnergyTolerance)
	for i, r := range g.responses {
		t.observe(r.EnergyError(), g.ctxs[i])
	}
	return t.result()
}

func (v *Validator) checkRange(g *grid) CheckResult {
	t := newTracker(CheckRange, 0)
	for i, r := range g.responses {
		var worst float64
		for _, x := range []float64{r.R, r.T, r.A} {
			switch {
			case math.IsNaN(x):
				worst = math.Inf(1)
			case x < 0:
				worst = math.Max(worst, -x)
			case x > 1:
				worst = math.Max(worst, x-1)
			}
		}
		t.observe(worst, g.ctxs[i])
	}
	return t.result()
}

func (v *Validator) checkSmoothness(g *grid) CheckResult {
	t := newTracker(CheckSmoothness, v.cfg.SmoothnessThreshold)
	for a := range g.angles {
		for p := range g.azimuths {
			for w := 1; w < len(g.wavelengths); w++ {
				prev, cur := g.index(a, p, w-1), g.index(a, p, w)
				dl := g.wavelengths[w] - g.wavelengths[w-1]
				dr := math.Abs(g.responses[cur].R-g.responses[prev].R) / dl
				dt := math.Abs(g.responses[cur].T-g.responses[prev].T) / dl
				t.observe(math.Max(dr, dt), g.ctxs[cur])
			}
		}
	}
	return t.result()
}

func (v *Validator) checkReciprocity(b material.BSDF) CheckResult {
	lobe, ok := b.(material.Lobe)
	if !ok {
		return CheckResult{Check: CheckReciprocity, Passed: true, Detail: "material exposes no lobe"}
	}
	t := newTracker(CheckReciprocity, v.cfg.ReciprocityTolerance)
	stride := v.cfg.ReciprocityStride
	n := v.cfg.IncidenceAngles
	wavelengths := v.cfg.wavelengths()
	for i := 0; i < n; i += stride {
		for o := 0; o < n; o += stride {
			thetaI := float64(i) * (math.Pi / 2) / float64(n-1)
			thetaO := float64(o) * (math.Pi / 2) / float64(n-1)
			for p := 0; p < v.cfg.Azimuths; p++ {
				phi := float64(p) * 2 * math.Pi / float64(v.cfg.Azimuths)
				for _, wl := range []float64{wavelengths[0], wavelengths[len(wavelengths)/2], wavelengths[len(wavelengths)-1]} {
					ctx := material.NewContextAngles(thetaI, 0, thetaO, phi, wl)
					f, g := lobe.Value(ctx), lobe.Value(ctx.Swapped())
					t.observe(math.Abs(f-g)/math.Max(1, math.Abs(f)), ctx)
				}
			}
		}
	}
	return t.result()
}

// wrapper is implemented by materials that correct another one, such as
// hybrid.CorrectedBSDF.
type wrapper interface {
	Physical() material.BSDF
}

// underlyingKind is the kind of the innermost physical model behind b.
func underlyingKind(b material.BSDF) material.Kind {
	for {
		w, ok := b.(wrapper)
		if !ok {
			return b.Kind()
		}
		inner := w.Physical()
		if inner == nil {
			return b.Kind()
		}
		b = inner
	}
}

// checkMonotonicity requires R to grow with the incidence angle at every
// azimuth and wavelength. Only smooth Fresnel interfaces, bare or corrected,
// are expected to obey it.
func (v *Validator) checkMonotonicity(b material.BSDF, g *grid) CheckResult {
	var tol float64
	switch underlyingKind(b) {
	case material.KindDielectric:
		tol = v.cfg.MonotonicityTolerance
	case material.KindConductor:
		tol = v.cfg.ConductorMonotonicityTolerance
	default:
		return CheckResult{Check: CheckMonotonicity, Passed: true, Detail: "not a smooth interface"}
	}
	t := newTracker(CheckMonotonicity, tol)
	for p := range g.azimuths {
		for w := range g.wavelengths {
			for a := 1; a < len(g.angles); a++ {
				prev, cur := g.responses[g.index(a-1, p, w)], g.responses[g.index(a, p, w)]
				t.observe(math.Max(0, prev.R-cur.R), g.ctxs[g.index(a, p, w)])
			}
		}
	}
	return t.result()
}
