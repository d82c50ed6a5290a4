package validate

import (
	"bytes"
	"image/png"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zuclubit/momoto-sub008/hybrid"
	"github.com/zuclubit/momoto-sub008/logging"
	"github.com/zuclubit/momoto-sub008/material"
	"github.com/zuclubit/momoto-sub008/neural"
)

// brokenBSDF violates energy conservation and panics on its lobe.
type brokenBSDF struct{}

func (brokenBSDF) Evaluate(ctx material.Context) material.Response {
	return material.Response{R: ctx.Wavelength / 20, T: 0.7, A: -0.1}
}
func (brokenBSDF) Kind() material.Kind { return material.KindDielectric }
func (brokenBSDF) Traits() material.Traits { return material.Traits{} }
func (brokenBSDF) MemoryFootprint() int { return 0 }
func (brokenBSDF) Value(material.Context) float64 { panic("no lobe") }

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.IncidenceAngles = 19
	cfg.Azimuths = 2
	cfg.WavelengthStep = 40
	return cfg
}

func newValidator(t *testing.T, cfg Config) *Validator {
	t.Helper()
	var buf bytes.Buffer
	v, err := New(cfg, logging.New(logging.Options{Prefix: "validate", Debug: true, Out: &buf, ErrOut: &buf}))
	require.NoError(t, err)
	return v
}

func TestValidator_DefaultPresetsPass(t *testing.T) {
	v := newValidator(t, smallConfig())
	presets := material.DefaultPresets()
	for _, name := range presets.Names() {
		b, err := presets.Build(name)
		require.NoError(t, err)
		report := v.Validate(b)
		assert.True(t, report.Passed(), "%s\n%s", name, report)
		assert.Len(t, report.Checks, 5)
	}
}

func TestValidator_DielectricFullGrid(t *testing.T) {
	v := newValidator(t, DefaultConfig())
	report := v.Validate(material.NewDielectric(1.5))
	require.True(t, report.Passed(), report.String())

	energy, ok := report.Result(CheckEnergy)
	require.True(t, ok)
	assert.Equal(t, 46*4*41, energy.Samples)

	mono, _ := report.Result(CheckMonotonicity)
	assert.True(t, mono.Applicable)
	assert.Equal(t, 0.0, mono.MaxViolation)

	recip, _ := report.Result(CheckReciprocity)
	assert.False(t, recip.Applicable)
	assert.True(t, recip.Passed)
}

func TestValidator_ApplicabilityByKind(t *testing.T) {
	v := newValidator(t, smallConfig())

	ggx, err := material.NewIsotropicGGX(0.3, 1.5)
	require.NoError(t, err)
	report := v.Validate(ggx)
	recip, _ := report.Result(CheckReciprocity)
	assert.True(t, recip.Applicable)
	assert.True(t, recip.Passed, recip.String())
	mono, _ := report.Result(CheckMonotonicity)
	assert.False(t, mono.Applicable)
}

func TestValidator_ReportsViolations(t *testing.T) {
	v := newValidator(t, smallConfig())

	var report Report
	require.NotPanics(t, func() { report = v.Validate(brokenBSDF{}) })
	assert.False(t, report.Passed())

	failed := map[Check]CheckResult{}
	for _, f := range report.Failures() {
		failed[f.Check] = f
	}
	assert.Contains(t, failed, CheckEnergy)
	assert.Contains(t, failed, CheckRange)
	assert.Contains(t, failed, CheckSmoothness)
	require.Contains(t, failed, CheckReciprocity)
	assert.Contains(t, failed[CheckReciprocity].Detail, "panic")
	assert.Contains(t, report.String(), "FAIL")

	nilReport := v.Validate(nil)
	assert.False(t, nilReport.Passed())
	assert.Len(t, nilReport.Checks, 5)
}

func TestValidator_ConductorMonotonicityTolerance(t *testing.T) {
	v := newValidator(t, DefaultConfig())
	report := v.Validate(material.NewConductor(1.657, 9.224))
	mono, _ := report.Result(CheckMonotonicity)
	assert.True(t, mono.Passed, mono.String())
	assert.Greater(t, mono.MaxViolation, 0.0)
	assert.Less(t, mono.MaxViolation, 0.02)

	strict := DefaultConfig()
	strict.ConductorMonotonicityTolerance = 0
	mono, _ = newValidator(t, strict).Validate(material.NewConductor(1.657, 9.224)).Result(CheckMonotonicity)
	assert.False(t, mono.Passed)
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.IncidenceAngles = 1
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	bad = DefaultConfig()
	bad.WavelengthStep = 0
	_, err := New(bad, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	assert.Len(t, DefaultConfig().wavelengths(), 41)
}

func TestRenderHeatmap(t *testing.T) {
	v := newValidator(t, smallConfig())
	img, err := v.RenderHeatmap(material.NewConductor(0.24, 3), HeatmapOptions{Width: 190, Height: 110, Label: "gold"})
	require.NoError(t, err)
	assert.Equal(t, 190, img.Bounds().Dx())
	assert.Equal(t, 110, img.Bounds().Dy())

	// bottom-right cell is grazing incidence: R close to 1, so mostly red
	c := img.RGBAAt(189, 109)
	assert.Greater(t, c.R, c.B)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	assert.NotZero(t, buf.Len())

	_, err = v.RenderHeatmap(material.NewDielectric(1.5), HeatmapOptions{Width: 10, Height: 10, Component: "X"})
	assert.Error(t, err)
	_, err = v.RenderHeatmap(nil, DefaultHeatmapOptions())
	assert.Error(t, err)
}

func TestRampColor(t *testing.T) {
	assert.Equal(t, uint8(255), rampColor(1).R)
	assert.Equal(t, uint8(255), rampColor(0).B)
	assert.Equal(t, uint8(255), rampColor(math.NaN()).B)
	assert.Equal(t, uint8(255), rampColor(math.NaN()).R)
}

func randomWeights(seed int64, scale float64) *neural.Weights {
	rng := rand.New(rand.NewSource(seed))
	var p neural.Params
	for i := range p {
		p[i] = (2*rng.Float64() - 1) * scale
	}
	return neural.FromParams(&p, 1)
}

func TestValidator_HybridMonotonicity(t *testing.T) {
	v := newValidator(t, DefaultConfig())

	// zero weights inherit the physical model's behaviour
	for _, phys := range []material.BSDF{material.NewDielectric(1.5), material.NewConductor(0.24, 3.0)} {
		report := v.Validate(hybrid.New(phys, nil))
		mono, ok := report.Result(CheckMonotonicity)
		require.True(t, ok)
		assert.True(t, mono.Applicable, "%s", phys.Kind())
		assert.True(t, mono.Passed, mono.String())
	}

	glass := hybrid.New(material.NewDielectric(1.5), randomWeights(7, 2))
	report := v.Validate(glass)
	mono, ok := report.Result(CheckMonotonicity)
	require.True(t, ok)
	assert.True(t, mono.Applicable)
	assert.Equal(t, DefaultConfig().MonotonicityTolerance, mono.Tolerance)
	assert.False(t, mono.Passed, mono.String())
	assert.Greater(t, mono.MaxViolation, 1e-2)
	assert.False(t, report.Passed())

	// corrections of non-Fresnel models stay exempt
	rough, err := material.NewIsotropicGGX(0.3, 1.5)
	require.NoError(t, err)
	mono, _ = v.Validate(hybrid.New(rough, randomWeights(7, 2))).Result(CheckMonotonicity)
	assert.False(t, mono.Applicable)
}

func TestUnderlyingKind(t *testing.T) {
	gold := material.NewConductor(0.24, 3.0)
	assert.Equal(t, material.KindConductor, underlyingKind(gold))
	assert.Equal(t, material.KindConductor, underlyingKind(hybrid.New(gold, nil)))
	assert.Equal(t, material.KindConductor, underlyingKind(hybrid.New(hybrid.New(gold, nil), nil)))
}
