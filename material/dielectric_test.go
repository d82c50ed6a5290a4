package material

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDielectric_NormalIncidence(t *testing.T) {
	tests := []struct {
		ior   float64
		wantR float64
	}{
		{1.5, 0.04},
		{1.4, 0.027777777777777776},
		{1.0, 0},
		{2.0, 1.0 / 9.0},
	}
	for _, tt := range tests {
		got := NewDielectric(tt.ior).Evaluate(NewContext(1, 1, 550))
		assert.InDelta(t, tt.wantR, got.R, 1e-12, "ior %g", tt.ior)
		assert.InDelta(t, 1-tt.wantR, got.T, 1e-12, "ior %g", tt.ior)
		assert.InDelta(t, 0, got.A, 1e-12, "ior %g", tt.ior)
	}
}

func TestDielectric_MonotoneInAngle(t *testing.T) {
	d := NewDielectric(1.5)
	prev := -1.0
	for i := 0; i <= 90; i++ {
		theta := float64(i) * math.Pi / 180
		r := d.Evaluate(NewContext(math.Cos(theta), math.Cos(theta), 550)).R
		assert.GreaterOrEqual(t, r, prev-1e-12, "R decreased at %d°", i)
		prev = r
	}
	assert.InDelta(t, 1, prev, 1e-6)
}

func TestDielectric_TotalInternalReflection(t *testing.T) {
	d, err := NewDielectricWithParams(DielectricParams{IOR: 1.0, ExteriorIOR: 1.5})
	require.NoError(t, err)

	// critical angle is asin(1/1.5) ≈ 41.8°
	inside := d.Evaluate(NewContext(math.Cos(30*math.Pi/180), 1, 550))
	assert.Less(t, inside.R, 1.0)
	beyond := d.Evaluate(NewContext(math.Cos(60*math.Pi/180), 1, 550))
	assert.Equal(t, Response{R: 1}, beyond)
}

func TestDielectric_Absorption(t *testing.T) {
	d, err := NewDielectricWithParams(DielectricParams{IOR: 1.5, Absorption: 0.5, Thickness: 2})
	require.NoError(t, err)

	got := d.Evaluate(NewContext(1, 1, 550))
	assert.InDelta(t, 0.04, got.R, 1e-12)
	assert.InDelta(t, 0.96*math.Exp(-1), got.T, 1e-12)
	assert.InDelta(t, 1, got.Sum(), 1e-12)

	// a longer path at oblique incidence absorbs more
	oblique := d.Evaluate(NewContext(0.5, 0.5, 550))
	assert.Greater(t, oblique.A, got.A)
}

func TestDielectric_Dispersion(t *testing.T) {
	d, err := NewDielectricWithParams(DielectricParams{IOR: 1.5168, Dispersion: 0.0042})
	require.NoError(t, err)
	assert.InDelta(t, 1.5168, d.IORAt(589.3), 1e-12)
	assert.Greater(t, d.IORAt(450), d.IORAt(650))
	assert.Greater(t, d.Evaluate(NewContext(1, 1, 450)).R, d.Evaluate(NewContext(1, 1, 650)).R)
}

func TestDielectric_InvalidParams(t *testing.T) {
	for _, p := range []DielectricParams{
		{IOR: 0},
		{IOR: math.NaN()},
		{IOR: 1.5, Absorption: -1},
		{IOR: 1.5, Thickness: math.Inf(1)},
	} {
		_, err := NewDielectricWithParams(p)
		assert.True(t, errors.Is(err, ErrInvalidParameters), "%+v", p)
	}
	assert.Equal(t, 1.5, NewDielectric(-3).Traits().IOR)
}

func TestDielectric_RefractKeepsAzimuth(t *testing.T) {
	d := NewDielectric(1.5)
	ctx := NewContextAngles(math.Pi/3, 0.7, math.Pi/4, 2.0, 550)
	in := d.Refract(ctx)

	sinI := math.Sin(math.Pi / 3)
	sinT := math.Sqrt(in.Wi.X()*in.Wi.X() + in.Wi.Y()*in.Wi.Y())
	assert.InDelta(t, sinI/1.5, sinT, 1e-12)
	assert.InDelta(t, 0.7, math.Atan2(in.Wi.Y(), in.Wi.X()), 1e-12)
	assert.InDelta(t, 1, in.Wi.Len(), 1e-12)
}

func TestConductor_GoldLike(t *testing.T) {
	c := NewConductor(0.24, 3.0)
	got := c.Evaluate(NewContext(1, 1, 550))

	want := ((0.24-1)*(0.24-1) + 9) / ((0.24+1)*(0.24+1) + 9)
	assert.InDelta(t, want, got.R, 1e-12)
	assert.InDelta(t, 0.909, got.R, 1e-3)
	assert.Equal(t, 0.0, got.T)
	assert.InDelta(t, 1-want, got.A, 1e-12)
	assert.Equal(t, KindConductor, c.Kind())
}

func TestConductor_GrazingAndEnergy(t *testing.T) {
	c := NewConductor(1.657, 9.224)
	for i := 0; i <= 90; i += 5 {
		theta := float64(i) * math.Pi / 180
		got := c.Evaluate(NewContext(math.Cos(theta), 1, 630))
		assert.True(t, got.InRange(), "%d°: %v", i, got)
		assert.LessOrEqual(t, got.EnergyError(), 1e-9)
	}
	assert.InDelta(t, 1, c.Evaluate(NewContext(0, 1, 630)).R, 1e-9)
}

func TestConductor_Spectral(t *testing.T) {
	gold, err := NewSpectralConductor(ConductorParams{N: RGB(0.143, 0.374, 1.442), K: RGB(3.983, 2.385, 1.603)})
	require.NoError(t, err)
	red := gold.Evaluate(ChannelContext(1, 1, ChannelR)).R
	blue := gold.Evaluate(ChannelContext(1, 1, ChannelB)).R
	assert.Greater(t, red, blue)

	_, err = NewSpectralConductor(ConductorParams{N: Constant(1)})
	assert.ErrorIs(t, err, ErrInvalidParameters)
}
