package material

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThinFilm_NoLayersMatchesDielectric(t *testing.T) {
	film, err := NewThinFilm(ThinFilmParams{SubstrateIOR: Constant(1.5)})
	require.NoError(t, err)
	bare := NewDielectric(1.5)

	for _, cos := range []float64{1, 0.8, 0.5, 0.2, 0.05} {
		ctx := NewContext(cos, cos, 550)
		got, want := film.Evaluate(ctx), bare.Evaluate(ctx)
		assert.InDelta(t, want.R, got.R, 1e-12, "cos %g", cos)
		assert.InDelta(t, want.T, got.T, 1e-12, "cos %g", cos)
	}
	assert.InDelta(t, 0.0891867128, film.Evaluate(NewContext(0.5, 0.5, 550)).R, 1e-9)
}

func TestThinFilm_QuarterWaveCoating(t *testing.T) {
	n := math.Sqrt(1.5)
	ar, err := NewSingleFilm(n, ReferenceWavelength/(4*n), 1.5)
	require.NoError(t, err)

	got := ar.Evaluate(NewContext(1, 1, ReferenceWavelength))
	assert.InDelta(t, 0, got.R, 1e-12)
	assert.InDelta(t, 1, got.T, 1e-12)

	// away from the design wavelength the coating still beats bare glass
	blue := ar.Evaluate(NewContext(1, 1, 450))
	assert.Greater(t, blue.R, got.R)
	assert.Less(t, blue.R, 0.04)
}

func TestThinFilm_SoapFilmIridescence(t *testing.T) {
	soap, err := DefaultPresets().Build("soap-film")
	require.NoError(t, err)

	var rs []float64
	for _, wl := range []float64{450, 550, 650} {
		got := soap.Evaluate(NewContext(1, 1, wl))
		assert.LessOrEqual(t, got.EnergyError(), 1e-9)
		rs = append(rs, got.R)
	}
	assert.NotEqual(t, rs[0], rs[1])
	assert.NotEqual(t, rs[1], rs[2])
}

func TestThinFilm_OpaqueSubstrate(t *testing.T) {
	film, err := NewThinFilm(ThinFilmParams{
		Layers:              []FilmLayer{{IOR: 1.38, Thickness: 100}},
		SubstrateIOR:        Constant(0.24),
		SubstrateExtinction: Constant(3.0),
	})
	require.NoError(t, err)

	for _, cos := range []float64{1, 0.7, 0.3} {
		got := film.Evaluate(NewContext(cos, cos, 550))
		assert.Equal(t, 0.0, got.T)
		assert.True(t, got.InRange())
		assert.InDelta(t, 1, got.Sum(), 1e-9)
		assert.Greater(t, got.R, 0.5)
	}
}

func TestThinFilm_AbsorbingLayer(t *testing.T) {
	film, err := NewThinFilm(ThinFilmParams{
		Layers:       []FilmLayer{{IOR: 2.0, Extinction: 0.5, Thickness: 50}},
		SubstrateIOR: Constant(1.5),
	})
	require.NoError(t, err)

	got := film.Evaluate(NewContext(0.9, 0.9, 500))
	assert.Greater(t, got.A, 0.0)
	assert.Greater(t, got.T, 0.0)
	assert.InDelta(t, 1, got.Sum(), 1e-9)
}

func TestThinFilm_InvalidParams(t *testing.T) {
	_, err := NewThinFilm(ThinFilmParams{})
	assert.ErrorIs(t, err, ErrInvalidParameters)
	_, err = NewSingleFilm(1.3, -5, 1.5)
	assert.ErrorIs(t, err, ErrInvalidParameters)
}
