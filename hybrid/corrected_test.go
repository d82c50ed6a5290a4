package hybrid

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zuclubit/momoto-sub008/material"
	"github.com/zuclubit/momoto-sub008/neural"
)

func randomWeights(seed int64, scale float64) *neural.Weights {
	rng := rand.New(rand.NewSource(seed))
	var p neural.Params
	for i := range p {
		p[i] = scale * (2*rng.Float64() - 1)
	}
	return neural.FromParams(&p, 1)
}

func angleSweep() []material.Context {
	var ctxs []material.Context
	for i := 0; i <= 90; i += 3 {
		c := math.Cos(float64(i) * math.Pi / 180)
		for _, ch := range material.Channels {
			ctxs = append(ctxs, material.ChannelContext(c, c, ch))
		}
	}
	return ctxs
}

func TestCorrectedBSDF_ZeroWeightsMatchPhysical(t *testing.T) {
	glass := material.NewDielectric(1.5)
	h := New(glass, nil)
	require.True(t, h.Enabled())

	for _, ctx := range angleSweep() {
		want, got := glass.Evaluate(ctx), h.Evaluate(ctx)
		assert.InDelta(t, want.R, got.R, 1e-12)
		assert.InDelta(t, want.T, got.T, 1e-12)
		assert.InDelta(t, want.A, got.A, 1e-12)
	}
}

func TestCorrectedBSDF_DisabledIsExact(t *testing.T) {
	gold := material.NewConductor(0.24, 3)
	h := New(gold, randomWeights(1, 1))
	h.SetEnabled(false)

	for _, ctx := range angleSweep() {
		assert.Equal(t, gold.Evaluate(ctx), h.Evaluate(ctx))
	}
	h.SetEnabled(true)
	assert.True(t, h.Enabled())
}

func TestCorrectedBSDF_AlwaysNormalized(t *testing.T) {
	presets := material.DefaultPresets()
	for _, name := range []string{"glass", "gold", "rough-glass", "marble", "clearcoat-gold"} {
		phys, err := presets.Build(name)
		require.NoError(t, err)
		h := New(phys, randomWeights(int64(len(name)), 3))

		for _, ctx := range angleSweep() {
			base := phys.Evaluate(ctx)
			got := h.Evaluate(ctx)
			assert.True(t, got.InRange(), "%s %v", name, got)
			assert.LessOrEqual(t, got.EnergyError(), 1e-9, name)
			assert.LessOrEqual(t, math.Abs(got.R-base.R), 3*neural.OutputScale+1e-9, name)
		}
	}
}

func TestApply(t *testing.T) {
	got := Apply(material.Response{R: 0.04, T: 0.8, A: 0.16}, neural.Output{DeltaR: 0.05, DeltaT: -0.02})
	assert.InDelta(t, 0.09, got.R, 1e-12)
	assert.InDelta(t, 0.78, got.T, 1e-12)
	assert.InDelta(t, 0.13, got.A, 1e-12)

	// overshoot is rescaled instead of producing negative absorption
	over := Apply(material.Response{R: 0.5, T: 0.5}, neural.Output{DeltaR: 0.1, DeltaT: 0.1})
	assert.InDelta(t, 0.5, over.R, 1e-12)
	assert.InDelta(t, 0.5, over.T, 1e-12)
	assert.InDelta(t, 0, over.A, 1e-12)
}

func TestFeatures(t *testing.T) {
	traits := material.Traits{Kind: material.KindConductor, Roughness: 0.2, IOR: 1.5, Extinction: 3}
	phys := material.Response{R: 0.9, A: 0.1}

	f := Features(material.NewContext(1, 1, 550), traits, phys)
	assert.Equal(t, 1.0, f[0])
	assert.Equal(t, 1.0, f[1])
	assert.Equal(t, 1.0, f[2])
	assert.InDelta(t, 190.0/470.0, f[3], 1e-12)
	assert.Equal(t, 0.2, f[4])
	assert.InDelta(t, 0.25, f[5], 1e-12)
	assert.InDelta(t, 0.3, f[6], 1e-12)
	assert.Equal(t, 0.9, f[7])
	assert.Equal(t, 0.0, f[8])
	assert.InDelta(t, 1, f[9], 1e-12)

	// mirror configuration: opposite azimuths, half vector on the normal
	m := Features(material.NewContext(0.5, 0.5, 550), traits, phys)
	assert.InDelta(t, -1, m[2], 1e-12)
	assert.InDelta(t, 1, m[9], 1e-12)
}

func TestCorrectedBSDF_SwapWhileEvaluating(t *testing.T) {
	h := New(material.NewDielectric(1.5), nil)
	ctxs := angleSweep()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				for _, ctx := range ctxs {
					got := h.Evaluate(ctx)
					if !got.InRange() || got.EnergyError() > 1e-9 {
						t.Errorf("unnormalized response %v", got)
						return
					}
				}
			}
		}()
	}
	var last *neural.Weights
	for i := 0; i < 50; i++ {
		next := randomWeights(int64(i), 1)
		prev := h.Swap(next)
		assert.NotNil(t, prev)
		last = next
	}
	close(stop)
	wg.Wait()
	assert.Same(t, last, h.Weights())
}

func TestCorrectedBSDF_Compare(t *testing.T) {
	h := New(material.NewDielectric(1.5), nil)
	ctxs := angleSweep()

	zero := h.Compare(ctxs)
	assert.Equal(t, len(ctxs), zero.Samples)
	assert.InDelta(t, 0, zero.MaxDeltaE, 1e-9)
	assert.InDelta(t, 0, zero.RMSE, 1e-12)

	h.Swap(randomWeights(2, 2))
	moved := h.Compare(ctxs)
	assert.Greater(t, moved.MaxDeltaE, 0.0)
	assert.Greater(t, moved.RMSE, 0.0)
	assert.GreaterOrEqual(t, moved.MaxAbsDeltaR, moved.MeanAbsDeltaR)
	assert.LessOrEqual(t, moved.MaxEnergyError, 1e-9)
	assert.NotEmpty(t, moved.String())

	assert.Equal(t, Comparison{}, h.Compare(nil))
}

func TestCorrectedBSDF_Traits(t *testing.T) {
	h := New(material.NewConductor(0.24, 3), nil)
	assert.Equal(t, material.KindHybrid, h.Kind())
	assert.Equal(t, material.KindHybrid, h.Traits().Kind)
	assert.Equal(t, 3.0, h.Traits().Extinction)
	assert.Greater(t, h.MemoryFootprint(), neural.ParamCount*8)
	assert.Equal(t, material.KindConductor, h.Physical().Kind())
}

func TestDeltaE(t *testing.T) {
	assert.InDelta(t, 0, DeltaE(0.5, 0.5, 630), 1e-12)
	assert.Greater(t, DeltaE(0.6, 0.5, 630), 0.0)
	assert.Greater(t, DeltaE(0.9, 0.5, 465), DeltaE(0.6, 0.5, 465))
}
