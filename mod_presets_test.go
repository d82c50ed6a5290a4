package momoto

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zuclubit/momoto-sub008/material"
	"github.com/zuclubit/momoto-sub008/neural"
)

func quietLogging(buf *bytes.Buffer) LoggingModule {
	return LoggingModule{Prefix: "momoto", Out: buf, ErrOut: buf}
}

func TestMaterialsModule_Defaults(t *testing.T) {
	var buf bytes.Buffer
	e, err := NewEngineBuilder().UseModule(quietLogging(&buf), MaterialsModule{}).Build()
	require.NoError(t, err)

	mats, ok := Resource[Materials](e)
	require.True(t, ok)
	assert.Equal(t, material.DefaultPresets().Len(), mats.Presets().Len())

	glass, err := mats.Physical("glass")
	require.NoError(t, err)
	assert.Equal(t, material.KindDielectric, glass.Kind())

	_, err = mats.Physical("unobtainium")
	assert.ErrorIs(t, err, material.ErrUnknownPreset)
	_, err = mats.Hybrid("unobtainium")
	assert.ErrorIs(t, err, material.ErrUnknownPreset)
}

func TestMaterials_HybridIsShared(t *testing.T) {
	mats := NewMaterials(material.DefaultPresets(), nil)

	var wg sync.WaitGroup
	got := make([]any, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := mats.Hybrid("gold")
			if err == nil {
				got[i] = h
			}
		}(i)
	}
	wg.Wait()
	for _, h := range got[1:] {
		assert.Same(t, got[0], h)
	}
	assert.Equal(t, []string{"gold"}, mats.Active())

	// zero weights leave the physical response untouched
	ctx := material.NewContext(1, 1, 550)
	phys, err := mats.Physical("gold")
	require.NoError(t, err)
	resp, err := mats.Evaluate("gold", ctx)
	require.NoError(t, err)
	assert.Equal(t, phys.Evaluate(ctx), resp)

	many, err := mats.EvaluateMany("gold", []material.Context{ctx, ctx})
	require.NoError(t, err)
	assert.Equal(t, []material.Response{resp, resp}, many)
}

func TestMaterialsModule_PresetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	doc := `presets:
  glass:
    kind: dielectric
    dielectric:
      ior: 1.7
  sapphire:
    kind: dielectric
    dielectric:
      ior: 1.77
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	var buf bytes.Buffer
	e, err := NewEngineBuilder().UseModule(quietLogging(&buf), MaterialsModule{PresetPath: path}).Build()
	require.NoError(t, err)
	mats, _ := Resource[Materials](e)

	assert.Equal(t, material.DefaultPresets().Len()+1, mats.Presets().Len())
	glass, err := mats.Physical("glass")
	require.NoError(t, err)
	assert.InDelta(t, 1.7, glass.Traits().IOR, 1e-12)
	assert.Contains(t, buf.String(), "loaded 2 presets")

	_, err = NewEngineBuilder().UseModule(MaterialsModule{PresetPath: filepath.Join(t.TempDir(), "missing.json")}).Build()
	assert.Error(t, err)
}

func TestMaterials_WeightsRoundTrip(t *testing.T) {
	mats := NewMaterials(material.DefaultPresets(), nil)
	path := filepath.Join(t.TempDir(), "glass.weights.json")

	trained := neural.NewInitialWeights(3)
	h, err := mats.Hybrid("glass")
	require.NoError(t, err)
	h.Swap(trained)
	require.NoError(t, mats.SaveWeights("glass", path))

	old, err := mats.LoadWeights("water", path)
	require.NoError(t, err)
	assert.True(t, old.IsZero())

	water, err := mats.Hybrid("water")
	require.NoError(t, err)
	assert.Equal(t, trained.Params(), water.Weights().Params())

	_, err = mats.LoadWeights("water", filepath.Join(t.TempDir(), "none.json"))
	assert.Error(t, err)
	assert.Equal(t, trained.Params(), water.Weights().Params())
}
