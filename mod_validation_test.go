package momoto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zuclubit/momoto-sub008/material"
	"github.com/zuclubit/momoto-sub008/validate"
)

func smallValidation() *validate.Config {
	cfg := validate.DefaultConfig()
	cfg.IncidenceAngles = 19
	cfg.Azimuths = 2
	cfg.WavelengthStep = 40
	return &cfg
}

func TestValidationModule(t *testing.T) {
	var buf bytes.Buffer
	e, err := NewEngineBuilder().
		UseModule(quietLogging(&buf), MaterialsModule{}, ValidationModule{Config: smallValidation()}).
		Build()
	require.NoError(t, err)

	v, ok := Resource[validate.Validator](e)
	require.True(t, ok)
	assert.Equal(t, 19, v.Config().IncidenceAngles)

	for _, name := range []string{"glass", "gold", "clearcoat-gold"} {
		report, err := e.Validation(name, false)
		require.NoError(t, err)
		assert.True(t, report.Passed(), "%s\n%s", name, report)

		report, err = e.Validation(name, true)
		require.NoError(t, err)
		assert.True(t, report.Passed(), "%s (hybrid)\n%s", name, report)
		assert.Equal(t, material.KindHybrid, report.Kind)
	}

	_, err = e.Validation("unobtainium", false)
	assert.ErrorIs(t, err, material.ErrUnknownPreset)
}

func TestValidationModule_Errors(t *testing.T) {
	bad := validate.DefaultConfig()
	bad.IncidenceAngles = 1
	_, err := NewEngineBuilder().UseModule(ValidationModule{Config: &bad}).Build()
	assert.ErrorIs(t, err, validate.ErrInvalidConfig)

	e, err := NewEngineBuilder().UseModule(ValidationModule{}).Build()
	require.NoError(t, err)
	_, err = e.Validation("glass", false)
	assert.ErrorContains(t, err, "MaterialsModule")
}
