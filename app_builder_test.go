package momoto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockModule struct {
	installed bool
	err       error
}

func (m *mockModule) Install(e *Engine) error {
	m.installed = true
	return m.err
}

func TestEngineBuilder_Empty(t *testing.T) {
	e, err := NewEngineBuilder().Build()
	require.NoError(t, err)
	assert.Empty(t, e.Modules())
}

func TestEngineBuilder_UseModule(t *testing.T) {
	builder := NewEngineBuilder()
	builder.UseModule(&mockModule{})
	assert.Len(t, builder.modules, 1)
}

func TestEngineBuilder_Build_WithMultipleModules(t *testing.T) {
	module1 := &mockModule{}
	module2 := &mockModule{}

	e, err := NewEngineBuilder().UseModule(module1).UseModule(module2).Build()
	require.NoError(t, err)

	assert.True(t, module1.installed)
	assert.True(t, module2.installed)
	assert.Equal(t, []Module{module1, module2}, e.Modules())
}

func TestEngineBuilder_Build_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	failing := &mockModule{err: boom}
	after := &mockModule{}

	e, err := NewEngineBuilder().UseModule(failing, after).Build()
	assert.Nil(t, e)
	assert.ErrorIs(t, err, boom)
	assert.True(t, failing.installed)
	assert.False(t, after.installed)
}
