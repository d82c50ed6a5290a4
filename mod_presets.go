package momoto

import (
	"fmt"
	"slices"
	"sync"

	"github.com/zuclubit/momoto-sub008/hybrid"
	"github.com/zuclubit/momoto-sub008/logging"
	"github.com/zuclubit/momoto-sub008/material"
)

// MaterialsModule installs the preset table. Presets loaded from PresetPath
// (JSON or YAML) override the built-in entries of the same name.
type MaterialsModule struct {
	PresetPath string
}

func (m MaterialsModule) Install(e *Engine) error {
	table := material.DefaultPresets()
	if m.PresetPath != "" {
		loaded, err := material.LoadPresets(m.PresetPath)
		if err != nil {
			return err
		}
		table = table.Merge(loaded)
		e.Logger().Infof("loaded %d presets from %s", loaded.Len(), m.PresetPath)
	}
	e.AddResources(NewMaterials(table, e.Logger()))
	return nil
}

// Materials builds physical materials from presets and keeps one hybrid
// wrapper per preset so trained weights have a stable place to land.
type Materials struct {
	presets *material.PresetTable
	logger  logging.Logger

	mu      sync.Mutex
	hybrids map[string]*hybrid.CorrectedBSDF
}

func NewMaterials(presets *material.PresetTable, logger logging.Logger) *Materials {
	return &Materials{
		presets: presets,
		logger:  logging.OrNop(logger),
		hybrids: make(map[string]*hybrid.CorrectedBSDF),
	}
}

func (m *Materials) Presets() *material.PresetTable { return m.presets }

// Physical builds a fresh physical BSDF for the named preset.
func (m *Materials) Physical(name string) (material.BSDF, error) {
	return m.presets.Build(name)
}

// Hybrid returns the corrected wrapper for the named preset, creating it
// with zero weights on first use.
func (m *Materials) Hybrid(name string) (*hybrid.CorrectedBSDF, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.hybrids[name]; ok {
		return h, nil
	}
	phys, err := m.presets.Build(name)
	if err != nil {
		return nil, err
	}
	h := hybrid.New(phys, nil)
	m.hybrids[name] = h
	m.logger.Debugf("created hybrid material %q (%s)", name, phys.Kind())
	return h, nil
}

// Active lists the presets that have a hybrid wrapper.
func (m *Materials) Active() []string {
	m.mu.Lock()
	names := make([]string, 0, len(m.hybrids))
	for name := range m.hybrids {
		names = append(names, name)
	}
	m.mu.Unlock()
	slices.Sort(names)
	return names
}

// Evaluate evaluates the hybrid material for name at ctx.
func (m *Materials) Evaluate(name string, ctx material.Context) (material.Response, error) {
	h, err := m.Hybrid(name)
	if err != nil {
		return material.Response{}, err
	}
	return h.Evaluate(ctx), nil
}

func (m *Materials) EvaluateMany(name string, ctxs []material.Context) ([]material.Response, error) {
	h, err := m.Hybrid(name)
	if err != nil {
		return nil, err
	}
	return h.EvaluateMany(ctxs), nil
}

func requireMaterials(e *Engine, module string) (*Materials, error) {
	m, ok := Resource[Materials](e)
	if !ok {
		return nil, fmt.Errorf("%s needs MaterialsModule installed first", module)
	}
	return m, nil
}
