package material

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// PresetTable is an immutable name to parameters lookup. Tables are built
// fresh by DefaultPresets or LoadPresets and passed to whoever needs them.
type PresetTable struct {
	entries map[string]Parameters
}

type presetFile struct {
	Presets map[string]Parameters `json:"presets" yaml:"presets"`
}

// NewPresetTable validates and copies entries.
func NewPresetTable(entries map[string]Parameters) (*PresetTable, error) {
	t := &PresetTable{entries: make(map[string]Parameters, len(entries))}
	for name, p := range entries {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: empty preset name", ErrInvalidParameters)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		t.entries[name] = p.clone()
	}
	return t, nil
}

// DefaultPresets returns the built-in catalogue.
func DefaultPresets() *PresetTable {
	arIOR := math.Sqrt(1.5)
	gold := ConductorParams{N: RGB(0.143, 0.374, 1.442), K: RGB(3.983, 2.385, 1.603)}
	clearcoat := DielectricParams{IOR: 1.4}

	t, err := NewPresetTable(map[string]Parameters{
		"glass":           DielectricParameters(DielectricParams{IOR: 1.5}),
		"crown-glass":     DielectricParameters(DielectricParams{IOR: 1.5168, Dispersion: 0.0042}),
		"water":           DielectricParameters(DielectricParams{IOR: 1.333, Dispersion: 0.0031}),
		"absorbing-glass": DielectricParameters(DielectricParams{IOR: 1.5, Absorption: 0.5, Thickness: 2}),
		"gold":            ConductorParameters(gold),
		"silver":          ConductorParameters(ConductorParams{N: RGB(0.155, 0.117, 0.138), K: RGB(4.828, 3.122, 2.147)}),
		"copper":          ConductorParameters(ConductorParams{N: RGB(0.200, 0.924, 1.102), K: RGB(3.912, 2.452, 2.142)}),
		"aluminium":       ConductorParameters(ConductorParams{N: RGB(1.657, 0.880, 0.521), K: RGB(9.224, 6.270, 4.837)}),
		"clearcoat":       DielectricParameters(clearcoat),
		"ar-coating": ThinFilmParameters(ThinFilmParams{
			Layers:       []FilmLayer{{IOR: arIOR, Thickness: ReferenceWavelength / (4 * arIOR)}},
			SubstrateIOR: Constant(1.5),
		}),
		"soap-film": ThinFilmParameters(ThinFilmParams{
			Layers:       []FilmLayer{{IOR: 1.33, Thickness: 380}},
			SubstrateIOR: Constant(1.0),
		}),
		"brushed-aluminium": GGXParameters(GGXParams{AlphaX: 0.05, AlphaY: 0.3, IOR: 0.96, Extinction: 6.69}),
		"rough-glass":       GGXParameters(GGXParams{AlphaX: 0.3, AlphaY: 0.3, IOR: 1.5}),
		"marble": SubsurfaceParameters(SubsurfaceParams{
			SigmaA: RGB(0.0021, 0.0041, 0.0071),
			SigmaS: RGB(2.19, 2.62, 3.00),
			IOR:    1.5,
		}),
		"skin": SubsurfaceParameters(SubsurfaceParams{
			SigmaA: RGB(0.032, 0.17, 0.48),
			SigmaS: RGB(0.74, 0.88, 1.01),
			IOR:    1.3,
		}),
		"clearcoat-gold": LayeredParameters(
			DielectricParameters(clearcoat),
			ConductorParameters(gold),
		),
	})
	if err != nil {
		panic(fmt.Sprintf("built-in presets are invalid: %v", err))
	}
	return t
}

// LoadPresets reads a preset file. The format follows the extension:
// .yaml and .yml are YAML, anything else JSON.
func LoadPresets(path string) (*PresetTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := ParsePresets(data, formatFor(path))
	if err != nil {
		return nil, fmt.Errorf("load presets %s: %w", path, err)
	}
	return t, nil
}

// ParsePresets decodes a preset document in "json" or "yaml".
func ParsePresets(data []byte, format string) (*PresetTable, error) {
	var f presetFile
	switch format {
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, err
		}
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported preset format %q", format)
	}
	return NewPresetTable(f.Presets)
}

// Save writes the table using the format implied by the path's extension.
func (t *PresetTable) Save(path string) error {
	f := presetFile{Presets: t.entries}
	var (
		data []byte
		err  error
	)
	if formatFor(path) == "yaml" {
		data, err = yaml.Marshal(f)
	} else {
		data, err = json.MarshalIndent(f, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func formatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	}
	return "json"
}

// Names returns the preset names in sorted order.
func (t *PresetTable) Names() []string {
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t *PresetTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

func (t *PresetTable) Lookup(name string) (Parameters, bool) {
	p, ok := t.entries[name]
	if !ok {
		return Parameters{}, false
	}
	return p.clone(), true
}

func (t *PresetTable) Build(name string) (BSDF, error) {
	p, ok := t.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return p.Build()
}

// Merge returns a new table holding t's entries overridden by other's.
func (t *PresetTable) Merge(other *PresetTable) *PresetTable {
	out := &PresetTable{entries: make(map[string]Parameters, len(t.entries)+other.Len())}
	for name, p := range t.entries {
		out.entries[name] = p
	}
	if other != nil {
		for name, p := range other.entries {
			out.entries[name] = p
		}
	}
	return out
}

func (p Parameters) clone() Parameters {
	out := Parameters{Kind: p.Kind}
	if p.Dielectric != nil {
		d := *p.Dielectric
		out.Dielectric = &d
	}
	if p.Conductor != nil {
		c := *p.Conductor
		c.N, c.K = c.N.clone(), c.K.clone()
		out.Conductor = &c
	}
	if p.ThinFilm != nil {
		f := *p.ThinFilm
		f.Layers = append([]FilmLayer(nil), f.Layers...)
		f.SubstrateIOR = f.SubstrateIOR.clone()
		f.SubstrateExtinction = f.SubstrateExtinction.clone()
		out.ThinFilm = &f
	}
	if p.GGX != nil {
		g := *p.GGX
		out.GGX = &g
	}
	if p.Subsurface != nil {
		s := *p.Subsurface
		s.SigmaA, s.SigmaS = s.SigmaA.clone(), s.SigmaS.clone()
		out.Subsurface = &s
	}
	if p.Layers != nil {
		out.Layers = make([]Parameters, len(p.Layers))
		for i, l := range p.Layers {
			out.Layers[i] = l.clone()
		}
	}
	return out
}
