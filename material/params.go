package material

import "fmt"

// Parameters is the serialisable description of any physical material.
// Kind selects which of the variant fields is read.
type Parameters struct {
	Kind       Kind              `json:"kind" yaml:"kind"`
	Dielectric *DielectricParams `json:"dielectric,omitempty" yaml:"dielectric,omitempty"`
	Conductor  *ConductorParams  `json:"conductor,omitempty" yaml:"conductor,omitempty"`
	ThinFilm   *ThinFilmParams   `json:"thinFilm,omitempty" yaml:"thinFilm,omitempty"`
	GGX        *GGXParams        `json:"ggx,omitempty" yaml:"ggx,omitempty"`
	Subsurface *SubsurfaceParams `json:"subsurface,omitempty" yaml:"subsurface,omitempty"`
	// Layers lists the children of a layered material from top to bottom.
	Layers []Parameters `json:"layers,omitempty" yaml:"layers,omitempty"`
}

func DielectricParameters(p DielectricParams) Parameters {
	return Parameters{Kind: KindDielectric, Dielectric: &p}
}

func ConductorParameters(p ConductorParams) Parameters {
	return Parameters{Kind: KindConductor, Conductor: &p}
}

func ThinFilmParameters(p ThinFilmParams) Parameters {
	return Parameters{Kind: KindThinFilm, ThinFilm: &p}
}

func GGXParameters(p GGXParams) Parameters {
	return Parameters{Kind: KindAnisotropicGGX, GGX: &p}
}

func SubsurfaceParameters(p SubsurfaceParams) Parameters {
	return Parameters{Kind: KindSubsurface, Subsurface: &p}
}

func LayeredParameters(layers ...Parameters) Parameters {
	return Parameters{Kind: KindLayered, Layers: layers}
}

// Build constructs the BSDF the parameters describe.
func (p Parameters) Build() (BSDF, error) {
	switch p.Kind {
	case KindDielectric:
		if p.Dielectric == nil {
			return nil, missingVariant(p.Kind)
		}
		return NewDielectricWithParams(*p.Dielectric)
	case KindConductor:
		if p.Conductor == nil {
			return nil, missingVariant(p.Kind)
		}
		return NewSpectralConductor(*p.Conductor)
	case KindThinFilm:
		if p.ThinFilm == nil {
			return nil, missingVariant(p.Kind)
		}
		return NewThinFilm(*p.ThinFilm)
	case KindAnisotropicGGX:
		if p.GGX == nil {
			return nil, missingVariant(p.Kind)
		}
		return NewAnisotropicGGX(*p.GGX)
	case KindSubsurface:
		if p.Subsurface == nil {
			return nil, missingVariant(p.Kind)
		}
		return NewSubsurface(*p.Subsurface)
	case KindLayered:
		children := make([]BSDF, 0, len(p.Layers))
		for i, lp := range p.Layers {
			child, err := lp.Build()
			if err != nil {
				return nil, fmt.Errorf("layer %d: %w", i, err)
			}
			children = append(children, child)
		}
		return NewLayered(children...)
	case KindHybrid:
		return nil, fmt.Errorf("%w: hybrid materials are built by wrapping a physical BSDF", ErrInvalidParameters)
	}
	return nil, fmt.Errorf("%w: unknown kind %v", ErrInvalidParameters, p.Kind)
}

func (p Parameters) Validate() error {
	_, err := p.Build()
	return err
}

func missingVariant(k Kind) error {
	return fmt.Errorf("%w: %s parameters are missing", ErrInvalidParameters, k)
}
