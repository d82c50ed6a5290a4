package material

import "fmt"

// Kind enumerates the closed set of material behaviours.
type Kind int

const (
	kindInvalid Kind = iota
	KindDielectric
	KindConductor
	KindThinFilm
	KindAnisotropicGGX
	KindSubsurface
	KindLayered
	KindHybrid
)

// ParseKind looks up a kind by its name.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "dielectric":
		return KindDielectric, nil
	case "conductor":
		return KindConductor, nil
	case "thinFilm":
		return KindThinFilm, nil
	case "anisotropicGGX":
		return KindAnisotropicGGX, nil
	case "subsurface":
		return KindSubsurface, nil
	case "layered":
		return KindLayered, nil
	case "hybrid":
		return KindHybrid, nil
	}

	return kindInvalid, fmt.Errorf("unknown material kind %q", name)
}

func (k Kind) String() string {
	switch k {
	case KindDielectric:
		return "dielectric"
	case KindConductor:
		return "conductor"
	case KindThinFilm:
		return "thinFilm"
	case KindAnisotropicGGX:
		return "anisotropicGGX"
	case KindSubsurface:
		return "subsurface"
	case KindLayered:
		return "layered"
	case KindHybrid:
		return "hybrid"
	}

	return "invalid"
}

func (k Kind) MarshalText() ([]byte, error) {
	if k == kindInvalid {
		return nil, fmt.Errorf("cannot marshal invalid material kind")
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
