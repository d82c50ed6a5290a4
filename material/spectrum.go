package material

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"gopkg.in/yaml.v3"
)

// Spectrum is a piecewise-linear function of wavelength, held constant
// beyond its first and last samples. A single value means a constant.
type Spectrum struct {
	Wavelengths []float64 `json:"wavelengths,omitempty" yaml:"wavelengths,omitempty"`
	Values      []float64 `json:"values" yaml:"values"`
}

func Constant(v float64) Spectrum {
	return Spectrum{Values: []float64{v}}
}

// RGB places r, g and b at the channel sample wavelengths.
func RGB(r, g, b float64) Spectrum {
	// ascending wavelength order: B, G, R
	return Spectrum{
		Wavelengths: []float64{ChannelB.Wavelength(), ChannelG.Wavelength(), ChannelR.Wavelength()},
		Values:      []float64{b, g, r},
	}
}

// Sampled builds a spectrum from (wavelength, value) pairs in any order.
func Sampled(wavelengths, values []float64) (Spectrum, error) {
	if len(wavelengths) != len(values) {
		return Spectrum{}, fmt.Errorf("spectrum has %d wavelengths but %d values", len(wavelengths), len(values))
	}
	if len(values) == 0 {
		return Spectrum{}, fmt.Errorf("spectrum needs at least one sample")
	}
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return wavelengths[idx[a]] < wavelengths[idx[b]] })

	s := Spectrum{
		Wavelengths: make([]float64, len(values)),
		Values:      make([]float64, len(values)),
	}
	for i, j := range idx {
		s.Wavelengths[i] = wavelengths[j]
		s.Values[i] = values[j]
		if i > 0 && s.Wavelengths[i] == s.Wavelengths[i-1] {
			return Spectrum{}, fmt.Errorf("duplicate spectrum wavelength %g", s.Wavelengths[i])
		}
	}
	return s, nil
}

// At samples the spectrum at wavelength (nm).
func (s Spectrum) At(wavelength float64) float64 {
	n := len(s.Values)
	switch {
	case n == 0:
		return 0
	case n == 1 || len(s.Wavelengths) != n:
		return s.Values[0]
	}
	if wavelength <= s.Wavelengths[0] {
		return s.Values[0]
	}
	if wavelength >= s.Wavelengths[n-1] {
		return s.Values[n-1]
	}
	i := sort.SearchFloat64s(s.Wavelengths, wavelength)
	if s.Wavelengths[i] == wavelength {
		return s.Values[i]
	}
	w0, w1 := s.Wavelengths[i-1], s.Wavelengths[i]
	t := (wavelength - w0) / (w1 - w0)
	return s.Values[i-1] + t*(s.Values[i]-s.Values[i-1])
}

// Min returns the smallest sample value.
func (s Spectrum) Min() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	m := math.Inf(1)
	for _, v := range s.Values {
		m = math.Min(m, v)
	}
	return m
}

func (s Spectrum) IsZero() bool { return len(s.Values) == 0 }

func (s Spectrum) valid() bool {
	if len(s.Wavelengths) != 0 && len(s.Wavelengths) != len(s.Values) {
		return false
	}
	for _, v := range s.Values {
		if !isFinite(v) {
			return false
		}
	}
	return true
}

func (s Spectrum) clone() Spectrum {
	return Spectrum{
		Wavelengths: append([]float64(nil), s.Wavelengths...),
		Values:      append([]float64(nil), s.Values...),
	}
}

// MarshalJSON writes a constant spectrum as a bare number.
func (s Spectrum) MarshalJSON() ([]byte, error) {
	if len(s.Values) == 1 && len(s.Wavelengths) == 0 {
		return json.Marshal(s.Values[0])
	}
	type plain Spectrum
	return json.Marshal(plain(s))
}

// UnmarshalJSON accepts either a bare number or {"wavelengths":[...],"values":[...]}.
func (s *Spectrum) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("spectrum: %w", err)
		}
		*s = Constant(v)
		return nil
	}
	type plain Spectrum
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("spectrum: %w", err)
	}
	return s.assign(Spectrum(p))
}

func (s Spectrum) MarshalYAML() (any, error) {
	if len(s.Values) == 1 && len(s.Wavelengths) == 0 {
		return s.Values[0], nil
	}
	type plain Spectrum
	return plain(s), nil
}

func (s *Spectrum) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var v float64
		if err := node.Decode(&v); err != nil {
			return fmt.Errorf("spectrum: %w", err)
		}
		*s = Constant(v)
		return nil
	}
	type plain Spectrum
	var p plain
	if err := node.Decode(&p); err != nil {
		return fmt.Errorf("spectrum: %w", err)
	}
	return s.assign(Spectrum(p))
}

func (s *Spectrum) assign(p Spectrum) error {
	if len(p.Wavelengths) == 0 {
		*s = p
		return nil
	}
	sorted, err := Sampled(p.Wavelengths, p.Values)
	if err != nil {
		return err
	}
	*s = sorted
	return nil
}
