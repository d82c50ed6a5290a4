package momoto

import "github.com/zuclubit/momoto-sub008/neural"

// LoadWeights reads a weight snapshot from path and publishes it to the
// hybrid material for name. The previous weights are returned.
func (m *Materials) LoadWeights(name, path string) (*neural.Weights, error) {
	h, err := m.Hybrid(name)
	if err != nil {
		return nil, err
	}
	w, err := neural.Load(path)
	if err != nil {
		return nil, err
	}
	old := h.Swap(w)
	m.logger.Infof("material %q: loaded weights %s (v%d) from %s", name, w.ID(), w.Version(), path)
	return old, nil
}

// SaveWeights writes the weights currently published for name.
func (m *Materials) SaveWeights(name, path string) error {
	h, err := m.Hybrid(name)
	if err != nil {
		return err
	}
	return h.Weights().Save(path)
}
