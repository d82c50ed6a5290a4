package neural

import "sync/atomic"

// Store holds the current weights snapshot. Readers keep whatever snapshot
// they loaded; writers replace it with a single atomic store.
type Store struct {
	latest atomic.Pointer[Weights]
}

// NewStore starts from w, or from zero weights when w is nil.
func NewStore(w *Weights) *Store {
	s := &Store{}
	if w == nil {
		w = NewZeroWeights()
	}
	s.latest.Store(w)
	return s
}

func (s *Store) Get() *Weights {
	return s.latest.Load()
}

// Swap publishes w and returns the previous snapshot. A nil w is ignored.
func (s *Store) Swap(w *Weights) *Weights {
	if w == nil {
		return s.latest.Load()
	}
	return s.latest.Swap(w)
}
