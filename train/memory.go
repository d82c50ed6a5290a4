package train

import (
	"fmt"
	"unsafe"

	"github.com/zuclubit/momoto-sub008/neural"
)

// MemoryBudget is the ceiling for the training working set.
const MemoryBudget = 100 * 1024

// Memory itemises the bytes held while training.
type Memory struct {
	Weights     int
	Adam        int
	Gradient    int
	Activations int
}

func (m Memory) Total() int { return m.Weights + m.Adam + m.Gradient + m.Activations }

func (m Memory) String() string {
	return fmt.Sprintf("weights=%dB adam=%dB grad=%dB activations=%dB total=%dB", m.Weights, m.Adam, m.Gradient, m.Activations, m.Total())
}

// EstimateMemory sizes the buffers Train allocates for cfg. Weights covers
// the live parameters plus the best and last stable copies; a single
// activation cache is reused across the batch.
func EstimateMemory(cfg Config) Memory {
	params := int(unsafe.Sizeof(neural.Params{}))
	perSample := int(unsafe.Sizeof(neural.Output{}) + unsafe.Sizeof([neural.OutputSize]float64{}))
	return Memory{
		Weights:     3 * params,
		Adam:        int(unsafe.Sizeof(AdamState{})),
		Gradient:    params,
		Activations: int(unsafe.Sizeof(neural.Cache{})) + cfg.BatchSize*perSample,
	}
}
