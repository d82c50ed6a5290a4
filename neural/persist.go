package neural

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

var ErrInvalidSnapshot = errors.New("invalid weights snapshot")

type snapshotShape struct {
	Input  int `json:"input"`
	Hidden int `json:"hidden"`
	Output int `json:"output"`
}

type snapshotFile struct {
	ID      string        `json:"id"`
	Version int           `json:"version"`
	Shape   snapshotShape `json:"shape"`
	Params  []float64     `json:"params"`
}

var currentShape = snapshotShape{Input: InputSize, Hidden: HiddenSize, Output: OutputSize}

func (w *Weights) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotFile{
		ID:      w.id,
		Version: w.version,
		Shape:   currentShape,
		Params:  w.params[:],
	})
}

func (w *Weights) UnmarshalJSON(data []byte) error {
	var f snapshotFile
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	if f.Shape != currentShape {
		return fmt.Errorf("%w: shape %+v, want %+v", ErrInvalidSnapshot, f.Shape, currentShape)
	}
	if len(f.Params) != ParamCount {
		return fmt.Errorf("%w: %d params, want %d", ErrInvalidSnapshot, len(f.Params), ParamCount)
	}
	for i, v := range f.Params {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: param %d is not finite", ErrInvalidSnapshot, i)
		}
	}
	if f.ID == "" {
		f.ID = makeWeightsID()
	}
	w.id, w.version = f.ID, f.Version
	copy(w.params[:], f.Params)
	return nil
}

// Save writes the snapshot as indented JSON.
func (w *Weights) Save(path string) error {
	bytes, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, bytes, 0644)
}

func Load(path string) (*Weights, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	w := &Weights{}
	if err := json.Unmarshal(bytes, w); err != nil {
		return nil, fmt.Errorf("load weights %s: %w", path, err)
	}
	return w, nil
}
