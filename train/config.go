// Package train fits the correction network to reference data.
package train

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrEmptyDataset        = errors.New("empty dataset")
	ErrInvalidLearningRate = errors.New("learning rate must be positive and finite")
	ErrInvalidConfig       = errors.New("invalid training config")
	ErrNonFiniteLoss       = errors.New("loss became non-finite")
)

// LossWeights scale the four loss terms.
type LossWeights struct {
	Perceptual float64 `json:"perceptual"`
	Spectral   float64 `json:"spectral"`
	Energy     float64 `json:"energy"`
	Magnitude  float64 `json:"magnitude"`
}

func DefaultLossWeights() LossWeights {
	return LossWeights{Perceptual: 1.0, Spectral: 0.5, Energy: 10.0, Magnitude: 0.01}
}

type Config struct {
	LearningRate float64 `json:"learningRate"`
	BatchSize    int     `json:"batchSize"`
	MaxEpochs    int     `json:"maxEpochs"`
	// Patience is the number of epochs without improvement before stopping; 0 disables early stopping.
	Patience int     `json:"patience"`
	MinDelta float64 `json:"minDelta"`
	Seed     int64   `json:"seed"`

	Beta1   float64 `json:"beta1"`
	Beta2   float64 `json:"beta2"`
	Epsilon float64 `json:"epsilon"`

	Loss LossWeights `json:"loss"`

	// ValidationSplit is the fraction of samples held out for early stopping.
	ValidationSplit float64 `json:"validationSplit"`
	// TimeBudget bounds wall-clock training time; 0 means unbounded.
	TimeBudget time.Duration `json:"timeBudget"`
	// TargetLoss stops training once the validation loss reaches it; 0 disables.
	TargetLoss float64 `json:"targetLoss"`
}

func DefaultConfig() Config {
	return Config{
		LearningRate:    0.001,
		BatchSize:       32,
		MaxEpochs:       200,
		Patience:        10,
		MinDelta:        1e-6,
		Seed:            1,
		Beta1:           0.9,
		Beta2:           0.999,
		Epsilon:         1e-8,
		Loss:            DefaultLossWeights(),
		ValidationSplit: 0.2,
	}
}

func (c Config) Validate() error {
	if math.IsNaN(c.LearningRate) || math.IsInf(c.LearningRate, 0) || c.LearningRate <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidLearningRate, c.LearningRate)
	}
	switch {
	case c.BatchSize < 1:
		return fmt.Errorf("%w: batch size %d must be >= 1", ErrInvalidConfig, c.BatchSize)
	case c.MaxEpochs < 1:
		return fmt.Errorf("%w: max epochs %d must be >= 1", ErrInvalidConfig, c.MaxEpochs)
	case c.Patience < 0:
		return fmt.Errorf("%w: patience %d must be >= 0", ErrInvalidConfig, c.Patience)
	case c.MinDelta < 0 || math.IsNaN(c.MinDelta):
		return fmt.Errorf("%w: min delta %g must be >= 0", ErrInvalidConfig, c.MinDelta)
	case c.Beta1 < 0 || c.Beta1 >= 1 || c.Beta2 < 0 || c.Beta2 >= 1:
		return fmt.Errorf("%w: adam betas (%g, %g) must lie in [0, 1)", ErrInvalidConfig, c.Beta1, c.Beta2)
	case c.Epsilon <= 0:
		return fmt.Errorf("%w: adam epsilon %g must be positive", ErrInvalidConfig, c.Epsilon)
	case c.ValidationSplit < 0 || c.ValidationSplit >= 1:
		return fmt.Errorf("%w: validation split %g must lie in [0, 1)", ErrInvalidConfig, c.ValidationSplit)
	case c.TimeBudget < 0:
		return fmt.Errorf("%w: time budget %v must be >= 0", ErrInvalidConfig, c.TimeBudget)
	case c.TargetLoss < 0:
		return fmt.Errorf("%w: target loss %g must be >= 0", ErrInvalidConfig, c.TargetLoss)
	}
	w := c.Loss
	if w.Perceptual < 0 || w.Spectral < 0 || w.Energy < 0 || w.Magnitude < 0 {
		return fmt.Errorf("%w: loss weights must be >= 0", ErrInvalidConfig)
	}
	return nil
}
