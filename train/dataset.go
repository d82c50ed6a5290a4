package train

import (
	"iter"
	"math"
	"math/rand"

	"github.com/zuclubit/momoto-sub008/material"
	"github.com/zuclubit/momoto-sub008/neural"
)

// Feature positions shared with the hybrid feature builder.
const (
	featWavelength = 3
	featPhysR      = 7
	featPhysT      = 8
)

// Sample pairs network features with the residual that would turn the
// physical response into the reference one.
type Sample struct {
	Features neural.Input `json:"features"`
	DeltaR   float64      `json:"deltaR"`
	DeltaT   float64      `json:"deltaT"`
}

// Physical recovers the physical R and T encoded in the features.
func (s Sample) Physical() (r, t float64) {
	return s.Features[featPhysR], s.Features[featPhysT]
}

// Target is the reference R and T.
func (s Sample) Target() (r, t float64) {
	pr, pt := s.Physical()
	return pr + s.DeltaR, pt + s.DeltaT
}

func (s Sample) Wavelength() float64 {
	return material.MinWavelength + s.Features[featWavelength]*(material.MaxWavelength-material.MinWavelength)
}

// Dataset is an ordered, read-only collection of samples.
type Dataset struct {
	samples []Sample
}

func NewDataset(samples []Sample) *Dataset {
	return &Dataset{samples: append([]Sample(nil), samples...)}
}

// Collect drains seq into a dataset.
func Collect(seq iter.Seq[Sample]) *Dataset {
	d := &Dataset{}
	for s := range seq {
		d.samples = append(d.samples, s)
	}
	return d
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.samples)
}

func (d *Dataset) At(i int) Sample { return d.samples[i] }

func (d *Dataset) All() iter.Seq2[int, Sample] {
	return func(yield func(int, Sample) bool) {
		for i, s := range d.samples {
			if !yield(i, s) {
				return
			}
		}
	}
}

// Split shuffles with seed and holds out fraction of the samples. The
// training part always keeps at least one sample.
func (d *Dataset) Split(fraction float64, seed int64) (trainSet, validation *Dataset) {
	n := d.Len()
	held := int(math.Floor(fraction * float64(n)))
	if held >= n {
		held = n - 1
	}
	if held < 0 {
		held = 0
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	trainSet = &Dataset{samples: make([]Sample, 0, n-held)}
	validation = &Dataset{samples: make([]Sample, 0, held)}
	for i, j := range perm {
		if i < held {
			validation.samples = append(validation.samples, d.samples[j])
		} else {
			trainSet.samples = append(trainSet.samples, d.samples[j])
		}
	}
	return trainSet, validation
}
