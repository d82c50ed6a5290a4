package train

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/zuclubit/momoto-sub008/logging"
	"github.com/zuclubit/momoto-sub008/neural"
)

// StopReason records why a run ended.
type StopReason int

const (
	StopMaxEpochs StopReason = iota
	StopEarlyStopping
	StopTargetLoss
	StopTimeBudget
	StopCancelled
	StopNonFinite
)

func (r StopReason) String() string {
	switch r {
	case StopMaxEpochs:
		return "max epochs"
	case StopEarlyStopping:
		return "early stopping"
	case StopTargetLoss:
		return "target loss"
	case StopTimeBudget:
		return "time budget"
	case StopCancelled:
		return "cancelled"
	case StopNonFinite:
		return "non-finite loss"
	}
	return "unknown"
}

// Result is the outcome of one training run.
type Result struct {
	RunID          string
	Weights        *neural.Weights
	TrainLoss      []float64
	ValidationLoss []float64
	// LastTerms is the breakdown of the final epoch's training loss.
	LastTerms LossTerms
	Epochs    int
	BestEpoch int
	BestLoss  float64
	Converged bool
	Stop      StopReason
	Duration  time.Duration
	Profile   string
}

// Pipeline trains correction weights. A pipeline holds no per-run state and
// may be reused.
type Pipeline struct {
	cfg    Config
	logger logging.Logger
}

func NewPipeline(cfg Config, logger logging.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{cfg: cfg, logger: logging.OrNop(logger)}, nil
}

func (p *Pipeline) Config() Config { return p.cfg }

// Train fits weights starting from init, or from a seeded initialisation
// when init is nil. The returned weights are those with the best
// validation loss. Cancellation and the time budget are only checked
// between epochs. On a non-finite loss the weights of the last finite epoch
// are returned together with ErrNonFiniteLoss.
func (p *Pipeline) Train(ctx context.Context, ds *Dataset, init *neural.Weights) (*Result, error) {
	cfg := p.cfg
	if ds.Len() == 0 {
		return nil, ErrEmptyDataset
	}
	if init == nil {
		init = neural.NewInitialWeights(cfg.Seed)
	}

	start := time.Now()
	prof := NewProfiler()
	res := &Result{RunID: uuid.NewString(), BestLoss: math.Inf(1)}
	trainSet, validation := ds.Split(cfg.ValidationSplit, cfg.Seed)
	if validation.Len() == 0 {
		validation = trainSet
	}
	p.logger.Infof("training run %s: %d train / %d validation samples", res.RunID, trainSet.Len(), validation.Len())

	params := init.Params()
	best, stable := params, params
	var (
		adam  AdamState
		grad  neural.Params
		cache neural.Cache
	)
	outs := make([]neural.Output, cfg.BatchSize)
	grads := make([][neural.OutputSize]float64, cfg.BatchSize)
	order := make([]int, trainSet.Len())
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	batch := make([]Sample, 0, cfg.BatchSize)
	stale := 0

	finish := func(w neural.Params, reason StopReason) *Result {
		res.Weights = neural.FromParams(&w, init.Version()+1)
		res.Stop = reason
		res.Converged = reason == StopEarlyStopping || reason == StopTargetLoss
		res.Duration = time.Since(start)
		res.Profile = prof.Summary()
		return res
	}

	for epoch := 1; epoch <= cfg.MaxEpochs; epoch++ {
		if err := ctx.Err(); err != nil {
			p.logger.Infof("training run %s: cancelled after %d epochs", res.RunID, res.Epochs)
			return finish(best, StopCancelled), err
		}
		if cfg.TimeBudget > 0 && time.Since(start) > cfg.TimeBudget {
			p.logger.Infof("training run %s: time budget %v exhausted after %d epochs", res.RunID, cfg.TimeBudget, res.Epochs)
			return finish(best, StopTimeBudget), nil
		}

		prof.BeginScope("epoch")
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		var epochTerms LossTerms
		for lo := 0; lo < len(order); lo += cfg.BatchSize {
			hi := min(lo+cfg.BatchSize, len(order))
			batch = batch[:0]
			for _, idx := range order[lo:hi] {
				batch = append(batch, trainSet.At(idx))
			}

			prof.BeginScope("forward")
			for i, s := range batch {
				outs[i] = params.Forward(s.Features, nil)
			}
			prof.EndScope("forward")

			prof.BeginScope("loss")
			terms := batchLoss(batch, outs[:len(batch)], cfg.Loss, grads[:len(batch)])
			prof.EndScope("loss")
			if !finite(terms.Total) {
				prof.EndScope("epoch")
				p.logger.Errorf("training run %s: non-finite loss in epoch %d", res.RunID, epoch)
				return finish(stable, StopNonFinite), fmt.Errorf("epoch %d: %w", epoch, ErrNonFiniteLoss)
			}

			prof.BeginScope("backward")
			grad = neural.Params{}
			for i, s := range batch {
				params.Forward(s.Features, &cache)
				params.Backward(&cache, grads[i], &grad)
			}
			adam.Step(&params, &grad, cfg)
			prof.EndScope("backward")

			epochTerms.add(terms, float64(len(batch))/float64(len(order)))
			prof.AddCount("batches", 1)
		}

		prof.BeginScope("validation")
		valLoss := p.evaluate(&params, validation)
		prof.EndScope("validation")
		prof.EndScope("epoch")
		prof.AddCount("epochs", 1)

		if !finite(valLoss) || !params.Finite() {
			p.logger.Errorf("training run %s: non-finite parameters after epoch %d", res.RunID, epoch)
			return finish(stable, StopNonFinite), fmt.Errorf("epoch %d: %w", epoch, ErrNonFiniteLoss)
		}
		stable = params

		res.Epochs = epoch
		res.LastTerms = epochTerms
		res.TrainLoss = append(res.TrainLoss, epochTerms.Total)
		res.ValidationLoss = append(res.ValidationLoss, valLoss)

		if valLoss < res.BestLoss-cfg.MinDelta {
			res.BestLoss, res.BestEpoch = valLoss, epoch
			best = params
			stale = 0
		} else {
			stale++
		}
		if p.logger.DebugEnabled() {
			p.logger.Debugf("epoch %d: train=%.6g val=%.6g best=%.6g@%d", epoch, epochTerms.Total, valLoss, res.BestLoss, res.BestEpoch)
		}

		if cfg.TargetLoss > 0 && valLoss <= cfg.TargetLoss {
			p.logger.Infof("training run %s: target loss reached at epoch %d", res.RunID, epoch)
			return finish(best, StopTargetLoss), nil
		}
		if cfg.Patience > 0 && stale >= cfg.Patience {
			p.logger.Infof("training run %s: no improvement for %d epochs, stopping at %d", res.RunID, stale, epoch)
			return finish(best, StopEarlyStopping), nil
		}
	}
	p.logger.Infof("training run %s: finished %d epochs, best %.6g at %d", res.RunID, res.Epochs, res.BestLoss, res.BestEpoch)
	return finish(best, StopMaxEpochs), nil
}

// Evaluate reports the mean batch loss of w over ds.
func (p *Pipeline) Evaluate(w *neural.Weights, ds *Dataset) float64 {
	params := w.Params()
	return p.evaluate(&params, ds)
}

func (p *Pipeline) evaluate(params *neural.Params, ds *Dataset) float64 {
	n := ds.Len()
	if n == 0 {
		return 0
	}
	outs := make([]neural.Output, 0, p.cfg.BatchSize)
	batch := make([]Sample, 0, p.cfg.BatchSize)
	var total float64
	for lo := 0; lo < n; lo += p.cfg.BatchSize {
		hi := min(lo+p.cfg.BatchSize, n)
		batch, outs = batch[:0], outs[:0]
		for i := lo; i < hi; i++ {
			s := ds.At(i)
			batch = append(batch, s)
			outs = append(outs, params.Forward(s.Features, nil))
		}
		terms := batchLoss(batch, outs, p.cfg.Loss, nil)
		total += terms.Total * float64(hi-lo) / float64(n)
	}
	return total
}
