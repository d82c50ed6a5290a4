package train

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/zuclubit/momoto-sub008/logging"
	"github.com/zuclubit/momoto-sub008/neural"
)

var ErrWorkerBusy = errors.New("training worker is busy")

// Publisher receives freshly trained weights. hybrid.CorrectedBSDF and
// neural.Store both satisfy it.
type Publisher interface {
	Swap(w *neural.Weights) *neural.Weights
}

// Worker runs one training job at a time in the background and publishes
// the result with a single swap when it succeeds.
type Worker struct {
	pipeline  *Pipeline
	publisher Publisher
	logger    logging.Logger

	latest  atomic.Pointer[Result]
	running atomic.Bool

	mu      sync.Mutex
	done    chan struct{}
	last    *Result
	lastErr error
}

func NewWorker(p *Pipeline, pub Publisher, logger logging.Logger) *Worker {
	return &Worker{pipeline: p, publisher: pub, logger: logging.OrNop(logger)}
}

// Submit starts training on ds. It returns ErrWorkerBusy while a previous
// job is still running.
func (w *Worker) Submit(ctx context.Context, ds *Dataset, init *neural.Weights) error {
	if !w.running.CompareAndSwap(false, true) {
		return ErrWorkerBusy
	}
	done := make(chan struct{})
	w.mu.Lock()
	w.done = done
	w.last, w.lastErr = nil, nil
	w.mu.Unlock()

	go w.run(ctx, ds, init, done)
	return nil
}

func (w *Worker) run(ctx context.Context, ds *Dataset, init *neural.Weights, done chan struct{}) {
	defer close(done)
	defer w.running.Store(false)

	res, err := w.pipeline.Train(ctx, ds, init)
	if err == nil && res != nil {
		if w.publisher != nil {
			w.publisher.Swap(res.Weights)
		}
		w.latest.Store(res)
		w.logger.Infof("published weights %s after %d epochs (%s)", res.Weights.ID(), res.Epochs, res.Stop)
	} else {
		w.logger.Warnf("training job failed, keeping current weights: %v", err)
	}

	w.mu.Lock()
	w.last, w.lastErr = res, err
	w.mu.Unlock()
}

// Latest returns the most recent successful result, or nil.
func (w *Worker) Latest() *Result {
	return w.latest.Load()
}

func (w *Worker) Running() bool { return w.running.Load() }

// Wait blocks until the current job finishes and returns its outcome.
func (w *Worker) Wait() (*Result, error) {
	w.mu.Lock()
	done := w.done
	w.mu.Unlock()
	if done == nil {
		return nil, nil
	}
	<-done

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last, w.lastErr
}
