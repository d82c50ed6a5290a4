package momoto

import (
	"context"
	"fmt"
	"sync"

	"github.com/zuclubit/momoto-sub008/hybrid"
	"github.com/zuclubit/momoto-sub008/logging"
	"github.com/zuclubit/momoto-sub008/material"
	"github.com/zuclubit/momoto-sub008/train"
)

// TrainingModule installs background training for hybrid materials. It
// needs MaterialsModule installed before it. A nil Config uses
// train.DefaultConfig.
type TrainingModule struct {
	Config *train.Config
}

func (m TrainingModule) Install(e *Engine) error {
	mats, err := requireMaterials(e, "training")
	if err != nil {
		return err
	}
	cfg := train.DefaultConfig()
	if m.Config != nil {
		cfg = *m.Config
	}
	p, err := train.NewPipeline(cfg, e.Logger())
	if err != nil {
		return err
	}
	e.AddResources(&Training{
		pipeline:  p,
		materials: mats,
		logger:    e.Logger(),
		jobs:      make(map[string]*trainingJob),
	})
	return nil
}

// Training owns one worker per material. Each worker publishes into the
// material's hybrid wrapper when a run succeeds.
type Training struct {
	pipeline  *train.Pipeline
	materials *Materials
	logger    logging.Logger

	mu   sync.Mutex
	jobs map[string]*trainingJob
}

type trainingJob struct {
	target *hybrid.CorrectedBSDF
	worker *train.Worker
}

func (t *Training) Pipeline() *train.Pipeline { return t.pipeline }

// Dataset samples the named preset against ref.
func (t *Training) Dataset(name string, ref train.Reference, samplesPerMaterial int, seed int64) (*train.Dataset, error) {
	phys, err := t.materials.Physical(name)
	if err != nil {
		return nil, err
	}
	return train.Generate(train.GeneratorConfig{
		Materials:          []material.BSDF{phys},
		Reference:          ref,
		SamplesPerMaterial: samplesPerMaterial,
		Seed:               seed,
	})
}

// Start trains the named material in the background, continuing from its
// published weights unless those are still zero.
func (t *Training) Start(ctx context.Context, name string, ds *train.Dataset) error {
	job, err := t.job(name)
	if err != nil {
		return err
	}

	init := job.target.Weights()
	if init.IsZero() {
		init = nil
	}
	if err := job.worker.Submit(ctx, ds, init); err != nil {
		return fmt.Errorf("material %q: %w", name, err)
	}
	t.logger.Infof("material %q: training started on %d samples", name, ds.Len())
	return nil
}

// Wait blocks until the named material's current run finishes.
func (t *Training) Wait(name string) (*train.Result, error) {
	job, ok := t.lookup(name)
	if !ok {
		return nil, nil
	}
	return job.worker.Wait()
}

func (t *Training) Running(name string) bool {
	job, ok := t.lookup(name)
	return ok && job.worker.Running()
}

func (t *Training) lookup(name string) (*trainingJob, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobs[name]
	return job, ok
}

// job returns the worker for name, creating it on first use. Unknown
// presets are reported and leave no job behind.
func (t *Training) job(name string) (*trainingJob, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if job, ok := t.jobs[name]; ok {
		return job, nil
	}
	h, err := t.materials.Hybrid(name)
	if err != nil {
		return nil, err
	}
	job := &trainingJob{target: h, worker: train.NewWorker(t.pipeline, h, t.logger)}
	t.jobs[name] = job
	return job, nil
}
