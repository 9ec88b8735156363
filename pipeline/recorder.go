package pipeline

import (
	"log/slog"
	"sync"

	"github.com/alpgo/grb/core"
)

// Recorder is the process-wide dependence analyzer. Every primitive
// invocation in the execute phase lands here as a Stage; the recorder
// decides whether the stage joins an existing pipeline, forces one or
// more pipelines to execute first, or opens a new pipeline.
//
// The invariant maintained across all decisions: the live pipelines
// partition the pending stages such that no container is written by one
// pipeline and read or written by another. A stage that would break the
// partition either merges the pipelines involved or flushes them.
type Recorder struct {
	mu        sync.Mutex
	cfg       core.Config
	pipelines []*Pipeline
	warnOnce  sync.Once
	logger    *slog.Logger
}

// RecorderOption customizes a Recorder.
type RecorderOption func(*Recorder)

// WithLogger routes the recorder's diagnostics through l instead of the
// slog default.
func WithLogger(l *slog.Logger) RecorderOption {
	return func(r *Recorder) { r.logger = l }
}

// NewRecorder returns a recorder with a pre-sized pipeline pool.
func NewRecorder(cfg core.Config, opts ...RecorderOption) *Recorder {
	r := &Recorder{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	r.pipelines = make([]*Pipeline, 0, cfg.MaxPipelines)
	for i := 0; i < cfg.MaxPipelines; i++ {
		r.pipelines = append(r.pipelines, newPipeline(&r.cfg))
	}
	return r
}

// Config returns the configuration the recorder and its pipelines run
// under.
func (r *Recorder) Config() *core.Config { return &r.cfg }

// AddStage records s. The returned code reflects any pipeline the stage
// forced to execute; recording itself cannot fail. Stages producing only
// a scalar are observation points: the stage and everything it depends
// on execute before AddStage returns.
func (r *Recorder) AddStage(s Stage) core.RC {
	r.mu.Lock()
	defer r.mu.Unlock()

	rc := core.Success
	var candidates []*Pipeline

	for _, p := range r.pipelines {
		if p.Empty() {
			continue
		}
		force, shared := classify(p, &s)
		if !force && shared && p.ContainersSize() != s.Size {
			// Data-dependent but over a different iteration space, so
			// the stages cannot share a tile sweep.
			force = true
		}
		if force {
			if r2 := p.Execute(); r2 != core.Success && rc == core.Success {
				rc = r2
			}
			continue
		}
		if shared {
			candidates = append(candidates, p)
		}
	}

	var dst *Pipeline
	switch len(candidates) {
	case 0:
		dst = r.emptySlot()
	case 1:
		dst = candidates[0]
	default:
		// The stage bridges several pipelines; fold the younger ones
		// into the first so recorded order is preserved.
		dst = candidates[0]
		for _, p := range candidates[1:] {
			dst.merge(p)
		}
	}
	dst.addStage(s)

	if s.writesScalar() {
		if r2 := dst.Execute(); r2 != core.Success && rc == core.Success {
			rc = r2
		}
	}
	return rc
}

// classify decides how stage s relates to pipeline p: force means p must
// execute before s runs, shared means s and p touch common containers
// and may fuse.
func classify(p *Pipeline, s *Stage) (force, shared bool) {
	outs := []core.ContainerID{s.Output, s.OutputAux}
	for _, out := range outs {
		if out == core.NoContainer {
			continue
		}
		if p.AccessesInputVector(out) {
			if p.ReadsCrossTile(out) {
				// s would overwrite a vector a pending product still
				// reads from every tile.
				return true, false
			}
			shared = true
		}
		if p.AccessesOutputVector(out) {
			shared = true
		}
	}

	for _, in := range s.Inputs {
		if in == core.NoContainer {
			continue
		}
		if s.InputsWritten && p.ReadsCrossTile(in) {
			return true, false
		}
		if s.CrossTile && s.OutputMatrix == nil && p.AccessesOutputVector(in) {
			// A product reads all of in, but p materializes it tile by
			// tile.
			return true, false
		}
		if p.AccessesVector(in) {
			shared = true
		}
	}

	if s.OutputMatrix != nil && p.AccessesMatrix(s.OutputMatrix.ID()) {
		shared = true
	}
	for _, m := range s.InputMatrices {
		if m == core.NoContainer {
			continue
		}
		if p.WritesMatrix(m) {
			if s.OutputMatrix != nil && fusesThroughPattern(s.Opcode) {
				// Matrix products chain: the capacity pass propagates
				// the pending pattern and the stage-major sweep orders
				// the numeric work.
				shared = true
			} else {
				return true, false
			}
			continue
		}
		if p.AccessesMatrix(m) {
			shared = true
		}
	}
	return false, shared
}

// fusesThroughPattern reports whether a stage's capacity pass depends
// only on the patterns of its matrix inputs, never on their values, so
// it may chain onto a pipeline that has not yet materialized those
// values. Value-dependent capacity passes (select, folds) must not.
func fusesThroughPattern(op Opcode) bool {
	switch op {
	case OpMxM, OpMaskedMxM, OpEWiseApplyMatrix:
		return true
	}
	return false
}

// emptySlot returns a reusable empty pipeline, growing the pool when all
// slots hold pending work. Growth past the configured maximum is legal
// but reported once.
func (r *Recorder) emptySlot() *Pipeline {
	for _, p := range r.pipelines {
		if p.Empty() {
			return p
		}
	}
	if r.cfg.WarnIfExceeded {
		r.warnOnce.Do(func() {
			r.logger.Warn("live pipelines exceed configured pool size",
				slog.Int("max_pipelines", r.cfg.MaxPipelines))
		})
	}
	p := newPipeline(&r.cfg)
	r.pipelines = append(r.pipelines, p)
	return p
}

// ExecuteContainer flushes the pipeline, if any, with pending work on the
// container id. The partition invariant guarantees at most one such
// pipeline exists.
func (r *Recorder) ExecuteContainer(id core.ContainerID) core.RC {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.pipelines {
		if p.Empty() {
			continue
		}
		if p.AccessesVector(id) || p.AccessesMatrix(id) {
			return p.Execute()
		}
	}
	return core.Success
}

// ExecuteAll flushes every live pipeline. All pipelines are attempted;
// the first failure code is returned.
func (r *Recorder) ExecuteAll() core.RC {
	r.mu.Lock()
	defer r.mu.Unlock()
	rc := core.Success
	for _, p := range r.pipelines {
		if p.Empty() {
			continue
		}
		if r2 := p.Execute(); r2 != core.Success && rc == core.Success {
			rc = r2
		}
	}
	return rc
}

// LivePipelines returns the number of pipelines with pending stages.
func (r *Recorder) LivePipelines() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.pipelines {
		if !p.Empty() {
			n++
		}
	}
	return n
}

// PendingStages returns the total number of recorded, unexecuted stages.
func (r *Recorder) PendingStages() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.pipelines {
		n += p.NumStages()
	}
	return n
}

var (
	defaultMu       sync.Mutex
	defaultRecorder *Recorder
)

// Init installs the process default recorder. Calling Init while a
// default with pending work exists flushes it first.
func Init(cfg core.Config, opts ...RecorderOption) (core.RC, error) {
	if err := cfg.Validate(); err != nil {
		return core.Illegal, err
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	rc := core.Success
	if defaultRecorder != nil {
		rc = defaultRecorder.ExecuteAll()
	}
	defaultRecorder = NewRecorder(cfg, opts...)
	return rc, nil
}

// Default returns the process default recorder, creating one with the
// default configuration on first use.
func Default() *Recorder {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRecorder == nil {
		defaultRecorder = NewRecorder(core.DefaultConfig())
	}
	return defaultRecorder
}

// Finalize flushes and drops the process default recorder.
func Finalize() core.RC {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRecorder == nil {
		return core.Success
	}
	rc := defaultRecorder.ExecuteAll()
	defaultRecorder = nil
	return rc
}
