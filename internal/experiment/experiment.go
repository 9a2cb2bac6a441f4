package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/lagrange/internal/config"
	"github.com/san-kum/lagrange/internal/dynamo"
	"github.com/san-kum/lagrange/internal/ensemble"
	"github.com/san-kum/lagrange/internal/integrators"
	"github.com/san-kum/lagrange/internal/kinematics"
	"github.com/san-kum/lagrange/internal/logging"
	"github.com/san-kum/lagrange/internal/metrics"
	"github.com/san-kum/lagrange/internal/render"
	"github.com/san-kum/lagrange/internal/storage"
)

// Experiment binds a configured system to its mapper and initial state.
type Experiment struct {
	cfg       *config.Config
	entry     Entry
	sys       dynamo.System
	mapper    kinematics.Mapper
	x0        dynamo.State
	log       logging.Logger
	collector *metrics.Collector
}

type Option func(*Experiment)

func WithLogger(l logging.Logger) Option {
	return func(e *Experiment) { e.log = l }
}

// WithCollector records steps, evaluations and energy drift.
func WithCollector(c *metrics.Collector) Option {
	return func(e *Experiment) { e.collector = c }
}

type Result struct {
	Trajectory *dynamo.Trajectory
	Metrics    map[string]float64
	Elapsed    time.Duration
}

func New(reg *Registry, cfg *config.Config, opts ...Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	entry, err := reg.Lookup(cfg.System)
	if err != nil {
		return nil, err
	}

	sys := entry.New()
	if err := cfg.ApplyParams(sys); err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.System, err)
	}
	x0, err := cfg.InitialState(sys)
	if err != nil {
		return nil, err
	}

	e := &Experiment{
		cfg:    cfg,
		entry:  entry,
		sys:    sys,
		mapper: entry.Mapper(sys),
		x0:     x0,
		log:    logging.Noop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Experiment) Config() *config.Config    { return e.cfg }
func (e *Experiment) Entry() Entry              { return e.entry }
func (e *Experiment) System() dynamo.System     { return e.sys }
func (e *Experiment) Mapper() kinematics.Mapper { return e.mapper }
func (e *Experiment) Initial() dynamo.State     { return e.x0.Clone() }
func (e *Experiment) Span() dynamo.Span         { return dynamo.Span{Start: 0, End: e.cfg.Duration} }
func (e *Experiment) Samples() int              { return render.SampleCount(e.cfg.Duration, e.cfg.FPS, e.cfg.Speed) }

// Options builds integrator options from the configuration.
func (e *Experiment) Options() integrators.Options {
	opts := integrators.DefaultOptions()
	if e.cfg.Integrator != "" {
		opts.Method = e.cfg.Integrator
	}
	opts.RelTol = e.cfg.RelTol
	opts.AbsTol = e.cfg.AbsTol
	opts.SingularTol = e.cfg.SingularTol
	if opts.Method == integrators.MethodRK4 && e.Samples() > 1 {
		// One output interval split into ten fixed steps.
		opts.InitialStep = e.cfg.Duration / float64(e.Samples()-1) / 10
	}
	if e.collector != nil {
		opts.Observer = e.collector.StepObserver(e.cfg.System)
	}
	return opts
}

// Run integrates the system over [0, Duration] at Samples() output times
// and evaluates the default metrics.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	log := e.log.With(logging.String("system", e.cfg.System))
	n := e.Samples()
	log.Debug(ctx, "integrating",
		logging.Float("duration", e.cfg.Duration),
		logging.Int("samples", n),
		logging.String("method", e.Options().Method))

	start := time.Now()
	tr, err := integrators.Integrate(ctx, e.sys, e.Span(), e.x0, n, e.Options())
	if err != nil {
		log.Error(ctx, "integration failed", logging.Err(err))
		return nil, err
	}
	elapsed := time.Since(start)

	res := &Result{
		Trajectory: tr,
		Metrics:    metrics.Evaluate(tr, metrics.Default(e.sys, e.entry.AngleSlots()...)...),
		Elapsed:    elapsed,
	}

	stats := tr.Stats()
	if e.collector != nil {
		e.collector.RecordRun(e.cfg.System, stats)
		if drift, ok := res.Metrics["energy_drift"]; ok {
			e.collector.EnergyDrift.WithLabelValues(e.cfg.System).Set(drift)
		}
	}
	log.Info(ctx, "integrated",
		logging.Int("samples", tr.Len()),
		logging.Int("evaluations", stats.Evaluations),
		logging.Int("accepted", stats.Accepted),
		logging.Int("rejected", stats.Rejected),
		logging.Any("elapsed", elapsed))
	return res, nil
}

// Metadata describes res for storage.
func (e *Experiment) Metadata(res *Result) storage.RunMetadata {
	var params map[string]float64
	if c, ok := e.sys.(dynamo.Configurable); ok {
		params = c.GetParams()
	}
	return storage.RunMetadata{
		System:     e.cfg.System,
		Integrator: e.Options().Method,
		Duration:   e.cfg.Duration,
		FPS:        e.cfg.FPS,
		RelTol:     e.cfg.RelTol,
		AbsTol:     e.cfg.AbsTol,
		Initial:    e.Initial(),
		Params:     params,
		Metrics:    res.Metrics,
	}
}

// Ensemble builds the perturbed ensemble described by the configuration.
func (e *Experiment) Ensemble() (*ensemble.Ensemble, error) {
	ec := e.cfg.Ensemble
	if ec.Index < 0 || ec.Index >= len(e.x0) {
		return nil, fmt.Errorf("%w: perturbed component %d of %d", dynamo.ErrDimensionMismatch, ec.Index, len(e.x0))
	}
	initials := ensemble.Perturb(e.x0, ec.Index, ec.Delta, ec.Members)
	return ensemble.New(e.sys, e.mapper, initials, render.PaletteByName(ec.Palette))
}

// RunEnsemble simulates the ensemble on the experiment's output grid.
func (e *Experiment) RunEnsemble(ctx context.Context) (*ensemble.Ensemble, error) {
	ens, err := e.Ensemble()
	if err != nil {
		return nil, err
	}
	log := e.log.With(logging.String("system", e.cfg.System), logging.Int("members", ens.Len()))
	start := time.Now()
	if err := ens.Simulate(ctx, e.Span(), e.Samples(), e.Options(), e.cfg.Ensemble.Workers); err != nil {
		log.Error(ctx, "ensemble failed", logging.Err(err))
		return nil, err
	}
	log.Info(ctx, "ensemble simulated", logging.Any("elapsed", time.Since(start)))
	return ens, nil
}
