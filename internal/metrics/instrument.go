package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/san-kum/lagrange/internal/dynamo"
)

// Collector bundles the Prometheus metrics for integration and rendering.
// A batch CLI has no scrape endpoint, so results are written to a textfile
// for node_exporter's textfile collector.
type Collector struct {
	gatherer prometheus.Gatherer

	Steps       *prometheus.CounterVec
	Evaluations *prometheus.CounterVec
	StepSize    *prometheus.HistogramVec
	Frames      *prometheus.CounterVec
	EnergyDrift *prometheus.GaugeVec
}

// NewCollector registers the metrics against reg, or a fresh registry when
// reg is nil.
func NewCollector(reg *prometheus.Registry) (*Collector, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	steps, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lagrange_integrator_steps_total",
		Help: "Integrator steps attempted, labeled by system and outcome.",
	}, []string{"system", "outcome"}), "lagrange_integrator_steps_total")
	if err != nil {
		return nil, err
	}

	evals, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lagrange_rhs_evaluations_total",
		Help: "Equation of motion evaluations, labeled by system.",
	}, []string{"system"}), "lagrange_rhs_evaluations_total")
	if err != nil {
		return nil, err
	}

	stepSize, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lagrange_step_size_seconds",
		Help:    "Accepted integrator step sizes in simulated seconds.",
		Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
	}, []string{"system"}), "lagrange_step_size_seconds")
	if err != nil {
		return nil, err
	}

	frames, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lagrange_frames_rendered_total",
		Help: "Frames handed to an encoder, labeled by output kind.",
	}, []string{"output"}), "lagrange_frames_rendered_total")
	if err != nil {
		return nil, err
	}

	drift, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lagrange_energy_drift_ratio",
		Help: "Maximum relative energy drift of the last run, labeled by system.",
	}, []string{"system"}), "lagrange_energy_drift_ratio")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:    reg,
		Steps:       steps,
		Evaluations: evals,
		StepSize:    stepSize,
		Frames:      frames,
		EnergyDrift: drift,
	}, nil
}

// StepObserver returns an integrator observer that counts steps for system.
func (c *Collector) StepObserver(system string) *StepObserver {
	return &StepObserver{
		accepted: c.Steps.WithLabelValues(system, "accepted"),
		rejected: c.Steps.WithLabelValues(system, "rejected"),
		size:     c.StepSize.WithLabelValues(system),
	}
}

// RecordRun adds a finished trajectory's evaluation count.
func (c *Collector) RecordRun(system string, stats dynamo.Stats) {
	c.Evaluations.WithLabelValues(system).Add(float64(stats.Evaluations))
}

// FrameCounter returns a callback suitable for render.AnimateOptions.OnFrame.
func (c *Collector) FrameCounter(output string) func(int) {
	ctr := c.Frames.WithLabelValues(output)
	return func(int) { ctr.Inc() }
}

func (c *Collector) Gatherer() prometheus.Gatherer {
	return c.gatherer
}

// WriteTextfile writes the current values in the Prometheus text format.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.gatherer); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

type StepObserver struct {
	accepted prometheus.Counter
	rejected prometheus.Counter
	size     prometheus.Observer
}

func (o *StepObserver) OnStep(t, dt float64, accepted bool) {
	if !accepted {
		o.rejected.Inc()
		return
	}
	o.accepted.Inc()
	o.size.Observe(dt)
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
