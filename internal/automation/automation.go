package automation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/lagrange/internal/analysis"
	"github.com/san-kum/lagrange/internal/config"
	"github.com/san-kum/lagrange/internal/dynamo"
	"github.com/san-kum/lagrange/internal/experiment"
	"github.com/san-kum/lagrange/internal/logging"
	"github.com/san-kum/lagrange/internal/metrics"
	"github.com/san-kum/lagrange/internal/storage"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from Preset ("system/name") when set, otherwise from
// the defaults for System, then applies the remaining non-zero fields.
type ScenarioStep struct {
	Preset     string             `yaml:"preset"`
	System     string             `yaml:"system"`
	Integrator string             `yaml:"integrator"`
	Duration   float64            `yaml:"duration"`
	FPS        float64            `yaml:"fps"`
	Speed      float64            `yaml:"speed"`
	Initial    []float64          `yaml:"initial"`
	Params     map[string]float64 `yaml:"params"`

	// Save stores the run; Output additionally renders it (.gif, .mp4,
	// image extension for a still of the first sample).
	Save   bool   `yaml:"save"`
	Output string `yaml:"output"`
}

type StepResult struct {
	Step   int
	System string
	RunID  string
	Output string
	Result *experiment.Result
}

// Runner executes scenarios. Store, Collector and Logger are optional.
type Runner struct {
	Registry  *experiment.Registry
	Store     *storage.Store
	Collector *metrics.Collector
	Logger    logging.Logger

	// BaseDir resolves relative Output paths.
	BaseDir string
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s: no steps", path)
	}
	return &scenario, nil
}

// Config resolves a step into a full configuration.
func (s ScenarioStep) Config() (*config.Config, error) {
	var cfg *config.Config
	if s.Preset != "" {
		system, name, ok := strings.Cut(s.Preset, "/")
		if !ok {
			return nil, fmt.Errorf("preset %q: want system/name", s.Preset)
		}
		if cfg = config.GetPreset(system, name); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	if s.System != "" {
		if s.Preset != "" && s.System != cfg.System {
			return nil, fmt.Errorf("preset %s is for %s, step says %s", s.Preset, cfg.System, s.System)
		}
		cfg.System = s.System
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.FPS > 0 {
		cfg.FPS = s.FPS
	}
	if s.Speed > 0 {
		cfg.Speed = s.Speed
	}
	if len(s.Initial) > 0 {
		cfg.Initial = append([]float64(nil), s.Initial...)
	}
	for k, v := range s.Params {
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64)
		}
		cfg.Params[k] = v
	}
	return cfg, cfg.Validate()
}

func (r *Runner) options() []experiment.Option {
	var opts []experiment.Option
	if r.Logger != nil {
		opts = append(opts, experiment.WithLogger(r.Logger))
	}
	if r.Collector != nil {
		opts = append(opts, experiment.WithCollector(r.Collector))
	}
	return opts
}

func (r *Runner) logger() logging.Logger {
	if r.Logger == nil {
		return logging.Noop()
	}
	return r.Logger
}

// Run executes every step in order and stops at the first failure,
// returning the results of the steps that completed.
func (r *Runner) Run(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))
	log := r.logger().With(logging.String("scenario", scenario.Name))

	for i, step := range scenario.Steps {
		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		log.Info(ctx, "running step",
			logging.Int("step", i+1),
			logging.Int("of", len(scenario.Steps)),
			logging.String("system", cfg.System))

		exp, err := experiment.New(r.Registry, cfg, r.options()...)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: i + 1, System: cfg.System, Result: res}
		if step.Save && r.Store != nil {
			if sr.RunID, err = r.Store.Save(exp.Metadata(res), res.Trajectory); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		if step.Output != "" {
			sr.Output = step.Output
			if !filepath.IsAbs(sr.Output) && r.BaseDir != "" {
				sr.Output = filepath.Join(r.BaseDir, sr.Output)
			}
			if err := writeOutput(ctx, exp, res.Trajectory, sr.Output); err != nil {
				return results, fmt.Errorf("step %d output: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

func writeOutput(ctx context.Context, exp *experiment.Experiment, tr *dynamo.Trajectory, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".svg", ".pdf":
		return exp.Still(tr, 0, path)
	}
	return exp.Animate(ctx, tr, path, nil)
}

// ParameterSweep runs one system for evenly spaced values of a parameter.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

type SweepResult struct {
	ParamValue float64
	FinalState dynamo.State
	MaxEnergy  float64
	MinEnergy  float64

	// Period of the first component, zero when it does not oscillate.
	Period float64
}

func (r *Runner) Sweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("%w: sweep needs at least 2 steps", dynamo.ErrInvalidSamples)
	}
	log := r.logger().With(logging.String("param", sweep.ParamName))
	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := sweep.Base.Clone()
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64)
		}
		cfg.Params[sweep.ParamName] = paramVal

		exp, err := experiment.New(r.Registry, cfg, r.options()...)
		if err != nil {
			return nil, err
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}

		tr := res.Trajectory
		sr := SweepResult{ParamValue: paramVal, FinalState: tr.State(tr.Len() - 1)}
		if h, ok := exp.System().(dynamo.Hamiltonian); ok {
			sr.MinEnergy, sr.MaxEnergy = h.Energy(tr.State(0)), h.Energy(tr.State(0))
			tr.Each(func(_ int, _ float64, x dynamo.State) {
				e := h.Energy(x)
				sr.MinEnergy, sr.MaxEnergy = min(sr.MinEnergy, e), max(sr.MaxEnergy, e)
			})
		}
		if p, err := analysis.Period(tr, 0); err == nil {
			sr.Period = p
		}
		results = append(results, sr)

		log.Debug(ctx, "sweep step",
			logging.Int("step", i+1),
			logging.Float("value", paramVal),
			logging.Float("period", sr.Period))
	}

	return results, nil
}
