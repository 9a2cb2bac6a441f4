package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/lagrange/internal/dynamo"
	"github.com/san-kum/lagrange/internal/physics"
	"github.com/san-kum/lagrange/internal/render"
)

const (
	DefaultFPS      = 30.0
	DefaultSpeed    = 1.0
	DefaultDuration = 10.0
	DefaultRelTol   = 1e-9
	DefaultAbsTol   = 1e-10
	DefaultWidth    = 480
	DefaultPad      = 0.15
	DefaultMembers  = 1000
)

type Config struct {
	System     string  `yaml:"system"`
	Integrator string  `yaml:"integrator"`
	Duration   float64 `yaml:"duration"`
	FPS        float64 `yaml:"fps"`
	Speed      float64 `yaml:"speed"`
	RelTol     float64 `yaml:"rel_tol"`
	AbsTol     float64 `yaml:"abs_tol"`

	// SingularTol fails integration when a mass-matrix denominator falls
	// below it. Zero disables the check.
	SingularTol float64 `yaml:"singular_tol,omitempty"`

	Initial  []float64          `yaml:"initial,omitempty"`
	Params   map[string]float64 `yaml:"params,omitempty"`
	Render   RenderConfig       `yaml:"render"`
	Ensemble EnsembleConfig     `yaml:"ensemble"`
}

type RenderConfig struct {
	Width int     `yaml:"width"`
	Pad   float64 `yaml:"pad"`
	Color string  `yaml:"color,omitempty"`
	Trail int     `yaml:"trail"`
	// Panel is what animation frames show: mechanism (default), timeseries,
	// phase or dashboard.
	Panel string `yaml:"panel,omitempty"`
}

// EnsembleConfig perturbs component Index of the initial state by
// Delta·i/Members for member i.
type EnsembleConfig struct {
	Members int     `yaml:"members"`
	Index   int     `yaml:"index"`
	Delta   float64 `yaml:"delta"`
	Palette string  `yaml:"palette"`
	Workers int     `yaml:"workers"`
}

func DefaultConfig() *Config {
	return &Config{
		System:     "pendulum",
		Integrator: "rk45",
		Duration:   DefaultDuration,
		FPS:        DefaultFPS,
		Speed:      DefaultSpeed,
		RelTol:     DefaultRelTol,
		AbsTol:     DefaultAbsTol,
		Render: RenderConfig{
			Width: DefaultWidth,
			Pad:   DefaultPad,
		},
		Ensemble: EnsembleConfig{
			Members: DefaultMembers,
			Index:   2,
			Delta:   Deg(0.5),
			Palette: "greens",
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.Duration <= 0:
		return fmt.Errorf("%w: duration %g", dynamo.ErrInvalidSpan, c.Duration)
	case c.FPS <= 0 || c.Speed <= 0:
		return fmt.Errorf("%w: fps %g speed %g", dynamo.ErrInvalidSamples, c.FPS, c.Speed)
	case c.RelTol < 0 || c.AbsTol < 0 || (c.RelTol == 0 && c.AbsTol == 0):
		return fmt.Errorf("%w: tolerances rel %g abs %g", dynamo.ErrParameterBounds, c.RelTol, c.AbsTol)
	case c.SingularTol < 0:
		return fmt.Errorf("%w: singular tolerance %g", dynamo.ErrParameterBounds, c.SingularTol)
	case c.Ensemble.Members < 0:
		return fmt.Errorf("%w: ensemble members %d", dynamo.ErrInvalidSamples, c.Ensemble.Members)
	}
	if _, err := render.ParsePanel(c.Render.Panel); err != nil {
		return fmt.Errorf("%w: %v", dynamo.ErrParameterBounds, err)
	}
	return nil
}

// InitialState returns the configured initial state, or the system's own
// default when none is set.
func (c *Config) InitialState(sys dynamo.System) (dynamo.State, error) {
	if len(c.Initial) == 0 {
		if init, ok := sys.(dynamo.Initializer); ok {
			return init.DefaultState(), nil
		}
		return make(dynamo.State, sys.StateDim()), nil
	}
	if len(c.Initial) != sys.StateDim() {
		return nil, fmt.Errorf("%w: initial state has %d values, %s needs %d",
			dynamo.ErrDimensionMismatch, len(c.Initial), c.System, sys.StateDim())
	}
	x0 := make(dynamo.State, len(c.Initial))
	copy(x0, c.Initial)
	return x0, nil
}

// ApplyParams sets every configured parameter on sys in name order.
func (c *Config) ApplyParams(sys dynamo.System) error {
	if len(c.Params) == 0 {
		return nil
	}
	cfg, ok := sys.(dynamo.Configurable)
	if !ok {
		return fmt.Errorf("%s has no tunable parameters", c.System)
	}
	for _, name := range physics.ParamNames(c.Params) {
		if err := cfg.SetParam(name, c.Params[name]); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.Initial != nil {
		out.Initial = append([]float64(nil), c.Initial...)
	}
	if c.Params != nil {
		out.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	return &out
}

// Deg converts degrees to radians.
func Deg(d float64) float64 {
	return d * math.Pi / 180
}
