package config

import (
	"math"
	"sort"
)

// preset builds a Config from the defaults plus the given overrides.
func preset(system string, duration float64, initial []float64, mod func(*Config)) *Config {
	cfg := DefaultConfig()
	cfg.System = system
	cfg.Duration = duration
	cfg.Initial = initial
	if mod != nil {
		mod(cfg)
	}
	return cfg
}

var Presets = map[string]map[string]*Config{
	"pendulum": {
		"thirty": preset("pendulum", 10, []float64{Deg(30), 0}, nil),
		"small":  preset("pendulum", 10, []float64{Deg(2), 0}, nil),
		"large":  preset("pendulum", 20, []float64{2.5, 0}, nil),
		"spinning": preset("pendulum", 20, []float64{0.1, 8}, func(c *Config) {
			c.Params = map[string]float64{"damping": 0.05}
		}),
	},
	"spring_mass": {
		"drop": preset("spring_mass", 10, []float64{0, 0}, nil),
		"bounce": preset("spring_mass", 10, []float64{0.5, 0}, func(c *Config) {
			c.Params = map[string]float64{"stiffness": 20}
		}),
	},
	"double_pendulum": {
		"chaos":  preset("double_pendulum", 15, []float64{math.Pi / 2, 0, 0.001, 0}, nil),
		"gentle": preset("double_pendulum", 15, []float64{0.3, 0, 0.3, 0}, nil),
		"ensemble": preset("double_pendulum", 10, []float64{math.Pi / 3, 0, math.Pi / 2, 0}, func(c *Config) {
			c.Ensemble.Members = 1000
			c.Ensemble.Index = 2
			c.Ensemble.Delta = Deg(0.5)
		}),
	},
	"compound_pendulum": {
		"default": preset("compound_pendulum", 15, []float64{math.Pi / 3, 0, math.Pi / 2, 0}, nil),
		"ensemble": preset("compound_pendulum", 10, []float64{math.Pi / 3, 0, math.Pi / 2, 0}, func(c *Config) {
			c.Ensemble.Members = 1000
			c.Ensemble.Index = 2
			c.Ensemble.Delta = Deg(0.5)
			c.Ensemble.Palette = "rainbow"
		}),
	},
	"elastic_pendulum": {
		"default": preset("elastic_pendulum", 15, []float64{Deg(15), 0, 0.25, 0}, nil),
		"stiff": preset("elastic_pendulum", 15, []float64{Deg(15), 0, 0.25, 0}, func(c *Config) {
			c.Params = map[string]float64{"stiffness": 80}
		}),
	},
	"kapitza": {
		"inverted": preset("kapitza", 2, []float64{0.1, 0}, func(c *Config) {
			c.Speed = 1.0 / 20
		}),
		"falling": preset("kapitza", 2, []float64{0.1, 0}, func(c *Config) {
			c.Speed = 1.0 / 20
			c.Params = map[string]float64{"frequency": 2 * math.Pi * 5}
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(system, name string) *Config {
	systemPresets, ok := Presets[system]
	if !ok {
		return nil
	}
	cfg, ok := systemPresets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(system string) []string {
	systemPresets, ok := Presets[system]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(systemPresets))
	for name := range systemPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
