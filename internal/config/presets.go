package config

import (
	"sort"

	"github.com/san-kum/seirsim/internal/models"
)

var Presets = map[string]*Config{
	"baseline": {
		Duration: 180, Substeps: 10,
		Initial: InitialConfig{S0: 0.99, I0: 0.01},
		Params:  models.Params{Beta: 0.5, Rho: 5.0, Gamma: 7.0},
	},
	"fast-outbreak": {
		Duration: 120, Substeps: 20,
		Initial: InitialConfig{S0: 0.999, I0: 0.001},
		Params:  models.Params{Beta: 1.2, Rho: 3.0, Gamma: 4.0},
	},
	"slow-burn": {
		Duration: 365, Substeps: 10,
		Initial: InitialConfig{S0: 0.999, I0: 0.001},
		Params:  models.Params{Beta: 0.25, Rho: 5.1, Gamma: 5.0},
	},
	// one step per day overshoots and freezes the trajectory.
	"coarse": {
		Duration: 30, Substeps: 1,
		Initial: InitialConfig{S0: 0.9, I0: 0.1},
		Params:  models.Params{Beta: 5.0, Rho: 1.0, Gamma: 10.0},
	},
}

// GetPreset returns a copy of the named preset, or nil if it does not exist.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *p
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
