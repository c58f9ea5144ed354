package config

import "sort"

var Presets = map[string]map[string]*Config{
	"decay": {
		"slow": {
			Model: "decay", Dt: 1, Duration: 100,
			Params: map[string]float64{"decay_rate": 0.02},
		},
		"fast": {
			Model: "decay", Dt: 0.5, Duration: 20,
			Params: map[string]float64{"decay_rate": 0.3},
		},
	},
	"sir": {
		"baseline": {
			Model: "sir", Dt: 0.1, Duration: 30,
		},
		"mild": {
			Model: "sir", Dt: 0.1, Duration: 60,
			Params: map[string]float64{"infectivity": 0.1},
		},
		"lockdown": {
			Model: "sir", Dt: 0.1, Duration: 90,
			Params: map[string]float64{"contact_rate": 2.0},
		},
	},
	"inventory": {
		"steady": {
			Model: "inventory", Dt: 0.25, Duration: 100,
			Params: map[string]float64{"step_height": 0, "seasonal_amplitude": 0},
		},
		"shock": {
			Model: "inventory", Dt: 0.25, Duration: 150,
			Params: map[string]float64{"step_height": 25, "step_time": 40},
		},
		"seasonal": {
			Model: "inventory", Dt: 0.25, Duration: 120,
			Params: map[string]float64{"step_height": 0, "seasonal_amplitude": 8},
		},
	},
	"population-age": {
		"growing": {
			Model: "population-age", Dt: 1, Duration: 100,
		},
		"shrinking": {
			Model: "population-age", Dt: 1, Duration: 100,
			Params: map[string]float64{"birth_rate": 0.01, "death_rate": 0.03},
		},
	},
	"shipping": {
		"burst": {
			Model: "shipping", Dt: 0.5, Duration: 60,
		},
		"slow-boat": {
			Model: "shipping", Dt: 0.5, Duration: 120,
			Params: map[string]float64{"transit_time": 20},
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
