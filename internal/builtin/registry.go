// Package builtin ships ready-made models: small, well-known structures
// that exercise every part of the engine and give the CLI something to
// run out of the box.
package builtin

import (
	"errors"
	"fmt"
	"sort"

	"sysflow/internal/behavior"
	"sysflow/internal/sim"
)

// ErrUnknownModel marks lookups of names the registry does not hold.
var ErrUnknownModel = errors.New("unknown model")

// BuildFunc assembles a fresh simulation from a fully merged parameter
// set and the timestep to run at. Every call returns independent
// entities.
type BuildFunc func(params map[string]float64, dt float64) (*sim.Simulation, error)

// Entry describes one registered model.
type Entry struct {
	Name        string
	Description string
	Defaults    map[string]float64
	Dt          float64
	Duration    float64
	Modes       []behavior.Mode
	Build       BuildFunc
}

var registry = map[string]Entry{}

// Register adds a model to the registry. Panics on duplicates; models
// register from init functions and a clash is a programming error.
func Register(e Entry) {
	if _, dup := registry[e.Name]; dup {
		panic(fmt.Sprintf("builtin: duplicate model %q", e.Name))
	}
	registry[e.Name] = e
}

// Get returns the registry entry for name.
func Get(name string) (Entry, error) {
	e, ok := registry[name]
	if !ok {
		return Entry{}, fmt.Errorf("%q: %w", name, ErrUnknownModel)
	}
	return e, nil
}

// Names lists the registered models in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Build assembles the named model at its default timestep, with
// overrides merged over its default parameters. Overriding a parameter
// the model does not define is an error, catching typos before a
// silently default run.
func Build(name string, overrides map[string]float64) (*sim.Simulation, error) {
	e, err := Get(name)
	if err != nil {
		return nil, err
	}
	return build(e, overrides, e.Dt)
}

// BuildAt is Build with an explicit timestep. The simulation engine
// rejects non-positive values.
func BuildAt(name string, overrides map[string]float64, dt float64) (*sim.Simulation, error) {
	e, err := Get(name)
	if err != nil {
		return nil, err
	}
	return build(e, overrides, dt)
}

func build(e Entry, overrides map[string]float64, dt float64) (*sim.Simulation, error) {
	params := make(map[string]float64, len(e.Defaults))
	for k, v := range e.Defaults {
		params[k] = v
	}
	for k, v := range overrides {
		if _, ok := params[k]; !ok {
			return nil, fmt.Errorf("model %q has no parameter %q: %w", e.Name, k, ErrUnknownModel)
		}
		params[k] = v
	}
	return e.Build(params, dt)
}
