package builtin

import (
	"sysflow/internal/behavior"
	"sysflow/internal/model"
	"sysflow/internal/sim"
)

func init() {
	Register(Entry{
		Name:        "decay",
		Description: "first-order exponential decay of a single stock",
		Defaults: map[string]float64{
			"initial":    100,
			"decay_rate": 0.1,
		},
		Dt:       1,
		Duration: 50,
		Modes: []behavior.Mode{{
			Kind:       behavior.ExponentialDecay,
			Name:       "draining",
			Components: []string{"Material", "outflow"},
		}},
		Build: buildDecay,
	})
}

func buildDecay(params map[string]float64, dt float64) (*sim.Simulation, error) {
	material := model.NewStock("Material", params["initial"]).WithUnit("units")
	rate := model.NewParameter("decay_rate", params["decay_rate"]).
		WithUnit("1/day")

	outflow := model.NewFlow("outflow", material, nil, func(s *model.State) float64 {
		return s.Param("decay_rate") * s.Stock("Material")
	}).WithInputs("decay_rate", "Material").WithUnit("units/day")

	return sim.New(
		[]*model.Stock{material},
		[]*model.Flow{outflow},
		nil,
		[]*model.Parameter{rate},
		dt,
	)
}
