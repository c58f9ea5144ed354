package builtin

import (
	"sysflow/internal/behavior"
	"sysflow/internal/model"
	"sysflow/internal/sim"
)

func init() {
	Register(Entry{
		Name:        "sir",
		Description: "SIR epidemic: susceptible, infected, recovered",
		Defaults: map[string]float64{
			"susceptible":      9999,
			"infected":         1,
			"recovered":        0,
			"contact_rate":     6.0,
			"infectivity":      0.25,
			"recovery_rate":    0.5,
			"total_population": 10000,
		},
		Dt:       0.1,
		Duration: 30,
		Modes: []behavior.Mode{
			{
				Kind:       behavior.SShapedGrowth,
				Name:       "epidemic wave",
				Components: []string{"Recovered", "infection", "recovery"},
				Capacity:   10000,
			},
			{
				Kind:       behavior.OvershootAndCollapse,
				Name:       "infected peak",
				Components: []string{"Infected"},
			},
		},
		Build: buildEpidemic,
	})
}

func buildEpidemic(params map[string]float64, dt float64) (*sim.Simulation, error) {
	susceptible := model.NewStock("Susceptible", params["susceptible"]).WithUnit("people")
	infected := model.NewStock("Infected", params["infected"]).WithUnit("people")
	recovered := model.NewStock("Recovered", params["recovered"]).WithUnit("people")

	ps := []*model.Parameter{
		model.NewParameter("contact_rate", params["contact_rate"]).WithUnit("1/day"),
		model.NewParameter("infectivity", params["infectivity"]),
		model.NewParameter("recovery_rate", params["recovery_rate"]).WithUnit("1/day"),
		model.NewParameter("total_population", params["total_population"]).WithUnit("people"),
	}

	infection := model.NewFlow("infection", susceptible, infected, func(s *model.State) float64 {
		return s.Stock("Susceptible") * s.Param("contact_rate") * s.Param("infectivity") *
			s.Stock("Infected") / s.Param("total_population")
	}).WithInputs("Susceptible", "Infected").WithUnit("people/day")

	recovery := model.NewFlow("recovery", infected, recovered, func(s *model.State) float64 {
		return s.Stock("Infected") * s.Param("recovery_rate")
	}).WithInputs("Infected").WithUnit("people/day")

	return sim.New(
		[]*model.Stock{susceptible, infected, recovered},
		[]*model.Flow{infection, recovery},
		nil,
		ps,
		dt,
	)
}
