package builtin

import (
	"sysflow/internal/behavior"
	"sysflow/internal/coflow"
	"sysflow/internal/model"
	"sysflow/internal/sim"
)

func init() {
	Register(Entry{
		Name:        "population-age",
		Description: "growing population with its average age tracked as a coflow",
		Defaults: map[string]float64{
			"initial_population": 1000,
			"initial_age":        30,
			"birth_rate":         0.05,
			"death_rate":         0.02,
		},
		Dt:       1,
		Duration: 100,
		Modes: []behavior.Mode{{
			Kind:       behavior.ExponentialGrowth,
			Name:       "net growth",
			Components: []string{"Population", "births", "deaths"},
		}},
		Build: buildPopulationAge,
	})
}

func buildPopulationAge(params map[string]float64, dt float64) (*sim.Simulation, error) {
	population := model.NewStock("Population", params["initial_population"]).WithUnit("people")

	ps := []*model.Parameter{
		model.NewParameter("birth_rate", params["birth_rate"]).WithUnit("1/year"),
		model.NewParameter("death_rate", params["death_rate"]).WithUnit("1/year"),
	}

	births := model.NewFlow("births", nil, population, func(s *model.State) float64 {
		return s.Param("birth_rate") * s.Stock("Population")
	}).WithInputs("birth_rate", "Population").WithUnit("people/year")

	deaths := model.NewFlow("deaths", population, nil, func(s *model.State) float64 {
		return s.Param("death_rate") * s.Stock("Population")
	}).WithInputs("death_rate", "Population").WithUnit("people/year")

	// Everyone gets one year older per year. Aging moves attribute without
	// moving people, so it is a free-standing flow feeding only the coflow.
	aging := model.NewFlow("aging", nil, nil, func(s *model.State) float64 {
		return s.Stock("Population")
	}).WithInputs("Population")

	ages := coflow.New("Total Age", population, "Average Age", params["initial_age"])
	ages.AddInflow(births, func(*model.State) float64 { return 0 }) // newborns
	ages.AddInflow(aging, func(*model.State) float64 { return 1 })
	ages.AddOutflow(deaths)

	s, err := sim.New(
		[]*model.Stock{population},
		[]*model.Flow{births, deaths, aging},
		nil,
		ps,
		dt,
	)
	if err != nil {
		return nil, err
	}
	if err := s.AddCoflow(ages); err != nil {
		return nil, err
	}
	return s, nil
}
