package builtin

import (
	"sysflow/internal/behavior"
	"sysflow/internal/delay"
	"sysflow/internal/model"
	"sysflow/internal/sim"
)

func init() {
	Register(Entry{
		Name:        "shipping",
		Description: "orders through a production pipeline and fixed transit lag",
		Defaults: map[string]float64{
			"order_volume":    20,
			"order_time":      5,
			"production_time": 6,
			"transit_time":    4,
		},
		Dt:       0.5,
		Duration: 60,
		Modes: []behavior.Mode{{
			Kind:       behavior.GoalSeeking,
			Name:       "pipeline fill",
			Components: []string{"production", "transit", "arrivals"},
		}},
		Build: buildShipping,
	})
}

func buildShipping(params map[string]float64, dt float64) (*sim.Simulation, error) {
	warehouse := model.NewStock("Warehouse", 0).WithUnit("items")

	volume := params["order_volume"]
	orderAt := params["order_time"]
	orders := model.NewAuxiliary("orders", func(s *model.State) float64 {
		if s.Time() >= orderAt {
			return volume
		}
		return 0
	})

	arrivals := model.NewFlow("arrivals", nil, warehouse, func(s *model.State) float64 {
		return s.Delay("transit")
	}).WithInputs("transit").WithUnit("items/day")

	s, err := sim.New(
		[]*model.Stock{warehouse},
		[]*model.Flow{arrivals},
		[]*model.Auxiliary{orders},
		nil,
		dt,
	)
	if err != nil {
		return nil, err
	}

	production, err := delay.NewMaterial("production", params["production_time"], 0, 3)
	if err != nil {
		return nil, err
	}
	transit, err := delay.NewFixed("transit", params["transit_time"], 0, dt)
	if err != nil {
		return nil, err
	}

	if err := s.AddDelay(production, func(st *model.State) float64 {
		return st.Aux("orders")
	}); err != nil {
		return nil, err
	}
	if err := s.AddDelay(transit, func(st *model.State) float64 {
		return st.Delay("production")
	}); err != nil {
		return nil, err
	}
	return s, nil
}
