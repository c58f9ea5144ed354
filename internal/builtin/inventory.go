package builtin

import (
	"math"

	"sysflow/internal/behavior"
	"sysflow/internal/delay"
	"sysflow/internal/model"
	"sysflow/internal/sim"
	"sysflow/internal/table"
)

func init() {
	Register(Entry{
		Name:        "inventory",
		Description: "inventory management with demand forecasting and capacity pressure",
		Defaults: map[string]float64{
			"initial_inventory":  100,
			"desired_inventory":  100,
			"base_demand":        10,
			"step_height":        10,
			"step_time":          50,
			"seasonal_amplitude": 4,
			"seasonal_period":    20,
			"smoothing_time":     8,
		},
		Dt:       0.25,
		Duration: 100,
		Modes: []behavior.Mode{
			{
				Kind:       behavior.GoalSeeking,
				Name:       "stock correction",
				Components: []string{"Inventory", "production", "shipments"},
				Goal:       100,
			},
			{
				Kind:       behavior.Oscillation,
				Name:       "forecast lag",
				Components: []string{"expected demand", "production"},
			},
		},
		Build: buildInventory,
	})
}

// The pressure table maps the inventory coverage ratio to a production
// multiplier: produce harder when understocked, ease off when over.
var pressurePoints = struct{ xs, ys []float64 }{
	xs: []float64{0, 0.5, 1, 1.5, 2},
	ys: []float64{2, 1.5, 1, 0.75, 0.6},
}

func buildInventory(params map[string]float64, dt float64) (*sim.Simulation, error) {
	inventory := model.NewStock("Inventory", params["initial_inventory"]).WithUnit("items")

	ps := []*model.Parameter{
		model.NewParameter("desired_inventory", params["desired_inventory"]).WithUnit("items"),
	}

	base := params["base_demand"]
	step := params["step_height"]
	stepAt := params["step_time"]
	amp := params["seasonal_amplitude"]
	period := params["seasonal_period"]

	demand := model.NewAuxiliary("demand", func(s *model.State) float64 {
		d := base + amp*math.Sin(2*math.Pi*s.Time()/period)
		if s.Time() >= stepAt {
			d += step
		}
		return d
	})

	pressure, err := table.New("pressure", pressurePoints.xs, pressurePoints.ys)
	if err != nil {
		return nil, err
	}

	production := model.NewFlow("production", nil, inventory, func(s *model.State) float64 {
		coverage := s.Stock("Inventory") / s.Param("desired_inventory")
		return s.Delay("expected demand") * pressure.Lookup(coverage)
	}).WithInputs("Inventory", "expected demand").WithUnit("items/day")

	shipments := model.NewFlow("shipments", inventory, nil, func(s *model.State) float64 {
		return s.Aux("demand")
	}).WithInputs("demand").WithUnit("items/day")

	s, err := sim.New(
		[]*model.Stock{inventory},
		[]*model.Flow{production, shipments},
		[]*model.Auxiliary{demand},
		ps,
		dt,
	)
	if err != nil {
		return nil, err
	}

	forecast, err := delay.NewInformation("expected demand", params["smoothing_time"], base, 1)
	if err != nil {
		return nil, err
	}
	if err := s.AddDelay(forecast, func(st *model.State) float64 {
		return st.Aux("demand")
	}); err != nil {
		return nil, err
	}
	return s, nil
}
