package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"sysflow/internal/coflow"
	"sysflow/internal/delay"
	"sysflow/internal/model"
)

func mustNew(t *testing.T, stocks []*model.Stock, flows []*model.Flow, auxes []*model.Auxiliary, params []*model.Parameter, dt float64) *Simulation {
	t.Helper()
	s, err := New(stocks, flows, auxes, params, dt)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return s
}

func TestEulerGrowthClosedForm(t *testing.T) {
	// One stock, one inflow rate = value*r: forward Euler gives exactly
	// value(T) = value(0) * (1+r*h)^T, computed step by step.
	r, h := 0.07, 0.25
	v0 := 13.5
	steps := 40

	stock := model.NewStock("V", v0)
	model.NewFlow("growth", nil, stock, func(s *model.State) float64 {
		return s.Stock("V") * r
	})
	sim := mustNew(t, []*model.Stock{stock}, stock.Inflows(), nil, nil, h)

	want := v0
	for i := 0; i < steps; i++ {
		if err := sim.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		want += want * r * h
		if stock.Value() != want {
			t.Fatalf("step %d: value = %v, want %v (bit-exact Euler)", i, stock.Value(), want)
		}
	}

	closed := v0 * math.Pow(1+r*h, float64(steps))
	if math.Abs(stock.Value()-closed) > 1e-9*closed {
		t.Errorf("final value = %v, closed form %v", stock.Value(), closed)
	}
}

func TestDecayScenario(t *testing.T) {
	// S=100 with outflow 0.1*S, dt=1, 10 steps: 100 * 0.9^10.
	s := model.NewStock("S", 100)
	model.NewFlow("decay", s, nil, func(st *model.State) float64 {
		return 0.1 * st.Stock("S")
	})
	sim := mustNew(t, []*model.Stock{s}, s.Outflows(), nil, nil, 1.0)

	if err := sim.Run(10); err != nil {
		t.Fatal(err)
	}

	want := 100 * math.Pow(0.9, 10)
	if math.Abs(s.Value()-want) > 1e-9 {
		t.Errorf("S = %v, want %v", s.Value(), want)
	}
	if sim.Results().Len() != 10 {
		t.Errorf("recorded %d rows, want 10", sim.Results().Len())
	}
}

func TestEpidemicOneStep(t *testing.T) {
	susceptible := model.NewStock("Susceptible", 999)
	infected := model.NewStock("Infected", 1)
	model.NewFlow("infection", susceptible, infected, func(s *model.State) float64 {
		return 0.3 * s.Stock("Susceptible") * s.Stock("Infected") / 1000
	})
	sim := mustNew(t, []*model.Stock{susceptible, infected}, susceptible.Outflows(), nil, nil, 0.1)

	if err := sim.Step(); err != nil {
		t.Fatal(err)
	}

	delta := 0.3 * 999 * 1 / 1000.0 * 0.1
	if got, want := susceptible.Value(), 999-delta; got != want {
		t.Errorf("Susceptible = %v, want %v", got, want)
	}
	if got, want := infected.Value(), 1+delta; got != want {
		t.Errorf("Infected = %v, want %v", got, want)
	}
}

func TestSynchronousStockUpdates(t *testing.T) {
	// Two stocks swapping contents at each other's current level. With
	// synchronous integration both rates read pre-update values: any
	// ordering artifact would leave different results.
	a := model.NewStock("A", 1)
	b := model.NewStock("B", 2)
	f1 := model.NewFlow("a-to-b", a, b, func(s *model.State) float64 {
		return s.Stock("A")
	})
	f2 := model.NewFlow("b-to-a", b, a, func(s *model.State) float64 {
		return s.Stock("B")
	})
	sim := mustNew(t, []*model.Stock{a, b}, []*model.Flow{f1, f2}, nil, nil, 1.0)

	if err := sim.Step(); err != nil {
		t.Fatal(err)
	}

	// A' = 1 + (2-1), B' = 2 + (1-2).
	if a.Value() != 2 || b.Value() != 1 {
		t.Errorf("after step A=%v B=%v, want A=2 B=1", a.Value(), b.Value())
	}
}

func TestAuxiliariesPrecedeFlows(t *testing.T) {
	s := model.NewStock("S", 10)
	double := model.NewAuxiliary("double", func(st *model.State) float64 {
		return 2 * st.Stock("S")
	}, "S")
	model.NewFlow("fill", nil, s, func(st *model.State) float64 {
		return st.Aux("double") // must see this step's value
	})
	sim := mustNew(t, []*model.Stock{s}, s.Inflows(), []*model.Auxiliary{double}, nil, 1.0)

	if err := sim.Step(); err != nil {
		t.Fatal(err)
	}
	if s.Value() != 30 { // 10 + 2*10
		t.Errorf("S = %v, want 30", s.Value())
	}
}

func TestAuxRegistrationOrderStaleRead(t *testing.T) {
	// "second" is registered before "first" but reads it, so it sees the
	// previous step's value. Documented footgun: registration order, not
	// dependency order.
	s := model.NewStock("S", 1)
	second := model.NewAuxiliary("second", func(st *model.State) float64 {
		return st.Aux("first") + 100
	}, "first")
	first := model.NewAuxiliary("first", func(st *model.State) float64 {
		return st.Stock("S")
	}, "S")
	model.NewFlow("grow", nil, s, func(st *model.State) float64 {
		return 1
	})
	sim := mustNew(t, []*model.Stock{s}, s.Inflows(), []*model.Auxiliary{second, first}, nil, 1.0)

	if err := sim.Step(); err != nil {
		t.Fatal(err)
	}
	// Step 1: "second" reads the zero-valued, never-calculated "first".
	if v, _ := sim.Results().Value(0, "second"); v != 100 {
		t.Errorf("step 1 second = %v, want stale 100", v)
	}

	if err := sim.Step(); err != nil {
		t.Fatal(err)
	}
	// Step 2: "second" reads first's step-1 value (S was 1 back then).
	if v, _ := sim.Results().Value(1, "second"); v != 101 {
		t.Errorf("step 2 second = %v, want stale 101", v)
	}
}

func TestRunTruncatesFractionalSteps(t *testing.T) {
	tests := []struct {
		duration float64
		want     int
	}{
		{1.0, 10},
		{1.05, 10},
		{0.95, 9},
		{0.05, 0},
		{0, 0},
	}

	for _, tt := range tests {
		s := model.NewStock("S", 1)
		sim := mustNew(t, []*model.Stock{s}, nil, nil, nil, 0.1)
		if err := sim.Run(tt.duration); err != nil {
			t.Fatalf("Run(%v): %v", tt.duration, err)
		}
		if sim.StepCount() != tt.want {
			t.Errorf("Run(%v) executed %d steps, want %d", tt.duration, sim.StepCount(), tt.want)
		}
	}
}

func TestInvalidConstruction(t *testing.T) {
	s := model.NewStock("S", 1)

	if _, err := New([]*model.Stock{s}, nil, nil, nil, 0); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("zero dt: err = %v, want ErrInvalidConfig", err)
	}
	if _, err := New([]*model.Stock{s}, nil, nil, nil, -0.1); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("negative dt: err = %v, want ErrInvalidConfig", err)
	}

	dup := []*model.Stock{model.NewStock("X", 0), model.NewStock("X", 1)}
	if _, err := New(dup, nil, nil, nil, 1); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("duplicate stocks: err = %v, want ErrInvalidConfig", err)
	}
}

func TestNameCollisionAcrossCategories(t *testing.T) {
	// A stock and a flow sharing a name would shadow each other in state
	// lookups and collapse into one results column.
	water := model.NewStock("water", 100)
	model.NewFlow("water", nil, water, func(*model.State) float64 { return 5 })
	if _, err := New([]*model.Stock{water}, water.Inflows(), nil, nil, 1); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("stock/flow name clash: err = %v, want ErrInvalidConfig", err)
	}

	// Delay lines join the same namespace.
	tank := model.NewStock("Tank", 0)
	sim := mustNew(t, []*model.Stock{tank}, nil, nil, nil, 1)
	line, err := delay.NewFixed("Tank", 2, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := sim.AddDelay(line, func(*model.State) float64 { return 0 }); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("delay named after a stock: err = %v, want ErrInvalidConfig", err)
	}

	// So do both coflow columns, the attribute stock and its derived
	// concentration.
	level := model.NewStock("Level", 1)
	aux := model.NewAuxiliary("Grade concentration", func(*model.State) float64 { return 0 })
	sim2 := mustNew(t, []*model.Stock{level}, nil, []*model.Auxiliary{aux}, nil, 1)
	if err := sim2.AddCoflow(coflow.New("Grade", level, "Purity", 0)); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("coflow column clash: err = %v, want ErrInvalidConfig", err)
	}
}

func TestComputeErrorOnUnknownName(t *testing.T) {
	s := model.NewStock("S", 1)
	bad := model.NewAuxiliary("bad", func(st *model.State) float64 {
		return st.Stock("Missing")
	})
	sim := mustNew(t, []*model.Stock{s}, nil, []*model.Auxiliary{bad}, nil, 1.0)

	err := sim.Step()
	var ce *ComputeError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want ComputeError", err)
	}
	if ce.Entity != "bad" || ce.Step != 0 {
		t.Errorf("ComputeError = %+v, want entity %q step 0", ce, "bad")
	}
}

func TestComputeErrorOnNonFiniteRate(t *testing.T) {
	empty := model.NewStock("Empty", 0)
	s := model.NewStock("S", 10)
	model.NewFlow("drain", s, nil, func(st *model.State) float64 {
		return 1 / st.Stock("Empty") // division by a zero stock
	})
	sim := mustNew(t, []*model.Stock{empty, s}, s.Outflows(), nil, nil, 1.0)

	if err := sim.Run(5); err == nil {
		t.Fatal("expected computation error")
	}
	// The failed step must not have touched history or the stocks.
	if sim.Results().Len() != 0 {
		t.Errorf("history has %d rows after failed first step, want 0", sim.Results().Len())
	}
	if s.Value() != 10 {
		t.Errorf("stock mutated by failed step: %v", s.Value())
	}
}

func TestRunContextCancellation(t *testing.T) {
	s := model.NewStock("S", 1)
	sim := mustNew(t, []*model.Stock{s}, nil, nil, nil, 0.001)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sim.RunContext(ctx, 100); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if sim.StepCount() != 0 {
		t.Errorf("executed %d steps after cancellation, want 0", sim.StepCount())
	}
}

func TestDelayLineInEngine(t *testing.T) {
	// A flow reads the delay's output from the previous step; the delay is
	// fed by an auxiliary signal after stocks update.
	warehouse := model.NewStock("Warehouse", 0)
	orders := model.NewAuxiliary("orders", func(st *model.State) float64 {
		return 10
	})
	model.NewFlow("arrivals", nil, warehouse, func(st *model.State) float64 {
		return st.Delay("pipeline")
	})
	sim := mustNew(t, []*model.Stock{warehouse}, warehouse.Inflows(), []*model.Auxiliary{orders}, nil, 1.0)

	line, err := delay.NewFixed("pipeline", 2, 0, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if err := sim.AddDelay(line, func(st *model.State) float64 {
		return st.Aux("orders")
	}); err != nil {
		t.Fatal(err)
	}

	if err := sim.Run(5); err != nil {
		t.Fatal(err)
	}

	// Orders start arriving after 2 time units of transport plus the one
	// step of read lag (flows see the previous step's output).
	series := sim.Results().Series("Warehouse")
	if series == nil {
		t.Fatal("missing Warehouse series")
	}
	want := []float64{0, 0, 0, 10, 20}
	for i, w := range want {
		if series[i] != w {
			t.Errorf("Warehouse[%d] = %v, want %v", i, series[i], w)
		}
	}
	if out := sim.Results().Series("pipeline"); out == nil {
		t.Error("delay output not recorded as a results column")
	}

	if err := sim.AddDelay(line, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("late AddDelay err = %v, want ErrInvalidConfig", err)
	}
}

func TestCoflowInEngine(t *testing.T) {
	population := model.NewStock("Population", 1000)
	births := model.NewFlow("Births", nil, population, func(st *model.State) float64 {
		return 0.05 * st.Stock("Population")
	})
	age := coflow.New("Age Structure", population, "Average Age", 30)
	age.AddInflow(births, func(*model.State) float64 { return 0 })

	sim := mustNew(t, []*model.Stock{population}, []*model.Flow{births}, nil, nil, 1.0)
	if err := sim.AddCoflow(age); err != nil {
		t.Fatal(err)
	}

	if err := sim.Run(10); err != nil {
		t.Fatal(err)
	}

	if age.Concentration() >= 30 {
		t.Errorf("average age = %v, want diluted below 30", age.Concentration())
	}
	if s := sim.Results().Series("Age Structure concentration"); s == nil {
		t.Error("coflow concentration not recorded")
	}
}

func TestResultsTable(t *testing.T) {
	s := model.NewStock("S", 4)
	model.NewFlow("halve", s, nil, func(st *model.State) float64 {
		return 0.5 * st.Stock("S")
	})
	sim := mustNew(t, []*model.Stock{s}, s.Outflows(), nil, nil, 1.0)

	if err := sim.Run(3); err != nil {
		t.Fatal(err)
	}

	res := sim.Results()
	if res.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", res.Len())
	}
	if got := res.Times[2]; got != 2.0 {
		t.Errorf("Times[2] = %v, want 2 (step start times)", got)
	}
	if got := res.Series("S"); got[0] != 2 || got[1] != 1 || got[2] != 0.5 {
		t.Errorf("Series(S) = %v, want [2 1 0.5]", got)
	}
	if _, ok := res.Value(0, "nope"); ok {
		t.Error("Value() should miss unknown columns")
	}
	if names := res.Names(); len(names) != 2 {
		t.Errorf("Names() = %v, want stock and flow columns", names)
	}
}
