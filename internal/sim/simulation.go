// Package sim runs stock-and-flow models one synchronous step at a time.
//
// The step protocol is the whole point: every quantity read during a step
// is read at a consistent pre-update value, flow rates are fixed before
// any stock moves, and all stocks integrate simultaneously. Auxiliaries
// evaluate before flows (so a flow may read any same-step auxiliary),
// stocks integrate after every rate is cached, and delay lines and coflows
// consume the step's rates after the stocks settle.
package sim

import (
	"context"
	"fmt"
	"math"

	"sysflow/internal/coflow"
	"sysflow/internal/delay"
	"sysflow/internal/model"
)

type delayEntry struct {
	line  delay.Line
	input model.CalcFunc
	slot  int
}

// Simulation owns the full entity set of one model instance. It is a
// single-owner unit of work: entities are never shared between two
// simulations and all mutation happens inside Step.
type Simulation struct {
	stocks []*model.Stock
	flows  []*model.Flow
	auxes  []*model.Auxiliary
	params []*model.Parameter

	delays  []delayEntry
	coflows []*coflow.Coflow

	// name → entity kind, spanning every category. Lookups and result
	// columns share one namespace; a stock and a flow with the same name
	// would shadow each other.
	used map[string]string

	state *model.State
	dt    float64
	time  float64
	steps int

	results *Results
}

// New validates and assembles a simulation. Names must be unique across
// every entity category; the timestep is fixed for the simulation's life.
func New(stocks []*model.Stock, flows []*model.Flow, auxes []*model.Auxiliary, params []*model.Parameter, dt float64) (*Simulation, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("timestep must be positive, got %v: %w", dt, ErrInvalidConfig)
	}

	s := &Simulation{
		stocks: stocks,
		flows:  flows,
		auxes:  auxes,
		params: params,
		state:  model.NewState(stocks, flows, auxes, params),
		dt:     dt,
		used:   make(map[string]string),
	}
	for _, n := range stockNames(stocks) {
		if err := s.claim("stock", n); err != nil {
			return nil, err
		}
	}
	for _, n := range flowNames(flows) {
		if err := s.claim("flow", n); err != nil {
			return nil, err
		}
	}
	for _, n := range auxNames(auxes) {
		if err := s.claim("auxiliary", n); err != nil {
			return nil, err
		}
	}
	for _, n := range paramNames(params) {
		if err := s.claim("parameter", n); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// AddDelay attaches a delay line driven by input, which is evaluated after
// the stocks update each step so it may read the step's flow rates. The
// line's output is readable from calculation functions via State.Delay and
// recorded as a results column. Must be called before the first step.
func (s *Simulation) AddDelay(line delay.Line, input model.CalcFunc) error {
	if s.steps > 0 {
		return fmt.Errorf("cannot add delay %q to a running simulation: %w", line.Name(), ErrInvalidConfig)
	}
	if err := s.claim("delay", line.Name()); err != nil {
		return err
	}
	slot := s.state.RegisterDelay(line.Name(), line.Output())
	s.delays = append(s.delays, delayEntry{line: line, input: input, slot: slot})
	s.results = nil
	return nil
}

// AddCoflow attaches an attribute tracker, updated after the stocks each
// step. Must be called before the first step.
func (s *Simulation) AddCoflow(c *coflow.Coflow) error {
	if s.steps > 0 {
		return fmt.Errorf("cannot add coflow %q to a running simulation: %w", c.Name(), ErrInvalidConfig)
	}
	if err := s.claim("coflow", c.Name()); err != nil {
		return err
	}
	if err := s.claim("coflow", c.Name()+" concentration"); err != nil {
		return err
	}
	s.coflows = append(s.coflows, c)
	s.results = nil
	return nil
}

// Step executes one full evaluation pass and advances time by one
// timestep. Any computation error aborts the step with the engine left at
// the last successful step's history.
func (s *Simulation) Step() error {
	s.state.SetTime(s.time)

	// Auxiliaries first, in registration order. A flow may read any of
	// this step's auxiliary values; the reverse is impossible.
	for _, a := range s.auxes {
		v := a.CalculateValue(s.state)
		if err := s.check(a.Name(), v); err != nil {
			return err
		}
	}

	// Flow rates next, all from the pre-update stock values.
	for _, f := range s.flows {
		r := f.CalculateRate(s.state)
		if err := s.check(f.Name(), r); err != nil {
			return err
		}
	}

	// Every rate is now fixed: integrate the stocks. No stock can observe
	// another's post-update value within this step.
	for _, st := range s.stocks {
		st.Update(s.dt)
	}

	// Delay lines and coflows consume the step's rates.
	for _, d := range s.delays {
		in := d.input(s.state)
		if err := s.check(d.line.Name(), in); err != nil {
			return err
		}
		s.state.SetDelayOutput(d.slot, d.line.Update(in, s.dt))
	}
	for _, c := range s.coflows {
		c.Update(s.state, s.dt)
		if err := s.check(c.Name(), c.Concentration()); err != nil {
			return err
		}
	}

	s.record()
	s.time += s.dt
	s.steps++
	return nil
}

// Run executes floor(duration/timestep) steps; a fractional remainder is
// dropped, not rounded up.
func (s *Simulation) Run(duration float64) error {
	return s.RunContext(context.Background(), duration)
}

// RunContext is Run with cooperative cancellation between steps. There is
// no suspension point inside a step; each step is atomic to the caller.
func (s *Simulation) RunContext(ctx context.Context, duration float64) error {
	if duration < 0 {
		return fmt.Errorf("duration must be non-negative, got %v: %w", duration, ErrInvalidConfig)
	}

	steps := int(duration / s.dt)
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Results returns the recorded history. The returned table is live: later
// steps append to it.
func (s *Simulation) Results() *Results {
	if s.results == nil {
		s.results = newResults(s.columnNames())
	}
	return s.results
}

func (s *Simulation) check(entity string, v float64) error {
	if name := s.state.TakeMissing(); name != "" {
		return &ComputeError{
			Entity: entity,
			Step:   s.steps,
			Time:   s.time,
			Reason: fmt.Sprintf("lookup of unknown name %q", name),
		}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ComputeError{
			Entity: entity,
			Step:   s.steps,
			Time:   s.time,
			Reason: fmt.Sprintf("non-finite result %v", v),
		}
	}
	return nil
}

func (s *Simulation) record() {
	res := s.Results()
	row := make([]float64, 0, len(res.names))
	for _, st := range s.stocks {
		row = append(row, st.Value())
	}
	for _, f := range s.flows {
		row = append(row, f.Rate())
	}
	for _, a := range s.auxes {
		row = append(row, a.Value())
	}
	for _, d := range s.delays {
		row = append(row, d.line.Output())
	}
	for _, c := range s.coflows {
		row = append(row, c.AttributeStock(), c.Concentration())
	}
	res.append(s.time, row)
}

func (s *Simulation) columnNames() []string {
	names := make([]string, 0, len(s.stocks)+len(s.flows)+len(s.auxes)+len(s.delays)+2*len(s.coflows))
	names = append(names, stockNames(s.stocks)...)
	names = append(names, flowNames(s.flows)...)
	names = append(names, auxNames(s.auxes)...)
	for _, d := range s.delays {
		names = append(names, d.line.Name())
	}
	for _, c := range s.coflows {
		names = append(names, c.Name(), c.Name()+" concentration")
	}
	return names
}

// Time reports the simulation clock: 0 while idle, advancing one timestep
// per executed step. The engine has no terminal state; it can be stepped
// or queried indefinitely.
func (s *Simulation) Time() float64     { return s.time }
func (s *Simulation) Timestep() float64 { return s.dt }
func (s *Simulation) StepCount() int    { return s.steps }

// State exposes the live read view, primarily for analysis tooling.
func (s *Simulation) State() *model.State { return s.state }

func (s *Simulation) Stocks() []*model.Stock          { return s.stocks }
func (s *Simulation) Flows() []*model.Flow            { return s.flows }
func (s *Simulation) Auxiliaries() []*model.Auxiliary { return s.auxes }
func (s *Simulation) Parameters() []*model.Parameter  { return s.params }
func (s *Simulation) Coflows() []*coflow.Coflow       { return s.coflows }

// Delays lists the attached delay lines in registration order.
func (s *Simulation) Delays() []delay.Line {
	out := make([]delay.Line, len(s.delays))
	for i, d := range s.delays {
		out[i] = d.line
	}
	return out
}

func (s *Simulation) claim(kind, name string) error {
	if prev, dup := s.used[name]; dup {
		return fmt.Errorf("%s name %q already taken by a %s: %w", kind, name, prev, ErrInvalidConfig)
	}
	s.used[name] = kind
	return nil
}

func stockNames(stocks []*model.Stock) []string {
	out := make([]string, len(stocks))
	for i, s := range stocks {
		out[i] = s.Name()
	}
	return out
}

func flowNames(flows []*model.Flow) []string {
	out := make([]string, len(flows))
	for i, f := range flows {
		out[i] = f.Name()
	}
	return out
}

func auxNames(auxes []*model.Auxiliary) []string {
	out := make([]string, len(auxes))
	for i, a := range auxes {
		out[i] = a.Name()
	}
	return out
}

func paramNames(params []*model.Parameter) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.Name()
	}
	return out
}
