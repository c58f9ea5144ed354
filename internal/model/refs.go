package model

// Typed handles resolve a name once at model-build time so hot calculation
// functions can read by index instead of hashing a string every step. The
// name-based State methods remain the boundary API.

type StockRef struct{ i int }
type FlowRef struct{ i int }
type AuxRef struct{ i int }
type ParamRef struct{ i int }

func (s *State) FindStock(name string) (StockRef, bool) {
	i, ok := s.stockIdx[name]
	return StockRef{i}, ok
}

func (s *State) FindFlow(name string) (FlowRef, bool) {
	i, ok := s.flowIdx[name]
	return FlowRef{i}, ok
}

func (s *State) FindAux(name string) (AuxRef, bool) {
	i, ok := s.auxIdx[name]
	return AuxRef{i}, ok
}

func (s *State) FindParam(name string) (ParamRef, bool) {
	i, ok := s.paramIdx[name]
	return ParamRef{i}, ok
}

func (s *State) StockAt(r StockRef) float64 {
	if v, ok := s.override(s.stocks[r.i].name); ok {
		return v
	}
	return s.stocks[r.i].value
}

func (s *State) FlowAt(r FlowRef) float64 {
	if v, ok := s.override(s.flows[r.i].name); ok {
		return v
	}
	return s.flows[r.i].rate
}

func (s *State) AuxAt(r AuxRef) float64 {
	if v, ok := s.override(s.auxes[r.i].name); ok {
		return v
	}
	return s.auxes[r.i].value
}

func (s *State) ParamAt(r ParamRef) float64 {
	if v, ok := s.override(s.params[r.i].name); ok {
		return v
	}
	return s.params[r.i].value
}
