// Package units gives model quantities dimensional bookkeeping. Units are
// plain strings on the entities; this package parses them into dimension
// vectors so that flow units can be checked against stock units divided
// by time.
package units

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidUnit marks unparseable unit expressions and registry misuse.
var ErrInvalidUnit = errors.New("invalid unit")

// ErrMismatch marks operations on dimensionally incompatible quantities.
var ErrMismatch = errors.New("unit mismatch")

// Dims is a dimension vector: base unit name to integer exponent. Entries
// with exponent zero are removed, so equal vectors compare equal.
type Dims map[string]int

func (d Dims) clone() Dims {
	out := make(Dims, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Equal reports whether two dimension vectors match exactly.
func (d Dims) Equal(other Dims) bool {
	if len(d) != len(other) {
		return false
	}
	for k, v := range d {
		if other[k] != v {
			return false
		}
	}
	return true
}

// String renders the vector in a stable order, e.g. "people/day".
func (d Dims) String() string {
	if len(d) == 0 {
		return "dimensionless"
	}
	var num, den []string
	for k, v := range d {
		switch {
		case v == 1:
			num = append(num, k)
		case v > 1:
			num = append(num, fmt.Sprintf("%s^%d", k, v))
		case v == -1:
			den = append(den, k)
		default:
			den = append(den, fmt.Sprintf("%s^%d", k, -v))
		}
	}
	sort.Strings(num)
	sort.Strings(den)

	top := strings.Join(num, "*")
	if top == "" {
		top = "1"
	}
	if len(den) == 0 {
		return top
	}
	return top + "/" + strings.Join(den, "*")
}

// Quantity is a magnitude with dimensions.
type Quantity struct {
	Mag  float64
	Dims Dims
}

// Mul multiplies two quantities, adding exponents.
func (q Quantity) Mul(other Quantity) Quantity {
	out := q.Dims.clone()
	for k, v := range other.Dims {
		out[k] += v
		if out[k] == 0 {
			delete(out, k)
		}
	}
	return Quantity{Mag: q.Mag * other.Mag, Dims: out}
}

// Div divides two quantities, subtracting exponents.
func (q Quantity) Div(other Quantity) Quantity {
	out := q.Dims.clone()
	for k, v := range other.Dims {
		out[k] -= v
		if out[k] == 0 {
			delete(out, k)
		}
	}
	return Quantity{Mag: q.Mag / other.Mag, Dims: out}
}

// Add sums two quantities, failing when their dimensions differ.
func (q Quantity) Add(other Quantity) (Quantity, error) {
	if !q.Dims.Equal(other.Dims) {
		return Quantity{}, fmt.Errorf("cannot add %s to %s: %w", other.Dims, q.Dims, ErrMismatch)
	}
	return Quantity{Mag: q.Mag + other.Mag, Dims: q.Dims.clone()}, nil
}

// Registry resolves unit names to dimension vectors and conversion
// factors. Base units have factor 1 against themselves; derived units are
// defined as a multiple of some quantity.
type Registry struct {
	units map[string]Quantity
}

// NewRegistry returns a registry preloaded with the time units simulation
// configs use: second, minute, hour, day, week, month, year, with day as
// the base time unit.
func NewRegistry() *Registry {
	r := &Registry{units: make(map[string]Quantity)}
	r.DefineBase("day")
	r.Define("second", Quantity{Mag: 1.0 / 86400, Dims: Dims{"day": 1}})
	r.Define("minute", Quantity{Mag: 1.0 / 1440, Dims: Dims{"day": 1}})
	r.Define("hour", Quantity{Mag: 1.0 / 24, Dims: Dims{"day": 1}})
	r.Define("week", Quantity{Mag: 7, Dims: Dims{"day": 1}})
	r.Define("month", Quantity{Mag: 30, Dims: Dims{"day": 1}})
	r.Define("year", Quantity{Mag: 365, Dims: Dims{"day": 1}})
	return r
}

// DefineBase registers name as its own dimension with factor 1.
func (r *Registry) DefineBase(name string) {
	r.units[name] = Quantity{Mag: 1, Dims: Dims{name: 1}}
}

// Define registers a derived unit as a quantity in already-known units.
func (r *Registry) Define(name string, q Quantity) {
	r.units[name] = Quantity{Mag: q.Mag, Dims: q.Dims.clone()}
}

// Parse resolves a unit expression of the form "a*b/c*d" into a quantity
// with magnitude equal to the combined conversion factor. Unknown unit
// names become their own base dimension, so models can use ad-hoc units
// like "people" without registering them.
func (r *Registry) Parse(expr string) (Quantity, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || expr == "dimensionless" || expr == "1" {
		return Quantity{Mag: 1, Dims: Dims{}}, nil
	}

	out := Quantity{Mag: 1, Dims: Dims{}}
	num, den, found := strings.Cut(expr, "/")
	for _, name := range strings.Split(num, "*") {
		q, err := r.resolve(name)
		if err != nil {
			return Quantity{}, err
		}
		out = out.Mul(q)
	}
	if found {
		for _, name := range strings.Split(den, "*") {
			q, err := r.resolve(name)
			if err != nil {
				return Quantity{}, err
			}
			out = out.Div(q)
		}
	}
	return out, nil
}

func (r *Registry) resolve(name string) (Quantity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Quantity{}, fmt.Errorf("empty unit term: %w", ErrInvalidUnit)
	}
	if q, ok := r.units[name]; ok {
		return Quantity{Mag: q.Mag, Dims: q.Dims.clone()}, nil
	}
	return Quantity{Mag: 1, Dims: Dims{name: 1}}, nil
}

// Compatible reports whether two unit expressions share dimensions.
func (r *Registry) Compatible(a, b string) (bool, error) {
	qa, err := r.Parse(a)
	if err != nil {
		return false, err
	}
	qb, err := r.Parse(b)
	if err != nil {
		return false, err
	}
	return qa.Dims.Equal(qb.Dims), nil
}

// Convert re-expresses a magnitude given in unit from as a magnitude in
// unit to, failing when the dimensions differ.
func (r *Registry) Convert(mag float64, from, to string) (float64, error) {
	qf, err := r.Parse(from)
	if err != nil {
		return 0, err
	}
	qt, err := r.Parse(to)
	if err != nil {
		return 0, err
	}
	if !qf.Dims.Equal(qt.Dims) {
		return 0, fmt.Errorf("cannot convert %q to %q: %w", from, to, ErrMismatch)
	}
	return mag * qf.Mag / qt.Mag, nil
}
