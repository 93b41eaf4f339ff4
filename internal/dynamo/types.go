package dynamo

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// State is an ordered vector of compartment sizes, e.g. (S, E, I, R).
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// HasNegative reports whether any component is strictly below zero.
// NaN compares false and is therefore not reported.
func (s State) HasNegative() bool {
	for _, v := range s {
		if v < 0 {
			return true
		}
	}
	return false
}

// Sum returns the total population across all compartments.
func (s State) Sum() float64 {
	return floats.Sum(s)
}

// Equal reports exact component-wise equality.
func (s State) Equal(other State) bool {
	return floats.Equal(s, other)
}

type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}
