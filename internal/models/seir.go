package models

import (
	"fmt"
	"math"

	"github.com/san-kum/seirsim/internal/dynamo"
)

// Compartment indices into an SEIR state vector.
const (
	S = iota
	E
	I
	R
)

// Params holds the SEIR rate parameters. Rho and Gamma are mean durations,
// so the transition rates are E/Rho and I/Gamma.
type Params struct {
	Beta  float64 `yaml:"beta" json:"beta"`
	Rho   float64 `yaml:"rho" json:"rho"`
	Gamma float64 `yaml:"gamma" json:"gamma"`
}

// Validate rejects parameters the evaluator would turn into Inf or NaN.
// The evaluator itself never calls it.
func (p Params) Validate() error {
	for name, v := range map[string]float64{"beta": p.Beta, "rho": p.Rho, "gamma": p.Gamma} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", dynamo.ErrParameterBounds, name)
		}
	}
	if p.Beta < 0 {
		return fmt.Errorf("%w: beta must be non-negative, got %g", dynamo.ErrParameterBounds, p.Beta)
	}
	if p.Rho <= 0 {
		return fmt.Errorf("%w: rho must be positive, got %g", dynamo.ErrParameterBounds, p.Rho)
	}
	if p.Gamma <= 0 {
		return fmt.Errorf("%w: gamma must be positive, got %g", dynamo.ErrParameterBounds, p.Gamma)
	}
	return nil
}

// Derivative returns (dS, dE, dI, dR) at x. t is accepted for ODE-solver
// compatibility and ignored, since the parameters are time-invariant.
func Derivative(x dynamo.State, t float64, p Params) dynamo.State {
	s, e, i := x[S], x[E], x[I]

	infection := p.Beta * s * i
	onset := e / p.Rho
	recovery := i / p.Gamma

	return dynamo.State{
		-infection,
		infection - onset,
		onset - recovery,
		recovery,
	}
}

type SEIR struct {
	Params Params
}

func NewSEIR(p Params) *SEIR {
	return &SEIR{Params: p}
}

func (m *SEIR) StateDim() int {
	return 4
}

func (m *SEIR) Derive(x dynamo.State, t float64) dynamo.State {
	return Derivative(x, t, m.Params)
}

// InitialState returns (s0, 0, i0, 0). Exposed and recovered always start empty.
func InitialState(s0, i0 float64) dynamo.State {
	return dynamo.State{s0, 0, i0, 0}
}
