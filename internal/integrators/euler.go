package integrators

import (
	"github.com/san-kum/seirsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// Euler is the explicit first-order scheme x' = x + dt*f(x, t).
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, t float64, dt float64) dynamo.State {
	dx := dyn.Derive(x, t)
	result := x.Clone()
	floats.AddScaled(result, dt, dx)
	return result
}
