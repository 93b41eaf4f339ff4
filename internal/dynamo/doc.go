// Package dynamo provides core simulation primitives for compartmental models.
//
// The package defines the fundamental interfaces and types shared by the
// evaluator, the stepper and the fixed-step solver:
//
//   - [State]: vector of compartment sizes
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: single-step numerical integrator
//   - [Metric]: observer reducing a trajectory to a scalar
//
// # Example
//
//	dyn := models.NewSEIR(models.Params{Beta: 0.5, Rho: 5, Gamma: 7})
//	s := solver.New(dyn, integrators.NewEuler())
//	result, _ := s.Run(ctx, x0, solver.Config{Duration: 100, Substeps: 10})
//
// # Thread Safety
//
// Values in this package carry no shared state. A [State] returned by an
// integrator is freshly allocated and owned by the caller.
package dynamo
