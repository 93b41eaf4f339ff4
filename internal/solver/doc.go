// Package solver integrates a [dynamo.System] on a fixed grid with sub-stepping.
//
// A run of Duration T with Substeps n advances the system n*T times with
// dt = 1/n and reports every n-th state, so the result always holds T+1 rows
// at unit time resolution.
//
// # Freezing
//
// Forward Euler with a coarse step can overshoot and drive a compartment
// negative. When a step would produce any negative component, the solver
// stops and repeats the last non-negative state for every remaining row.
// This is not an error: [Result.Frozen] and [Result.FrozenAt] record it, and
// [Solve] drops them entirely.
package solver
