package solver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/seirsim/internal/dynamo"
	"github.com/san-kum/seirsim/internal/integrators"
	"github.com/san-kum/seirsim/internal/models"
)

type Config struct {
	// Duration is the number of reported unit time steps (T).
	Duration int
	// Substeps is the number of internal steps per unit of time (n).
	Substeps int
}

type Result struct {
	States     []dynamo.State
	Times      []float64
	Metrics    map[string]float64
	Frozen     bool
	FrozenAt   float64
	StepsTaken int
}

type Option func(*Solver)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Solver) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(metrics ...dynamo.Metric) Option {
	return func(s *Solver) {
		s.metrics = append(s.metrics, metrics...)
	}
}

type Solver struct {
	dyn        dynamo.System
	integrator dynamo.Integrator
	metrics    []dynamo.Metric
	logger     *slog.Logger
}

func New(dyn dynamo.System, integrator dynamo.Integrator, opts ...Option) *Solver {
	s := &Solver{
		dyn:        dyn,
		integrator: integrator,
		metrics:    make([]dynamo.Metric, 0),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Solver) AddMetric(m dynamo.Metric) { s.metrics = append(s.metrics, m) }

// Run integrates from x0 and returns Duration+1 states sampled at t = 0..Duration.
// x0 is copied; the caller owns every returned state.
func (s *Solver) Run(ctx context.Context, x0 dynamo.State, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != s.dyn.StateDim() {
		return nil, fmt.Errorf("%w: state has %d components, system expects %d",
			dynamo.ErrDimensionMismatch, len(x0), s.dyn.StateDim())
	}

	n := cfg.Substeps
	steps := n * cfg.Duration
	dt := 1.0 / float64(n)

	result := &Result{
		States:  make([]dynamo.State, 0, cfg.Duration+1),
		Times:   make([]float64, 0, cfg.Duration+1),
		Metrics: make(map[string]float64),
	}

	buf := make([]dynamo.State, steps+1)
	buf[0] = x0.Clone()

	for k := 0; k < steps; k++ {
		t := timeAt(k, n)

		if k%n == 0 {
			select {
			case <-ctx.Done():
				return nil, &dynamo.SimulationError{
					Step:    k,
					Time:    t,
					Wrapped: fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err()),
				}
			default:
			}
		}

		next := s.integrator.Step(s.dyn, buf[k], t, dt)

		if next.HasNegative() {
			// rows are never mutated in place, so sharing buf[k] is safe.
			for j := k + 1; j <= steps; j++ {
				buf[j] = buf[k]
			}
			result.Frozen = true
			result.FrozenAt = t
			s.logger.Debug("trajectory frozen at last non-negative state",
				"step", k,
				"t", t,
				"rejected", []float64(next),
			)
			break
		}

		buf[k+1] = next
		result.StepsTaken++
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	for i := 0; i <= cfg.Duration; i++ {
		x := buf[i*n].Clone()
		t := float64(i)

		result.States = append(result.States, x)
		result.Times = append(result.Times, t)

		for _, m := range s.metrics {
			m.Observe(x, t)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func validateConfig(cfg Config) error {
	if cfg.Substeps < 1 {
		return fmt.Errorf("%w: substeps must be positive, got %d", dynamo.ErrInvalidGrid, cfg.Substeps)
	}
	if cfg.Duration < 0 {
		return fmt.Errorf("%w: duration must be non-negative, got %d", dynamo.ErrInvalidGrid, cfg.Duration)
	}
	return nil
}

func timeAt(k, n int) float64 {
	return float64(k) / float64(n)
}

// Solve integrates the SEIR model with forward Euler for T units of time
// using n sub-steps per unit, starting from (s0, 0, i0, 0). It returns T+1
// states, one per unit of time.
func Solve(T, n int, s0, i0 float64, p models.Params) ([]dynamo.State, error) {
	s := New(models.NewSEIR(p), integrators.NewEuler())

	result, err := s.Run(context.Background(), models.InitialState(s0, i0), Config{
		Duration: T,
		Substeps: n,
	})
	if err != nil {
		return nil, err
	}
	return result.States, nil
}
