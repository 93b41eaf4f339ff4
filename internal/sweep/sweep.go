// Package sweep solves one SEIR configuration over a grid of parameter sets.
//
// Each grid point is an independent single-threaded solve; points run
// concurrently on a bounded worker group and results come back in grid order.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/san-kum/seirsim/internal/config"
	"github.com/san-kum/seirsim/internal/integrators"
	"github.com/san-kum/seirsim/internal/metrics"
	"github.com/san-kum/seirsim/internal/models"
	"github.com/san-kum/seirsim/internal/solver"
	"golang.org/x/sync/errgroup"
)

// Grid lists candidate values per parameter. An empty axis keeps the base value.
type Grid struct {
	Betas  []float64
	Rhos   []float64
	Gammas []float64
}

// Points enumerates the cartesian product with beta varying slowest.
func (g Grid) Points(base models.Params) []models.Params {
	betas := orDefault(g.Betas, base.Beta)
	rhos := orDefault(g.Rhos, base.Rho)
	gammas := orDefault(g.Gammas, base.Gamma)

	points := make([]models.Params, 0, len(betas)*len(rhos)*len(gammas))
	for _, b := range betas {
		for _, r := range rhos {
			for _, gm := range gammas {
				points = append(points, models.Params{Beta: b, Rho: r, Gamma: gm})
			}
		}
	}
	return points
}

func orDefault(values []float64, fallback float64) []float64 {
	if len(values) == 0 {
		return []float64{fallback}
	}
	return values
}

type Point struct {
	Params   models.Params
	Metrics  map[string]float64
	Frozen   bool
	FrozenAt float64
}

type Runner struct {
	workers int
	logger  *slog.Logger
}

func New(workers int, logger *slog.Logger) *Runner {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{workers: workers, logger: logger}
}

// Run validates every grid point before solving any of them.
func (r *Runner) Run(ctx context.Context, base config.Config, grid Grid) ([]Point, error) {
	params := grid.Points(base.Params)
	for _, p := range params {
		cfg := base
		cfg.Params = p
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("grid point %+v: %w", p, err)
		}
	}

	results := make([]Point, len(params))
	x0 := base.GetInitState()
	solverCfg := solver.Config{Duration: base.Duration, Substeps: base.Substeps}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for idx, p := range params {
		g.Go(func() error {
			s := solver.New(models.NewSEIR(p), integrators.NewEuler(),
				solver.WithLogger(r.logger.With("beta", p.Beta, "rho", p.Rho, "gamma", p.Gamma)),
				solver.WithMetrics(metrics.Default()...),
			)

			res, err := s.Run(ctx, x0, solverCfg)
			if err != nil {
				return fmt.Errorf("grid point %+v: %w", p, err)
			}

			results[idx] = Point{
				Params:   p,
				Metrics:  res.Metrics,
				Frozen:   res.Frozen,
				FrozenAt: res.FrozenAt,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.Debug("sweep finished", "points", len(results), "workers", r.workers)
	return results, nil
}
