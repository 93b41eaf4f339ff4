package sweep_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/seirsim/internal/config"
	"github.com/san-kum/seirsim/internal/dynamo"
	"github.com/san-kum/seirsim/internal/models"
	"github.com/san-kum/seirsim/internal/solver"
	"github.com/san-kum/seirsim/internal/sweep"
)

var _ = Describe("Grid", func() {
	base := models.Params{Beta: 0.5, Rho: 5, Gamma: 7}

	It("keeps base values on empty axes", func() {
		Expect(sweep.Grid{}.Points(base)).To(Equal([]models.Params{base}))
	})

	It("enumerates the cartesian product with beta slowest", func() {
		points := sweep.Grid{Betas: []float64{0.3, 0.6}, Gammas: []float64{4, 8}}.Points(base)
		Expect(points).To(Equal([]models.Params{
			{Beta: 0.3, Rho: 5, Gamma: 4},
			{Beta: 0.3, Rho: 5, Gamma: 8},
			{Beta: 0.6, Rho: 5, Gamma: 4},
			{Beta: 0.6, Rho: 5, Gamma: 8},
		}))
	})
})

var _ = Describe("Runner", func() {
	var base config.Config

	BeforeEach(func() {
		base = *config.DefaultConfig()
		base.Duration = 60
		base.Substeps = 5
	})

	It("matches a direct solve at every point, in grid order", func() {
		grid := sweep.Grid{Betas: []float64{0.2, 0.5, 0.9}, Rhos: []float64{3, 6}}
		points, err := sweep.New(3, nil).Run(context.Background(), base, grid)
		Expect(err).NotTo(HaveOccurred())
		Expect(points).To(HaveLen(6))

		for i, p := range grid.Points(base.Params) {
			Expect(points[i].Params).To(Equal(p))

			states, err := solver.Solve(base.Duration, base.Substeps, base.Initial.S0, base.Initial.I0, p)
			Expect(err).NotTo(HaveOccurred())

			peak := 0.0
			for _, x := range states {
				peak = max(peak, x[models.I])
			}
			Expect(points[i].Metrics["peak_infected"]).To(Equal(peak))
		}
	})

	It("reports frozen points", func() {
		coarse := *config.GetPreset("coarse")
		points, err := sweep.New(0, nil).Run(context.Background(), coarse, sweep.Grid{Betas: []float64{0.01, 5}})
		Expect(err).NotTo(HaveOccurred())
		Expect(points[0].Frozen).To(BeFalse())
		Expect(points[1].Frozen).To(BeTrue())
		Expect(points[1].FrozenAt).To(Equal(2.0))
	})

	It("rejects invalid grid points before solving", func() {
		_, err := sweep.New(1, nil).Run(context.Background(), base, sweep.Grid{Gammas: []float64{7, 0}})
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
	})

	It("stops when the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := sweep.New(2, nil).Run(ctx, base, sweep.Grid{Betas: []float64{0.3, 0.4}})
		Expect(err).To(MatchError(dynamo.ErrContextCanceled))
	})
})
