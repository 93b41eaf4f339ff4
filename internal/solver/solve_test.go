package solver_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/seirsim/internal/dynamo"
	"github.com/san-kum/seirsim/internal/integrators"
	"github.com/san-kum/seirsim/internal/models"
	"github.com/san-kum/seirsim/internal/solver"
)

// fineTrajectory replays the Euler sub-steps without any freeze handling.
func fineTrajectory(T, n int, s0, i0 float64, p models.Params) []dynamo.State {
	dyn := models.NewSEIR(p)
	euler := integrators.NewEuler()
	dt := 1.0 / float64(n)

	buf := []dynamo.State{models.InitialState(s0, i0)}
	for k := 0; k < n*T; k++ {
		buf = append(buf, euler.Step(dyn, buf[k], float64(k)/float64(n), dt))
	}
	return buf
}

var _ = Describe("Solve", func() {
	typical := models.Params{Beta: 0.5, Rho: 5, Gamma: 7}

	DescribeTable("returns T+1 rows",
		func(T, n int) {
			states, err := solver.Solve(T, n, 0.99, 0.01, typical)
			Expect(err).NotTo(HaveOccurred())
			Expect(states).To(HaveLen(T + 1))
			for _, x := range states {
				Expect(x).To(HaveLen(4))
			}
		},
		Entry("single step", 1, 1),
		Entry("coarse", 30, 1),
		Entry("fine", 30, 10),
		Entry("odd substeps", 17, 3),
		Entry("long", 365, 4),
	)

	It("starts from (S0, 0, I0, 0)", func() {
		states, err := solver.Solve(10, 5, 0.97, 0.03, typical)
		Expect(err).NotTo(HaveOccurred())
		Expect(states[0]).To(Equal(dynamo.State{0.97, 0, 0.03, 0}))
	})

	It("applies one Euler update for T=1, n=1", func() {
		p := models.Params{Beta: 0.5, Rho: 2, Gamma: 3}
		states, err := solver.Solve(1, 1, 0.9, 0.1, p)
		Expect(err).NotTo(HaveOccurred())
		Expect(states).To(HaveLen(2))

		derivative := []float64{-0.045, 0.045 - 0.0, 0.0 - 0.1/3, 0.1 / 3}
		initial := []float64{0.9, 0, 0.1, 0}
		for i := range initial {
			Expect(states[1][i]).To(BeNumerically("~", initial[i]+1.0*derivative[i], 1e-9))
		}
	})

	It("reports every n-th internal row without interpolation", func() {
		T, n := 20, 7
		states, err := solver.Solve(T, n, 0.99, 0.01, typical)
		Expect(err).NotTo(HaveOccurred())

		fine := fineTrajectory(T, n, 0.99, 0.01, typical)
		for i := 0; i <= T; i++ {
			Expect(states[i]).To(Equal(fine[i*n]), "row %d", i)
		}
	})

	It("keeps the total population within 1% for small dt", func() {
		states, err := solver.Solve(150, 100, 0.99, 0.01, typical)
		Expect(err).NotTo(HaveOccurred())

		for i, x := range states {
			Expect(x.HasNegative()).To(BeFalse(), "row %d", i)
			Expect(x.Sum()).To(BeNumerically("~", 1.0, 0.01), "row %d", i)
		}
	})

	It("supports a zero duration", func() {
		states, err := solver.Solve(0, 4, 0.99, 0.01, typical)
		Expect(err).NotTo(HaveOccurred())
		Expect(states).To(Equal([]dynamo.State{{0.99, 0, 0.01, 0}}))
	})

	It("rejects a non-positive substep count", func() {
		_, err := solver.Solve(10, 0, 0.99, 0.01, typical)
		Expect(err).To(MatchError(dynamo.ErrInvalidGrid))
	})

	It("rejects a negative duration", func() {
		_, err := solver.Solve(-1, 1, 0.99, 0.01, typical)
		Expect(err).To(MatchError(dynamo.ErrInvalidGrid))
	})

	Context("when a step turns a compartment negative", func() {
		It("freezes immediately when the first step overshoots", func() {
			// I/gamma*dt = 2 removes twenty times the infectious population.
			p := models.Params{Beta: 0.5, Rho: 2, Gamma: 0.05}
			states, err := solver.Solve(5, 1, 0.9, 0.1, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(states).To(HaveLen(6))
			for _, x := range states {
				Expect(x).To(Equal(dynamo.State{0.9, 0, 0.1, 0}))
			}
		})

		It("repeats the last valid row for the rest of the trajectory", func() {
			// S goes negative on the third step:
			// (0.9,0,0.1,0) -> (0.45,0.45,0.09,0.01) -> (0.2475,0.2025,0.531,0.019) -> S<0
			p := models.Params{Beta: 5, Rho: 1, Gamma: 10}
			states, err := solver.Solve(6, 1, 0.9, 0.1, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(states).To(HaveLen(7))

			last := states[2]
			Expect(last[models.S]).To(BeNumerically("~", 0.2475, 1e-12))
			Expect(last[models.E]).To(BeNumerically("~", 0.2025, 1e-12))
			Expect(last[models.I]).To(BeNumerically("~", 0.531, 1e-12))
			Expect(last[models.R]).To(BeNumerically("~", 0.019, 1e-12))
			Expect(states[1]).NotTo(Equal(last))

			for i := 3; i < len(states); i++ {
				Expect(states[i]).To(Equal(last), "row %d", i)
			}
			for _, x := range states {
				Expect(x.HasNegative()).To(BeFalse())
			}
		})

		It("freezes between reported rows when sub-stepping", func() {
			p := models.Params{Beta: 5, Rho: 1, Gamma: 10}
			T, n := 4, 2
			states, err := solver.Solve(T, n, 0.9, 0.1, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(states).To(HaveLen(T + 1))

			fine := fineTrajectory(T, n, 0.9, 0.1, p)
			frozen := -1
			for k := 1; k < len(fine); k++ {
				if fine[k].HasNegative() {
					frozen = k - 1
					break
				}
			}
			Expect(frozen).To(BeNumerically(">=", 0), "expected these parameters to overshoot")

			for i := 0; i <= T; i++ {
				if i*n <= frozen {
					Expect(states[i]).To(Equal(fine[i*n]), "row %d", i)
				} else {
					Expect(states[i]).To(Equal(fine[frozen]), "row %d", i)
				}
			}
		})
	})

	It("returns rows that do not alias one another", func() {
		p := models.Params{Beta: 0.5, Rho: 2, Gamma: 0.05}
		states, err := solver.Solve(3, 1, 0.9, 0.1, p)
		Expect(err).NotTo(HaveOccurred())

		states[1][0] = 42
		Expect(states[2][0]).To(Equal(0.9))
	})
})
