package metrics

import (
	"github.com/san-kum/seirsim/internal/dynamo"
	"github.com/san-kum/seirsim/internal/models"
)

// AttackRate is the share of the initial population that ended up recovered.
type AttackRate struct {
	name      string
	initial   float64
	recovered float64
	samples   int
}

func NewAttackRate() *AttackRate {
	return &AttackRate{name: "attack_rate"}
}

func (a *AttackRate) Name() string { return a.name }

func (a *AttackRate) Observe(x dynamo.State, t float64) {
	if len(x) <= models.R {
		return
	}
	if a.samples == 0 {
		a.initial = x.Sum()
	}
	a.recovered = x[models.R]
	a.samples++
}

func (a *AttackRate) Value() float64 {
	if a.initial == 0 {
		return 0
	}
	return a.recovered / a.initial
}

func (a *AttackRate) Reset() {
	a.initial = 0
	a.recovered = 0
	a.samples = 0
}

// Default returns a fresh set of the epidemic metrics reported by a run.
func Default() []dynamo.Metric {
	return []dynamo.Metric{
		NewPopulationDrift(),
		NewPeakInfected(),
		NewPeakTime(),
		NewAttackRate(),
	}
}
