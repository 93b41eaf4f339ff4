package metrics

import (
	"github.com/san-kum/seirsim/internal/dynamo"
	"github.com/san-kum/seirsim/internal/models"
)

type peakTracker struct {
	peak     float64
	peakTime float64
	samples  int
}

func (p *peakTracker) observe(x dynamo.State, t float64) {
	if len(x) <= models.I {
		return
	}
	if p.samples == 0 || x[models.I] > p.peak {
		p.peak = x[models.I]
		p.peakTime = t
	}
	p.samples++
}

func (p *peakTracker) reset() {
	p.peak = 0
	p.peakTime = 0
	p.samples = 0
}

// PeakInfected reports the largest infectious compartment seen.
type PeakInfected struct {
	name string
	peakTracker
}

func NewPeakInfected() *PeakInfected {
	return &PeakInfected{name: "peak_infected"}
}

func (p *PeakInfected) Name() string                      { return p.name }
func (p *PeakInfected) Observe(x dynamo.State, t float64) { p.observe(x, t) }
func (p *PeakInfected) Value() float64                    { return p.peak }
func (p *PeakInfected) Reset()                            { p.reset() }

// PeakTime reports when the infectious compartment first reached its maximum.
type PeakTime struct {
	name string
	peakTracker
}

func NewPeakTime() *PeakTime {
	return &PeakTime{name: "peak_time"}
}

func (p *PeakTime) Name() string                      { return p.name }
func (p *PeakTime) Observe(x dynamo.State, t float64) { p.observe(x, t) }
func (p *PeakTime) Value() float64                    { return p.peakTime }
func (p *PeakTime) Reset()                            { p.reset() }
