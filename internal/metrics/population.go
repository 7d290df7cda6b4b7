package metrics

import (
	"github.com/san-kum/bouncesim/internal/sim"
)

// Population reports the live body count at the last observed frame.
type Population struct {
	count int
}

func NewPopulation() *Population { return &Population{} }

func (p *Population) Name() string                    { return "population" }
func (p *Population) Observe(w *sim.World, t float64) { p.count = w.Len() }
func (p *Population) Value() float64                  { return float64(p.count) }
func (p *Population) Reset()                          { p.count = 0 }

// PeakPopulation reports the largest live body count seen.
type PeakPopulation struct {
	peak int
}

func NewPeakPopulation() *PeakPopulation { return &PeakPopulation{} }

func (p *PeakPopulation) Name() string { return "peak_population" }

func (p *PeakPopulation) Observe(w *sim.World, t float64) {
	if n := w.Len(); n > p.peak {
		p.peak = n
	}
}

func (p *PeakPopulation) Value() float64 { return float64(p.peak) }
func (p *PeakPopulation) Reset()         { p.peak = 0 }
