package metrics

import (
	"github.com/san-kum/bouncesim/internal/sim"
)

// Containment is the fraction of frames in which every body sat inside the
// boundary, within tolerance.
type Containment struct {
	name       string
	tolerance  float64
	violations int
	samples    int
}

func NewContainment(tolerance float64) *Containment {
	return &Containment{
		name:      "containment",
		tolerance: tolerance,
	}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(w *sim.World, t float64) {
	c.samples++
	bd := w.Boundary()
	for _, b := range w.Bodies() {
		if b.Pos.Sub(bd.Center).Length() > bd.MaxDistance(b.Radius)+c.tolerance {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
