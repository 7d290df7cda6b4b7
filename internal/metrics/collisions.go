package metrics

import (
	"github.com/san-kum/bouncesim/internal/dynamo"
	"github.com/san-kum/bouncesim/internal/sim"
)

// Collisions counts events of one kind. It is both a sim.Listener and a
// sim.Metric, so register it with AddListener as well as AddMetric.
type Collisions struct {
	kind  dynamo.EventKind
	count int
}

func NewCollisions(kind dynamo.EventKind) *Collisions {
	return &Collisions{kind: kind}
}

func (c *Collisions) Name() string { return "collisions_" + c.kind.String() }

func (c *Collisions) OnEvent(e dynamo.Event) {
	if e.Kind == c.kind {
		c.count++
	}
}

func (c *Collisions) Observe(w *sim.World, t float64) {}

func (c *Collisions) Value() float64 { return float64(c.count) }

func (c *Collisions) Reset() { c.count = 0 }

// Rate is events of every kind per simulated second, measured from t=0 to
// the last observed frame.
type Rate struct {
	count int
	last  float64
}

func NewRate() *Rate { return &Rate{} }

func (r *Rate) Name() string                    { return "collision_rate" }
func (r *Rate) OnEvent(e dynamo.Event)          { r.count++ }
func (r *Rate) Observe(w *sim.World, t float64) { r.last = t }

func (r *Rate) Value() float64 {
	if r.last <= 0 {
		return 0
	}
	return float64(r.count) / r.last
}

func (r *Rate) Reset() { *r = Rate{} }
