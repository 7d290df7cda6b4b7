package integrators

import "github.com/san-kum/bouncesim/internal/dynamo"

// Verlet is velocity Verlet specialised to a constant acceleration, which
// makes it exact for free flight.
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(b *dynamo.Body, gravity dynamo.Vec2, dt float64) {
	b.Pos = b.Pos.Add(b.Vel.Scale(dt)).Add(gravity.Scale(0.5 * dt * dt))
	b.Vel = b.Vel.Add(gravity.Scale(dt))
}

