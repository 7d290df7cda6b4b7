package integrators

import "github.com/san-kum/bouncesim/internal/dynamo"

// Euler is the semi-implicit (symplectic) Euler step: velocity first, then
// position with the updated velocity.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(b *dynamo.Body, gravity dynamo.Vec2, dt float64) {
	b.Vel = b.Vel.Add(gravity.Scale(dt))
	b.Pos = b.Pos.Add(b.Vel.Scale(dt))
}
