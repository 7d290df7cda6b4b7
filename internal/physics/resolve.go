package physics

import "github.com/san-kum/bouncesim/internal/dynamo"

// Manifold is the transient geometry of one resolved body-body contact.
type Manifold struct {
	Normal  dynamo.Vec2 // unit, from A to B
	Depth   float64
	Contact dynamo.Vec2 // on A's surface after correction
	Impulse float64
}

// Resolver applies the equal-unit-mass collision response.
type Resolver struct {
	Restitution         float64
	BoundaryRestitution float64
}

func NewResolver(p dynamo.Params) *Resolver {
	return &Resolver{
		Restitution:         p.Restitution,
		BoundaryRestitution: p.BoundaryRestitution,
	}
}

// ResolveBodies separates a and b along the line of centers and, unless they
// are already separating, exchanges an impulse. It reports false and leaves
// both bodies untouched when they do not actually overlap.
func (r *Resolver) ResolveBodies(a, b *dynamo.Body) (Manifold, bool) {
	n, dist := b.Pos.Sub(a.Pos).Direction()
	depth := a.Radius + b.Radius - dist
	if depth <= 0 {
		return Manifold{}, false
	}

	half := n.Scale(depth * 0.5)
	a.Pos = a.Pos.Sub(half)
	b.Pos = b.Pos.Add(half)

	m := Manifold{
		Normal:  n,
		Depth:   depth,
		Contact: a.Pos.Add(n.Scale(a.Radius)),
	}

	vn := b.Vel.Sub(a.Vel).Dot(n)
	if vn >= 0 {
		return m, true
	}

	j := -(1 + r.Restitution) * vn / 2
	impulse := n.Scale(j)
	a.Vel = a.Vel.Sub(impulse)
	b.Vel = b.Vel.Add(impulse)
	m.Impulse = j

	return m, true
}

// ResolveBoundary reflects b off the boundary wall and places it exactly on
// the allowed radius. Velocity is only reflected while moving outward.
func (r *Resolver) ResolveBoundary(b *dynamo.Body, bd dynamo.Boundary) (dynamo.Vec2, bool) {
	n, dist := b.Pos.Sub(bd.Center).Direction()
	limit := bd.MaxDistance(b.Radius)
	if dist <= limit {
		return n, false
	}

	if vn := b.Vel.Dot(n); vn > 0 {
		b.Vel = b.Vel.Sub(n.Scale((1 + r.BoundaryRestitution) * vn))
	}
	b.Pos = bd.Center.Add(n.Scale(limit))

	return n, true
}
