package physics

import "github.com/san-kum/bouncesim/internal/dynamo"

// Every body has unit mass.

func KineticEnergy(bodies []*dynamo.Body) float64 {
	ke := 0.0
	for _, b := range bodies {
		ke += 0.5 * b.Vel.LengthSquared()
	}
	return ke
}

// PotentialEnergy is measured from y = 0 with gravity pointing along +Y.
func PotentialEnergy(bodies []*dynamo.Body, gravity float64) float64 {
	pe := 0.0
	for _, b := range bodies {
		pe -= gravity * b.Pos.Y
	}
	return pe
}

func Energy(bodies []*dynamo.Body, gravity float64) float64 {
	return KineticEnergy(bodies) + PotentialEnergy(bodies, gravity)
}

func Momentum(bodies []*dynamo.Body) dynamo.Vec2 {
	var p dynamo.Vec2
	for _, b := range bodies {
		p = p.Add(b.Vel)
	}
	return p
}
