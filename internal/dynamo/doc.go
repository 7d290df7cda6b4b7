// Package dynamo provides the core value types shared by the particle engine.
//
// The package defines the data model every other package builds on:
//
//   - [Vec2]: 2D vector in world units (screen space, +Y points down)
//   - [Body]: mutable circular particle with a stable [ID]
//   - [Boundary]: immutable circle that contains every body
//   - [Event]: CollisionOccurred notification raised after resolution
//   - [Params]: tunables (gravity, restitution, substeps, ...)
//   - [Integrator]: per-body time stepper
//
// # Example
//
//	p := dynamo.DefaultParams()
//	w, _ := sim.NewWorld(p.Boundary, seeds)
//	s, _ := sim.New(w, integrators.NewEuler(), p)
//	_ = s.Advance(1.0 / 60)
//
// # Thread Safety
//
// Nothing in this package is synchronized. A world and its bodies belong to
// the single goroutine that steps it.
package dynamo
