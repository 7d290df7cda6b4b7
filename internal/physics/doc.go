// Package physics implements collision detection and response for circular
// bodies inside a circular boundary.
//
// Detection is split into a pluggable broad phase and exact narrow-phase
// tests:
//
//   - [AllPairs]: every unordered pair, O(n²)
//   - [Grid]: uniform spatial hash producing the same pairs in the same order
//   - [Detector]: circle/circle and circle/boundary overlap tests
//   - [Resolver]: equal-mass impulse response and positional correction
//
// Bodies all have unit mass. Resolution of a pair can push either body into a
// third one; that overlap is picked up on the next sub-step, not iterated.
//
//	d := physics.NewDetector(physics.NewGrid(40))
//	r := physics.NewResolver(params)
//	for _, c := range d.DetectBodies(bodies) {
//	    r.ResolveBodies(c.A, c.B)
//	}
package physics
