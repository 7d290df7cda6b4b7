// Package lifecycle changes the body population in response to body-body
// collisions: equal colors annihilate, different colors spawn a sibling.
//
// Requests are buffered for the duration of one collision pass and applied
// by Commit, so the pass never iterates a collection it is modifying.
package lifecycle

import (
	"github.com/san-kum/bouncesim/internal/dynamo"
	"github.com/san-kum/bouncesim/internal/physics"
)

// SpawnDistance is how many radii from the contact point a sibling appears.
const SpawnDistance = 3.0

// Population is the part of a world the controller mutates.
type Population interface {
	Len() int
	RemoveAll(ids map[dynamo.ID]struct{}) int
	Spawn(spec dynamo.BodySpec) (*dynamo.Body, error)
}

type Controller struct {
	offsetScale float64
	maxBodies   int

	removed map[dynamo.ID]struct{}
	spawns  []dynamo.BodySpec

	totalRemoved    int
	totalSpawned    int
	totalSuppressed int
}

// New returns a controller. maxBodies of zero disables the spawn cap.
func New(offsetScale float64, maxBodies int) *Controller {
	return &Controller{
		offsetScale: offsetScale,
		maxBodies:   maxBodies,
		removed:     make(map[dynamo.ID]struct{}),
	}
}

// Removed reports whether id is pending removal in the current pass.
func (c *Controller) Removed(id dynamo.ID) bool {
	_, ok := c.removed[id]
	return ok
}

// OnBodyHit records the population change for a resolved contact between a
// and b and returns the kind of event it represents. live is the body count
// at the start of the pass.
func (c *Controller) OnBodyHit(a, b *dynamo.Body, m physics.Manifold, live int) dynamo.EventKind {
	if a.Color == b.Color {
		c.removed[a.ID] = struct{}{}
		c.removed[b.ID] = struct{}{}
		return dynamo.BodyHitSameColor
	}

	if c.maxBodies > 0 && live-len(c.removed)+len(c.spawns) >= c.maxBodies {
		c.totalSuppressed++
		return dynamo.BodyHitDiffColor
	}

	c.spawns = append(c.spawns, SpawnSpec(a, m, c.offsetScale))
	return dynamo.BodyHitDiffColor
}

// SpawnSpec places a copy of a's radius and color SpawnDistance radii out
// from the contact point along the contact normal.
func SpawnSpec(a *dynamo.Body, m physics.Manifold, offsetScale float64) dynamo.BodySpec {
	return dynamo.BodySpec{
		Pos:    m.Contact.Add(m.Normal.Scale(a.Radius * SpawnDistance)),
		Vel:    m.Normal.Scale(offsetScale),
		Radius: a.Radius,
		Color:  a.Color,
	}
}

// Pending returns the number of buffered removals and spawns.
func (c *Controller) Pending() (removals, spawns int) {
	return len(c.removed), len(c.spawns)
}

// Commit applies buffered removals, then spawns, and clears the buffers.
func (c *Controller) Commit(p Population) error {
	defer c.reset()

	if len(c.removed) > 0 {
		c.totalRemoved += p.RemoveAll(c.removed)
	}
	for _, spec := range c.spawns {
		if _, err := p.Spawn(spec); err != nil {
			return err
		}
		c.totalSpawned++
	}
	return nil
}

func (c *Controller) reset() {
	for id := range c.removed {
		delete(c.removed, id)
	}
	c.spawns = c.spawns[:0]
}

type Stats struct {
	Removed    int
	Spawned    int
	Suppressed int
}

func (c *Controller) Stats() Stats {
	return Stats{Removed: c.totalRemoved, Spawned: c.totalSpawned, Suppressed: c.totalSuppressed}
}
