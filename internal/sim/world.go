package sim

import (
	"fmt"

	"github.com/san-kum/bouncesim/internal/dynamo"
)

// World owns the boundary and the ordered set of live bodies.
type World struct {
	boundary dynamo.Boundary
	bodies   []*dynamo.Body
	nextID   dynamo.ID
}

// NewWorld validates the boundary and every seed body before building the
// world. Configuration errors are reported here, never mid-simulation.
func NewWorld(boundary dynamo.Boundary, seeds []dynamo.BodySpec) (*World, error) {
	if err := boundary.Validate(); err != nil {
		return nil, err
	}
	w := &World{
		boundary: boundary,
		bodies:   make([]*dynamo.Body, 0, len(seeds)),
	}
	for i, spec := range seeds {
		if _, err := w.Spawn(spec); err != nil {
			return nil, fmt.Errorf("seed body %d: %w", i, err)
		}
	}
	return w, nil
}

func (w *World) Boundary() dynamo.Boundary { return w.boundary }

// Bodies returns the live bodies in world order. Callers must not retain
// the slice across a step.
func (w *World) Bodies() []*dynamo.Body { return w.bodies }

func (w *World) Len() int { return len(w.bodies) }

func (w *World) Body(id dynamo.ID) (*dynamo.Body, bool) {
	for _, b := range w.bodies {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

// Spawn appends a new body and returns it with a fresh ID.
func (w *World) Spawn(spec dynamo.BodySpec) (*dynamo.Body, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if spec.Radius >= w.boundary.Radius {
		return nil, fmt.Errorf("%w: radius %f >= boundary radius %f", dynamo.ErrBodyOutside, spec.Radius, w.boundary.Radius)
	}
	w.nextID++
	b := &dynamo.Body{
		ID:     w.nextID,
		Pos:    spec.Pos,
		Vel:    spec.Vel,
		Radius: spec.Radius,
		Color:  spec.Color,
	}
	w.bodies = append(w.bodies, b)
	return b, nil
}

// Remove deletes one body. Unknown IDs are ignored.
func (w *World) Remove(id dynamo.ID) bool {
	return w.RemoveAll(map[dynamo.ID]struct{}{id: {}}) == 1
}

// RemoveAll deletes every body in ids, keeping the order of the rest, and
// returns how many were actually present.
func (w *World) RemoveAll(ids map[dynamo.ID]struct{}) int {
	kept := w.bodies[:0]
	removed := 0
	for _, b := range w.bodies {
		if _, ok := ids[b.ID]; ok {
			removed++
			continue
		}
		kept = append(kept, b)
	}
	for i := len(kept); i < len(w.bodies); i++ {
		w.bodies[i] = nil
	}
	w.bodies = kept
	return removed
}

// Snapshot copies what a renderer needs. Call it between ticks.
func (w *World) Snapshot() []dynamo.BodyView {
	out := make([]dynamo.BodyView, len(w.bodies))
	for i, b := range w.bodies {
		out[i] = dynamo.BodyView{ID: b.ID, Pos: b.Pos, Radius: b.Radius, Color: b.Color}
	}
	return out
}

// Validate reports the first body holding NaN or Inf.
func (w *World) Validate() error {
	for _, b := range w.bodies {
		if !b.IsValid() {
			return fmt.Errorf("%w: body %d", dynamo.ErrInvalidState, b.ID)
		}
	}
	return nil
}
