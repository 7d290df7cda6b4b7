package analysis

import (
	"context"
	"math"

	"github.com/san-kum/bouncesim/internal/dynamo"
	"github.com/san-kum/bouncesim/internal/sim"
)

// Separation is the mean distance between bodies that share an ID in two
// worlds. ok is false when they have none in common.
func Separation(a, b *sim.World) (float64, bool) {
	sum := 0.0
	n := 0
	for _, ba := range a.Bodies() {
		bb, ok := b.Body(ba.ID)
		if !ok {
			continue
		}
		sum += ba.Pos.Sub(bb.Pos).Length()
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// DivergenceRate estimates how fast two copies of a scene drift apart when
// one body of the second copy is nudged by perturbation along +X. It is the
// mean of ln(d(t)/d0)/t over frames, a rough largest Lyapunov exponent.
// Frames stop counting once the copies no longer share bodies.
func DivergenceRate(ctx context.Context, build func() (*sim.Simulator, error), perturbation, frameDt, duration float64) (float64, error) {
	base, err := build()
	if err != nil {
		return 0, err
	}
	nudged, err := build()
	if err != nil {
		return 0, err
	}
	bodies := nudged.World().Bodies()
	if len(bodies) == 0 || perturbation <= 0 {
		return 0, nil
	}
	bodies[0].Pos = bodies[0].Pos.Add(dynamo.V(perturbation, 0))
	d0, _ := Separation(base.World(), nudged.World())

	sumRate := 0.0
	count := 0
	for t := 0.0; t < duration; t += frameDt {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		if err := base.Advance(frameDt); err != nil {
			return 0, err
		}
		if err := nudged.Advance(frameDt); err != nil {
			return 0, err
		}

		sep, ok := Separation(base.World(), nudged.World())
		if !ok {
			break
		}
		if sep > 0 {
			sumRate += math.Log(sep/d0) / base.Time()
			count++
		}
	}

	if count == 0 {
		return 0, nil
	}
	return sumRate / float64(count), nil
}
