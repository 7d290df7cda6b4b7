package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/bouncesim/internal/dynamo"
)

func freeFall(integ dynamo.Integrator, g, duration float64, steps int) dynamo.Body {
	b := dynamo.Body{Radius: 1}
	dt := duration / float64(steps)
	gv := dynamo.Vec2{Y: g}
	for i := 0; i < steps; i++ {
		integ.Step(&b, gv, dt)
	}
	return b
}

func TestFreeFallAccuracy(t *testing.T) {
	const g, duration = 500.0, 1.0

	tests := []struct {
		name   string
		integ  dynamo.Integrator
		steps  int
		posTol float64
	}{
		{"euler", NewEuler(), 6000, 0.1},
		{"verlet", NewVerlet(), 600, 1e-6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := freeFall(tt.integ, g, duration, tt.steps)

			if math.Abs(b.Vel.Y-g*duration) > 1e-6 {
				t.Errorf("velocity error too large: got %.6f, expected %.6f", b.Vel.Y, g*duration)
			}
			wantY := 0.5 * g * duration * duration
			if math.Abs(b.Pos.Y-wantY) > tt.posTol {
				t.Errorf("position error too large: got %.6f, expected %.6f", b.Pos.Y, wantY)
			}
			if b.Pos.X != 0 || b.Vel.X != 0 {
				t.Errorf("horizontal drift: pos %v vel %v", b.Pos, b.Vel)
			}
		})
	}
}

func TestEulerOrder(t *testing.T) {
	b := dynamo.Body{Radius: 1, Vel: dynamo.V(2, 0)}
	NewEuler().Step(&b, dynamo.Vec2{Y: 10}, 0.1)

	// velocity is updated before position
	if b.Vel != dynamo.V(2, 1) {
		t.Errorf("unexpected velocity %v", b.Vel)
	}
	if math.Abs(b.Pos.X-0.2) > 1e-12 || math.Abs(b.Pos.Y-0.1) > 1e-12 {
		t.Errorf("unexpected position %v", b.Pos)
	}
}
