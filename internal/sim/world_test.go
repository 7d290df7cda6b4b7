package sim

import (
	"errors"
	"testing"

	"github.com/san-kum/bouncesim/internal/dynamo"
)

var testBoundary = dynamo.Boundary{Center: dynamo.V(400, 300), Radius: 280}

func TestNewWorld(t *testing.T) {
	seeds := []dynamo.BodySpec{
		{Pos: dynamo.V(400, 100), Radius: 10, Color: dynamo.Color{255, 0, 0}},
		{Pos: dynamo.V(300, 100), Radius: 10, Color: dynamo.Color{0, 255, 0}},
	}
	w, err := NewWorld(testBoundary, seeds)
	if err != nil {
		t.Fatalf("NewWorld failed: %v", err)
	}
	if w.Len() != 2 {
		t.Errorf("expected 2 bodies, got %d", w.Len())
	}
	if w.Bodies()[0].ID == w.Bodies()[1].ID {
		t.Error("bodies share an ID")
	}
	if w.Boundary() != testBoundary {
		t.Errorf("boundary = %v", w.Boundary())
	}
}

func TestNewWorldInvalid(t *testing.T) {
	tests := []struct {
		name     string
		boundary dynamo.Boundary
		seeds    []dynamo.BodySpec
		want     error
	}{
		{"zero boundary", dynamo.Boundary{Radius: 0}, nil, dynamo.ErrInvalidBoundary},
		{"zero radius body", testBoundary, []dynamo.BodySpec{{Radius: 0}}, dynamo.ErrInvalidBody},
		{"negative radius body", testBoundary, []dynamo.BodySpec{{Radius: -3}}, dynamo.ErrInvalidBody},
		{"body larger than boundary", testBoundary, []dynamo.BodySpec{{Radius: 300}}, dynamo.ErrBodyOutside},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWorld(tt.boundary, tt.seeds)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestWorldRemove(t *testing.T) {
	w, _ := NewWorld(testBoundary, nil)
	a, _ := w.Spawn(dynamo.BodySpec{Radius: 5})
	b, _ := w.Spawn(dynamo.BodySpec{Radius: 6})
	c, _ := w.Spawn(dynamo.BodySpec{Radius: 7})

	if !w.Remove(b.ID) {
		t.Error("expected removal")
	}
	if w.Remove(b.ID) {
		t.Error("second removal should be a no-op")
	}
	if w.Remove(999) {
		t.Error("unknown id should be a no-op")
	}

	bodies := w.Bodies()
	if len(bodies) != 2 || bodies[0] != a || bodies[1] != c {
		t.Errorf("order not preserved: %v", bodies)
	}
	if _, ok := w.Body(b.ID); ok {
		t.Error("removed body still reachable")
	}

	d, _ := w.Spawn(dynamo.BodySpec{Radius: 5})
	if d.ID <= c.ID {
		t.Errorf("ID reused: %d", d.ID)
	}
}

func TestWorldSnapshot(t *testing.T) {
	w, _ := NewWorld(testBoundary, []dynamo.BodySpec{
		{Pos: dynamo.V(1, 2), Radius: 3, Color: dynamo.Color{1, 2, 3}},
	})
	snap := w.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected 1 body, got %d", len(snap))
	}

	w.Bodies()[0].Pos = dynamo.V(50, 50)
	if snap[0].Pos != dynamo.V(1, 2) || snap[0].Radius != 3 || snap[0].Color != (dynamo.Color{1, 2, 3}) {
		t.Errorf("snapshot aliased world state: %+v", snap[0])
	}
}
