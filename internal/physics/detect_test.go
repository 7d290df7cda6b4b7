package physics

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/san-kum/bouncesim/internal/dynamo"
)

func body(id dynamo.ID, x, y, r float64) *dynamo.Body {
	return &dynamo.Body{ID: id, Pos: dynamo.V(x, y), Radius: r}
}

var testBoundary = dynamo.Boundary{Center: dynamo.V(0, 0), Radius: 100}

func TestOverlapping(t *testing.T) {
	tests := []struct {
		name string
		a, b *dynamo.Body
		want bool
	}{
		{"apart", body(1, 0, 0, 1), body(2, 3, 0, 1), false},
		{"touching", body(1, 0, 0, 1), body(2, 2, 0, 1), true},
		{"intersecting", body(1, 0, 0, 1), body(2, 1, 1, 1), true},
		{"coincident", body(1, 5, 5, 1), body(2, 5, 5, 2), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlapping(tt.a, tt.b); got != tt.want {
				t.Errorf("Overlapping() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOutsideBoundary(t *testing.T) {
	tests := []struct {
		name string
		b    *dynamo.Body
		want bool
	}{
		{"center", body(1, 0, 0, 10), false},
		{"exactly on limit", body(1, 90, 0, 10), false},
		{"just past limit", body(1, 90.5, 0, 10), true},
		{"far outside", body(1, 0, -500, 10), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutsideBoundary(tt.b, testBoundary); got != tt.want {
				t.Errorf("OutsideBoundary() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectorOrder(t *testing.T) {
	bodies := []*dynamo.Body{
		body(1, 0, 0, 5),
		body(2, 8, 0, 5),
		body(3, 16, 0, 5),
		body(4, 0, 99, 5),
	}

	contacts := NewDetector(nil).Detect(bodies, testBoundary)
	if len(contacts) != 3 {
		t.Fatalf("expected 3 contacts, got %d", len(contacts))
	}

	want := []struct {
		kind ContactKind
		a, b dynamo.ID
	}{
		{ContactBody, 1, 2},
		{ContactBody, 2, 3},
		{ContactBoundary, 4, 0},
	}
	for i, w := range want {
		c := contacts[i]
		if c.Kind != w.kind || c.A.ID != w.a {
			t.Errorf("contact %d = %s(%d), want %s(%d)", i, c.Kind, c.A.ID, w.kind, w.a)
		}
		if w.kind == ContactBody && c.B.ID != w.b {
			t.Errorf("contact %d B = %d, want %d", i, c.B.ID, w.b)
		}
		if w.kind == ContactBoundary && c.B != nil {
			t.Errorf("boundary contact %d has B set", i)
		}
	}
}

func randomBodies(rng *rand.Rand, n int) []*dynamo.Body {
	bodies := make([]*dynamo.Body, n)
	for i := range bodies {
		bodies[i] = body(dynamo.ID(i+1), rng.Float64()*200-100, rng.Float64()*200-100, 2+rng.Float64()*8)
	}
	return bodies
}

func contactKeys(cs []Contact) [][3]dynamo.ID {
	keys := make([][3]dynamo.ID, len(cs))
	for i, c := range cs {
		keys[i] = [3]dynamo.ID{dynamo.ID(c.Kind), c.A.ID, 0}
		if c.B != nil {
			keys[i][2] = c.B.ID
		}
	}
	return keys
}

func TestDetectIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	bodies := randomBodies(rng, 60)
	before := make([]dynamo.Body, len(bodies))
	for i, b := range bodies {
		before[i] = *b
	}

	d := NewDetector(nil)
	first := contactKeys(d.Detect(bodies, testBoundary))
	second := contactKeys(d.Detect(bodies, testBoundary))

	if !reflect.DeepEqual(first, second) {
		t.Error("detection is not idempotent")
	}
	for i, b := range bodies {
		if *b != before[i] {
			t.Fatalf("detection mutated body %d", b.ID)
		}
	}
}

func TestGridMatchesAllPairs(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		rng := rand.New(rand.NewSource(seed))
		bodies := randomBodies(rng, 80)

		want := contactKeys(NewDetector(NewAllPairs()).DetectBodies(bodies))
		got := contactKeys(NewDetector(NewGrid(16)).DetectBodies(bodies))

		if !reflect.DeepEqual(want, got) {
			t.Errorf("seed %d: grid found %d contacts, all-pairs %d", seed, len(got), len(want))
		}
	}
}

func TestAllPairsCount(t *testing.T) {
	bodies := randomBodies(rand.New(rand.NewSource(1)), 10)
	if got := len(NewAllPairs().Pairs(bodies)); got != 45 {
		t.Errorf("expected 45 pairs, got %d", got)
	}
	if got := len(NewAllPairs().Pairs(nil)); got != 0 {
		t.Errorf("expected 0 pairs, got %d", got)
	}
}
