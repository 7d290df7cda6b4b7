package physics

import "github.com/san-kum/bouncesim/internal/dynamo"

type ContactKind int

const (
	ContactBody ContactKind = iota
	ContactBoundary
)

func (k ContactKind) String() string {
	if k == ContactBoundary {
		return "body-boundary"
	}
	return "body-body"
}

// Contact is a detected overlap. B is nil for boundary contacts.
type Contact struct {
	Kind ContactKind
	A, B *dynamo.Body
}

// Overlapping reports whether two circles touch or intersect.
func Overlapping(a, b *dynamo.Body) bool {
	r := a.Radius + b.Radius
	return b.Pos.Sub(a.Pos).LengthSquared() <= r*r
}

// OutsideBoundary reports whether b pokes out of the boundary circle.
func OutsideBoundary(b *dynamo.Body, bd dynamo.Boundary) bool {
	return b.Pos.Sub(bd.Center).Length() > bd.MaxDistance(b.Radius)
}

// Detector runs the geometric overlap tests. It never mutates bodies.
type Detector struct {
	broad BroadPhase
}

func NewDetector(broad BroadPhase) *Detector {
	if broad == nil {
		broad = NewAllPairs()
	}
	return &Detector{broad: broad}
}

func (d *Detector) BroadPhase() BroadPhase { return d.broad }

// DetectBodies returns body-body contacts in pair enumeration order.
func (d *Detector) DetectBodies(bodies []*dynamo.Body) []Contact {
	var out []Contact
	for _, p := range d.broad.Pairs(bodies) {
		if Overlapping(p.A, p.B) {
			out = append(out, Contact{Kind: ContactBody, A: p.A, B: p.B})
		}
	}
	return out
}

// DetectBoundary returns boundary contacts in body order.
func (d *Detector) DetectBoundary(bodies []*dynamo.Body, bd dynamo.Boundary) []Contact {
	var out []Contact
	for _, b := range bodies {
		if OutsideBoundary(b, bd) {
			out = append(out, Contact{Kind: ContactBoundary, A: b})
		}
	}
	return out
}

// Detect returns body-body contacts followed by boundary contacts.
func (d *Detector) Detect(bodies []*dynamo.Body, bd dynamo.Boundary) []Contact {
	return append(d.DetectBodies(bodies), d.DetectBoundary(bodies, bd)...)
}
