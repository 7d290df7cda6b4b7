package dynamo

import "fmt"

// ID identifies a body for the lifetime of its world. IDs are never reused.
type ID uint64

// Color is an RGB triple. Equality drives the annihilate/spawn rules.
type Color [3]uint8

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

type Body struct {
	ID     ID
	Pos    Vec2
	Vel    Vec2
	Radius float64
	Color  Color
}

func (b *Body) IsValid() bool {
	return b.Radius > 0 && b.Pos.IsFinite() && b.Vel.IsFinite()
}

// BodySpec describes a body before a world assigns it an ID.
type BodySpec struct {
	Pos    Vec2
	Vel    Vec2
	Radius float64
	Color  Color
}

func (s BodySpec) Validate() error {
	if !(s.Radius > 0) {
		return fmt.Errorf("%w: radius must be positive, got %f", ErrInvalidBody, s.Radius)
	}
	if !s.Pos.IsFinite() || !s.Vel.IsFinite() {
		return fmt.Errorf("%w: non-finite position or velocity", ErrInvalidBody)
	}
	return nil
}

// BodyView is the read-only projection handed to renderers.
type BodyView struct {
	ID     ID      `json:"id"`
	Pos    Vec2    `json:"pos"`
	Radius float64 `json:"radius"`
	Color  Color   `json:"color"`
}

// Boundary is the static circle every body must stay inside.
type Boundary struct {
	Center Vec2    `json:"center"`
	Radius float64 `json:"radius"`
}

func (b Boundary) Validate() error {
	if !(b.Radius > 0) || !b.Center.IsFinite() {
		return fmt.Errorf("%w: radius %f", ErrInvalidBoundary, b.Radius)
	}
	return nil
}

// MaxDistance is the furthest a body of radius r may sit from the center.
func (b Boundary) MaxDistance(r float64) float64 {
	return b.Radius - r
}
