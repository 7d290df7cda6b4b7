package dynamo

import "math"

// Epsilon is the minimal distance substituted for a zero-length separation.
const Epsilon = 1e-9

type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2        { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2        { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2   { return Vec2{X: v.X * f, Y: v.Y * f} }
func (v Vec2) Dot(o Vec2) float64     { return v.X*o.X + v.Y*o.Y }
func (v Vec2) LengthSquared() float64 { return v.X*v.X + v.Y*v.Y }
func (v Vec2) Length() float64        { return math.Sqrt(v.LengthSquared()) }

func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Direction returns the unit vector of v and its length. A zero vector yields
// the +X axis and a length of Epsilon.
func (v Vec2) Direction() (Vec2, float64) {
	d := v.Length()
	if d == 0 {
		return Vec2{X: 1}, Epsilon
	}
	inv := 1.0 / d
	return Vec2{X: v.X * inv, Y: v.Y * inv}, d
}
