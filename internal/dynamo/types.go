package dynamo

import (
	"fmt"
	"math"
)

// Integrator advances one body by dt under a constant acceleration.
type Integrator interface {
	Step(b *Body, gravity Vec2, dt float64)
}

// Params are the tunables the engine accepts instead of literals.
type Params struct {
	Gravity             float64  `json:"gravity"`
	Restitution         float64  `json:"restitution"`
	BoundaryRestitution float64  `json:"boundary_restitution"`
	Boundary            Boundary `json:"boundary"`
	Substeps            int      `json:"substeps"`
	SpawnOffsetScale    float64  `json:"spawn_offset_scale"`
	MaxBodies           int      `json:"max_bodies"`
	Lifecycle           bool     `json:"lifecycle"`
}

func DefaultParams() Params {
	return Params{
		Gravity:             500,
		Restitution:         1.01,
		BoundaryRestitution: 1.0,
		Boundary:            Boundary{Center: Vec2{X: 400, Y: 300}, Radius: 280},
		Substeps:            10,
		SpawnOffsetScale:    100,
		MaxBodies:           200,
		Lifecycle:           true,
	}
}

// GravityVec returns gravity as an acceleration on the vertical axis.
func (p Params) GravityVec() Vec2 {
	return Vec2{Y: p.Gravity}
}

func (p Params) Validate() error {
	if err := p.Boundary.Validate(); err != nil {
		return err
	}
	if p.Substeps < 1 {
		return fmt.Errorf("%w: substeps must be >= 1, got %d", ErrInvalidParams, p.Substeps)
	}
	if p.Restitution < 0 || p.BoundaryRestitution < 0 {
		return fmt.Errorf("%w: restitution must be non-negative", ErrInvalidParams)
	}
	if p.MaxBodies < 0 {
		return fmt.Errorf("%w: max bodies must be non-negative, got %d", ErrInvalidParams, p.MaxBodies)
	}
	for _, v := range []float64{p.Gravity, p.Restitution, p.BoundaryRestitution, p.SpawnOffsetScale} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value", ErrInvalidParams)
		}
	}
	return nil
}

// Frame is one recorded sample of a headless run.
type Frame struct {
	Time       float64 `json:"time"`
	Bodies     int     `json:"bodies"`
	Energy     float64 `json:"energy"`
	Momentum   float64 `json:"momentum"`
	Collisions int     `json:"collisions"`
}

type Result struct {
	Frames     []Frame
	Events     []Event
	Final      []BodyView
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
