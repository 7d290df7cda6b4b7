package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/bouncesim/internal/dynamo"
	"github.com/san-kum/bouncesim/internal/lifecycle"
	"github.com/san-kum/bouncesim/internal/physics"
)

// Simulator runs fixed-size physics sub-steps over a World:
// integrate -> resolve pairs -> lifecycle -> resolve boundary -> dispatch events.
type Simulator struct {
	world      *World
	params     dynamo.Params
	gravity    dynamo.Vec2
	integrator dynamo.Integrator
	detector   *physics.Detector
	resolver   *physics.Resolver
	lifecycle  *lifecycle.Controller
	metrics    []Metric
	observers  []Observer
	listeners  []Listener
	events     []dynamo.Event
	t          float64
	steps      int
}

type Option func(*Simulator)

// WithBroadPhase swaps the pair enumeration strategy.
func WithBroadPhase(bp physics.BroadPhase) Option {
	return func(s *Simulator) { s.detector = physics.NewDetector(bp) }
}

// New builds a simulator. The lifecycle controller is only installed when
// p.Lifecycle is set.
func New(w *World, integrator dynamo.Integrator, p dynamo.Params, opts ...Option) (*Simulator, error) {
	if w == nil || integrator == nil {
		return nil, fmt.Errorf("%w: world and integrator are required", dynamo.ErrInvalidParams)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s := &Simulator{
		world:      w,
		params:     p,
		gravity:    p.GravityVec(),
		integrator: integrator,
		detector:   physics.NewDetector(nil),
		resolver:   physics.NewResolver(p),
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		listeners:  make([]Listener, 0),
	}
	if p.Lifecycle {
		s.lifecycle = lifecycle.New(p.SpawnOffsetScale, p.MaxBodies)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Simulator) AddMetric(m Metric)          { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)      { s.observers = append(s.observers, o) }
func (s *Simulator) AddListener(l Listener)      { s.listeners = append(s.listeners, l) }
func (s *Simulator) World() *World               { return s.world }
func (s *Simulator) Params() dynamo.Params       { return s.params }
func (s *Simulator) Time() float64               { return s.t }
func (s *Simulator) StepsTaken() int             { return s.steps }
func (s *Simulator) Detector() *physics.Detector { return s.detector }

func (s *Simulator) LifecycleStats() lifecycle.Stats {
	if s.lifecycle == nil {
		return lifecycle.Stats{}
	}
	return s.lifecycle.Stats()
}

// SetGravity changes gravity between ticks.
func (s *Simulator) SetGravity(g float64) error {
	p := s.params
	p.Gravity = g
	if err := p.Validate(); err != nil {
		return err
	}
	s.params = p
	s.gravity = p.GravityVec()
	return nil
}

// SetRestitution changes the body-body restitution between ticks.
func (s *Simulator) SetRestitution(e float64) error {
	p := s.params
	p.Restitution = e
	if err := p.Validate(); err != nil {
		return err
	}
	s.params = p
	s.resolver.Restitution = e
	return nil
}

// Step runs n sub-steps of size dt. Invalid arguments are rejected before
// anything is mutated.
func (s *Simulator) Step(dt float64, n int) error {
	if !(dt > 0) || math.IsInf(dt, 0) || n < 1 {
		return fmt.Errorf("%w: dt=%g substeps=%d", dynamo.ErrInvalidStep, dt, n)
	}
	for i := 0; i < n; i++ {
		if err := s.substep(dt); err != nil {
			return err
		}
	}
	return nil
}

// Advance splits one frame's elapsed time evenly across the configured
// number of sub-steps.
func (s *Simulator) Advance(frameDt float64) error {
	return s.Step(frameDt/float64(s.params.Substeps), s.params.Substeps)
}

func (s *Simulator) substep(dt float64) error {
	bodies := s.world.Bodies()
	live := len(bodies)

	for _, b := range bodies {
		s.integrator.Step(b, s.gravity, dt)
	}

	s.t += dt
	s.steps++
	s.events = s.events[:0]

	for _, c := range s.detector.DetectBodies(bodies) {
		if s.removed(c.A) || s.removed(c.B) {
			continue
		}
		m, ok := s.resolver.ResolveBodies(c.A, c.B)
		if !ok {
			continue
		}
		kind := dynamo.BodyHitDiffColor
		if c.A.Color == c.B.Color {
			kind = dynamo.BodyHitSameColor
		}
		if s.lifecycle != nil {
			kind = s.lifecycle.OnBodyHit(c.A, c.B, m, live)
		}
		s.events = append(s.events, dynamo.Event{Kind: kind, A: c.A.ID, B: c.B.ID, Time: s.t})
	}

	if s.lifecycle != nil {
		if removals, spawns := s.lifecycle.Pending(); removals+spawns > 0 {
			if err := s.lifecycle.Commit(s.world); err != nil {
				return err
			}
		}
	}

	// boundary runs last so neither pair corrections nor spawns leave a body outside
	boundary := s.world.Boundary()
	for _, c := range s.detector.DetectBoundary(s.world.Bodies(), boundary) {
		if _, ok := s.resolver.ResolveBoundary(c.A, boundary); ok {
			s.events = append(s.events, dynamo.Event{Kind: dynamo.BoundaryHit, A: c.A.ID, Time: s.t})
		}
	}

	for _, e := range s.events {
		for _, l := range s.listeners {
			l.OnEvent(e)
		}
	}
	return nil
}

func (s *Simulator) removed(b *dynamo.Body) bool {
	return s.lifecycle != nil && s.lifecycle.Removed(b.ID)
}

func (s *Simulator) validateConfig(cfg Config) error {
	if !(cfg.FrameDt > 0) {
		return fmt.Errorf("frame dt must be positive, got %f", cfg.FrameDt)
	}
	if !(cfg.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}

// Run advances the world frame by frame without a presenter, recording one
// Frame per tick along with every event.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*dynamo.Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	frames := int(math.Round(cfg.Duration / cfg.FrameDt))
	result := &dynamo.Result{
		Frames:  make([]dynamo.Frame, 0, frames+1),
		Events:  make([]dynamo.Event, 0),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	log := &EventLog{}
	s.AddListener(log)
	defer s.removeListener(log)

	result.Frames = append(result.Frames, s.frame(0))

	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		before := len(log.Events)
		if err := s.Advance(cfg.FrameDt); err != nil {
			return result, err
		}

		if cfg.ValidateState {
			if err := s.world.Validate(); err != nil {
				result.Errors = append(result.Errors, dynamo.SimError{Time: s.t, Step: s.steps, Message: err.Error()})
				break
			}
		}

		for _, m := range s.metrics {
			m.Observe(s.world, s.t)
		}
		for _, o := range s.observers {
			o.OnFrame(s.world, s.t)
		}

		result.Frames = append(result.Frames, s.frame(len(log.Events)-before))
	}

	result.Events = append(result.Events, log.Events...)
	result.Final = s.world.Snapshot()
	result.StepsTaken = s.steps
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// RunWithCallback drives the world at a fixed frame dt until the callback
// returns false or ctx is canceled.
func (s *Simulator) RunWithCallback(ctx context.Context, frameDt float64, callback func(w *World, t float64) bool) error {
	if !(frameDt > 0) {
		return fmt.Errorf("frame dt must be positive, got %f", frameDt)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(s.world, s.t) {
			return nil
		}
		if err := s.Advance(frameDt); err != nil {
			return err
		}
	}
}

func (s *Simulator) frame(collisions int) dynamo.Frame {
	bodies := s.world.Bodies()
	return dynamo.Frame{
		Time:       s.t,
		Bodies:     len(bodies),
		Energy:     physics.Energy(bodies, s.params.Gravity),
		Momentum:   physics.Momentum(bodies).Length(),
		Collisions: collisions,
	}
}

func (s *Simulator) removeListener(l Listener) {
	for i, x := range s.listeners {
		if x == l {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}
