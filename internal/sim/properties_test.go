package sim

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/bouncesim/internal/dynamo"
	"github.com/san-kum/bouncesim/internal/integrators"
)

var (
	red   = dynamo.Color{255, 0, 0}
	green = dynamo.Color{0, 255, 0}
)

func build(p dynamo.Params, seeds ...dynamo.BodySpec) *Simulator {
	w, err := NewWorld(p.Boundary, seeds)
	Expect(err).NotTo(HaveOccurred())
	s, err := New(w, integrators.NewEuler(), p)
	Expect(err).NotTo(HaveOccurred())
	return s
}

func weightless() dynamo.Params {
	p := dynamo.DefaultParams()
	p.Gravity = 0
	return p
}

func body(x, y, vx, vy float64, c dynamo.Color) dynamo.BodySpec {
	return dynamo.BodySpec{Pos: dynamo.V(x, y), Vel: dynamo.V(vx, vy), Radius: 10, Color: c}
}

var _ = Describe("Simulator", func() {
	Describe("integration", func() {
		It("follows free fall inside a far-away boundary", func() {
			p := dynamo.DefaultParams()
			p.Boundary = dynamo.Boundary{Center: dynamo.V(0, 0), Radius: 1e6}
			s := build(p, body(0, 0, 0, 0, red))

			for i := 0; i < 60; i++ {
				Expect(s.Advance(1.0 / 60)).To(Succeed())
			}

			b := s.World().Bodies()[0]
			Expect(b.Vel.Y).To(BeNumerically("~", p.Gravity*1.0, 1e-6))
			Expect(b.Pos.Y).To(BeNumerically("~", 0.5*p.Gravity, 1.0))
			Expect(b.Pos.X).To(BeZero())
		})
	})

	Describe("containment", func() {
		It("keeps every body inside the boundary after each frame", func() {
			p := dynamo.DefaultParams()
			s := build(p,
				body(400, 100, 0, 0, red),
				body(300, 100, 0, 0, green),
				body(500, 100, 0, 0, dynamo.Color{0, 0, 255}),
			)

			for i := 0; i < 600; i++ {
				Expect(s.Advance(1.0 / 60)).To(Succeed())
				for _, b := range s.World().Bodies() {
					dist := b.Pos.Sub(p.Boundary.Center).Length()
					Expect(dist).To(BeNumerically("<=", p.Boundary.MaxDistance(b.Radius)+1e-9))
				}
			}
		})
	})

	Describe("body-body resolution", func() {
		It("separates an overlapping pair to exactly touching", func() {
			p := weightless()
			p.Lifecycle = false
			s := build(p, body(390, 300, 0, 0, red), body(405, 300, 0, 0, green))

			Expect(s.Step(1e-6, 1)).To(Succeed())

			bodies := s.World().Bodies()
			Expect(bodies[1].Pos.Sub(bodies[0].Pos).Length()).To(BeNumerically("~", 20, 1e-9))
		})

		It("preserves relative speed along the normal with restitution 1", func() {
			p := weightless()
			p.Lifecycle = false
			p.Restitution = 1
			s := build(p, body(390, 300, 50, 0, red), body(405, 300, -50, 0, green))

			Expect(s.Step(1e-6, 1)).To(Succeed())

			bodies := s.World().Bodies()
			Expect(bodies[0].Vel.X).To(BeNumerically("~", -50, 1e-9))
			Expect(bodies[1].Vel.X).To(BeNumerically("~", 50, 1e-9))
		})

		It("leaves a separating pair's velocities alone", func() {
			p := weightless()
			p.Lifecycle = false
			s := build(p, body(390, 300, -5, 0, red), body(405, 300, 5, 0, green))

			Expect(s.Step(1e-6, 1)).To(Succeed())

			bodies := s.World().Bodies()
			Expect(bodies[0].Vel).To(Equal(dynamo.V(-5, 0)))
			Expect(bodies[1].Vel).To(Equal(dynamo.V(5, 0)))
		})
	})

	Describe("lifecycle", func() {
		var events *EventLog

		BeforeEach(func() {
			events = &EventLog{}
		})

		It("annihilates a same-color pair", func() {
			s := build(weightless(),
				body(390, 300, 0, 0, red),
				body(405, 300, 0, 0, red),
				body(400, 450, 0, 0, green),
			)
			s.AddListener(events)

			Expect(s.Step(1e-9, 1)).To(Succeed())

			Expect(s.World().Len()).To(Equal(1))
			Expect(s.World().Bodies()[0].Color).To(Equal(green))
			Expect(events.Count(dynamo.BodyHitSameColor)).To(Equal(1))
		})

		It("spawns a sibling of the first body for a different-color pair", func() {
			s := build(weightless(), body(390, 300, 0, 0, red), body(405, 300, 0, 0, green))
			s.AddListener(events)

			Expect(s.Step(1e-9, 1)).To(Succeed())

			Expect(s.World().Len()).To(Equal(3))
			child := s.World().Bodies()[2]
			Expect(child.Color).To(Equal(red))
			Expect(child.Radius).To(Equal(10.0))
			Expect(child.Pos.X).To(BeNumerically("~", 427.5, 1e-6))
			Expect(child.Pos.Y).To(BeNumerically("~", 300, 1e-6))
			Expect(events.Count(dynamo.BodyHitDiffColor)).To(Equal(1))
			Expect(s.LifecycleStats().Spawned).To(Equal(1))
		})

		It("skips pairs whose bodies were removed earlier in the pass", func() {
			s := build(weightless(),
				body(380, 300, 0, 0, red),
				body(395, 300, 0, 0, red),
				body(412, 300, 0, 0, green),
			)
			s.AddListener(events)

			Expect(s.Step(1e-9, 1)).To(Succeed())

			Expect(s.World().Len()).To(Equal(1))
			Expect(s.World().Bodies()[0].Color).To(Equal(green))
			Expect(events.Events).To(HaveLen(1))
			Expect(events.Events[0].Kind).To(Equal(dynamo.BodyHitSameColor))
		})

		It("stops spawning once the population cap is reached", func() {
			p := weightless()
			p.MaxBodies = 2
			s := build(p, body(390, 300, 0, 0, red), body(405, 300, 0, 0, green))
			s.AddListener(events)

			Expect(s.Step(1e-9, 1)).To(Succeed())

			Expect(s.World().Len()).To(Equal(2))
			Expect(events.Count(dynamo.BodyHitDiffColor)).To(Equal(1))
			Expect(s.LifecycleStats().Suppressed).To(Equal(1))
		})
	})

	Describe("detection", func() {
		It("is idempotent and does not mutate bodies", func() {
			s := build(weightless(),
				body(390, 300, 1, 2, red),
				body(405, 300, 3, 4, green),
				body(400, 575, 0, 0, red),
			)
			bodies := s.World().Bodies()
			before := make([]dynamo.Body, len(bodies))
			for i, b := range bodies {
				before[i] = *b
			}

			first := s.Detector().Detect(bodies, s.World().Boundary())
			second := s.Detector().Detect(bodies, s.World().Boundary())

			Expect(second).To(Equal(first))
			Expect(first).To(HaveLen(2))
			for i, b := range bodies {
				Expect(*b).To(Equal(before[i]))
			}
		})
	})

	Describe("stepWorld", func() {
		It("rejects non-finite sub-step sizes", func() {
			s := build(weightless(), body(400, 300, 0, 0, red))
			Expect(s.Step(math.NaN(), 1)).To(MatchError(dynamo.ErrInvalidStep))
			Expect(s.Step(math.Inf(1), 1)).To(MatchError(dynamo.ErrInvalidStep))
			Expect(s.StepsTaken()).To(BeZero())
		})
	})
})
