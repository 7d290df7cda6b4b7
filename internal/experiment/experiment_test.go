package experiment

import (
	"context"
	"math/rand"
	"testing"

	"github.com/san-kum/bouncesim/internal/config"
	"github.com/san-kum/bouncesim/internal/sim"
)

type frameCounter func()

func (f frameCounter) OnFrame(*sim.World, float64) { f() }

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	for _, name := range reg.ListIntegrators() {
		if _, err := reg.GetIntegrator(name); err != nil {
			t.Errorf("integrator %s: %v", name, err)
		}
	}
	for _, name := range reg.ListBroadPhases() {
		bp, err := reg.GetBroadPhase(name, 16)
		if err != nil {
			t.Errorf("broadphase %s: %v", name, err)
			continue
		}
		if bp.Name() != name {
			t.Errorf("broadphase %s reports name %s", name, bp.Name())
		}
	}

	if _, err := reg.GetIntegrator("rk4"); err == nil {
		t.Error("expected error for unknown integrator")
	}
	if _, err := reg.GetBroadPhase("octree", 0); err == nil {
		t.Error("expected error for unknown broadphase")
	}
}

func TestBuild(t *testing.T) {
	cfg := config.GetPreset("trio")
	s, err := Build(cfg, NewRegistry(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if s.World().Len() != 3 {
		t.Errorf("expected 3 bodies, got %d", s.World().Len())
	}

	cfg.Integrator = "nope"
	if _, err := Build(cfg, NewRegistry(), rand.New(rand.NewSource(1))); err == nil {
		t.Error("expected error for unknown integrator")
	}
}

func TestExperimentRun(t *testing.T) {
	cfg := config.GetPreset("trio")
	cfg.Duration = 2.0

	exp := New(cfg)
	if _, err := exp.Run(context.Background()); err == nil {
		t.Error("expected error before setup")
	}
	if exp.Simulator() != nil {
		t.Error("expected no simulator before setup")
	}

	reg := NewRegistry()
	if err := exp.Setup(reg, reg.DefaultMetrics(cfg.Gravity)); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	frames := 0
	exp.Simulator().AddObserver(frameCounter(func() { frames++ }))

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Frames) != 121 {
		t.Errorf("expected 121 frames, got %d", len(result.Frames))
	}
	if frames != 120 {
		t.Errorf("observer saw %d frames, want 120", frames)
	}
	if result.Metrics["containment"] != 1.0 {
		t.Errorf("bodies left the boundary: containment %f", result.Metrics["containment"])
	}
	if result.Metrics["population"] != float64(len(result.Final)) {
		t.Errorf("population metric %f != final %d", result.Metrics["population"], len(result.Final))
	}
	if result.Metrics["collisions_boundary"] == 0 {
		t.Error("expected boundary hits after two seconds of free fall")
	}
}

func TestGridMatchesAllPairs(t *testing.T) {
	cfg := config.GetPreset("crowd")
	cfg.Duration = 1.0

	run := func(broad string) int {
		c := *cfg
		c.BroadPhase = broad
		exp := New(&c)
		if err := exp.Setup(NewRegistry(), nil); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		result, err := exp.Run(context.Background())
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		return len(result.Events)
	}

	if a, g := run("allpairs"), run("grid"); a != g {
		t.Errorf("allpairs produced %d events, grid %d", a, g)
	}
}

func TestEnsemble(t *testing.T) {
	cfg := config.GetPreset("rain")
	cfg.Duration = 0.5

	results, err := Ensemble(context.Background(), cfg, NewRegistry(), 3)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if len(r.Frames) != 31 {
			t.Errorf("run %d: expected 31 frames, got %d", i, len(r.Frames))
		}
	}
}
