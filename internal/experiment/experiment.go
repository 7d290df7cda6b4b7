package experiment

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/san-kum/bouncesim/internal/config"
	"github.com/san-kum/bouncesim/internal/dynamo"
	"github.com/san-kum/bouncesim/internal/sim"
)

// Experiment is a headless run of one configured scene.
type Experiment struct {
	cfg        *config.Config
	simulator  *sim.Simulator
	randSource *rand.Rand
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{
		cfg:        cfg,
		randSource: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Build turns a config into a ready simulator with the configured
// integrator and broad phase. No metrics are attached.
func Build(cfg *config.Config, reg *Registry, rng *rand.Rand) (*sim.Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	integrator, err := reg.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	broad, err := reg.GetBroadPhase(cfg.BroadPhase, cfg.GridCell)
	if err != nil {
		return nil, err
	}
	seeds, err := cfg.Seeds(rng)
	if err != nil {
		return nil, err
	}
	p := cfg.Params()
	w, err := sim.NewWorld(p.Boundary, seeds)
	if err != nil {
		return nil, err
	}
	return sim.New(w, integrator, p, sim.WithBroadPhase(broad))
}

// Setup builds the simulator and attaches metrics. Metrics that also listen
// for collision events are registered as listeners.
func (e *Experiment) Setup(reg *Registry, metrics []sim.Metric) error {
	s, err := Build(e.cfg, reg, e.randSource)
	if err != nil {
		return err
	}
	for _, m := range metrics {
		s.AddMetric(m)
		if l, ok := m.(sim.Listener); ok {
			s.AddListener(l)
		}
	}
	e.simulator = s
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	simCfg := sim.Config{
		FrameDt:       e.cfg.FrameDt(),
		Duration:      e.cfg.Duration,
		Seed:          e.cfg.Seed,
		ValidateState: true,
	}

	return e.simulator.Run(ctx, simCfg)
}

// Simulator is nil until Setup succeeds.
func (e *Experiment) Simulator() *sim.Simulator {
	return e.simulator
}

// Ensemble runs the same scene under consecutive seeds, one world per
// goroutine.
func Ensemble(ctx context.Context, cfg *config.Config, reg *Registry, runs int) ([]*dynamo.Result, error) {
	factory := func(seed int64) (*sim.Simulator, error) {
		c := *cfg
		c.Seed = seed
		s, err := Build(&c, reg, rand.New(rand.NewSource(seed)))
		if err != nil {
			return nil, err
		}
		for _, m := range reg.DefaultMetrics(c.Gravity) {
			s.AddMetric(m)
			if l, ok := m.(sim.Listener); ok {
				s.AddListener(l)
			}
		}
		return s, nil
	}
	simCfg := sim.Config{FrameDt: cfg.FrameDt(), Duration: cfg.Duration, ValidateState: true}
	return sim.NewEnsemble(factory, runs, cfg.Seed).Run(ctx, simCfg)
}
