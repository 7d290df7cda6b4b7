package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/bouncesim/internal/dynamo"
	"github.com/san-kum/bouncesim/internal/integrators"
	"github.com/san-kum/bouncesim/internal/metrics"
	"github.com/san-kum/bouncesim/internal/physics"
	"github.com/san-kum/bouncesim/internal/sim"
)

type Registry struct {
	integrators map[string]func() dynamo.Integrator
	broadphases map[string]func(cellSize float64) physics.BroadPhase
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
		broadphases: make(map[string]func(float64) physics.BroadPhase),
	}

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["verlet"] = func() dynamo.Integrator { return integrators.NewVerlet() }

	r.broadphases["allpairs"] = func(float64) physics.BroadPhase { return physics.NewAllPairs() }
	r.broadphases["grid"] = func(cell float64) physics.BroadPhase { return physics.NewGrid(cell) }

	return r
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetBroadPhase(name string, cellSize float64) (physics.BroadPhase, error) {
	fn, ok := r.broadphases[name]
	if !ok {
		return nil, fmt.Errorf("unknown broadphase: %s", name)
	}
	return fn(cellSize), nil
}

func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }
func (r *Registry) ListBroadPhases() []string { return sortedKeys(r.broadphases) }

func (r *Registry) DefaultMetrics(gravity float64) []sim.Metric {
	return []sim.Metric{
		metrics.NewEnergy(gravity),
		metrics.NewEnergyDrift(gravity),
		metrics.NewContainment(1e-6),
		metrics.NewPopulation(),
		metrics.NewPeakPopulation(),
		metrics.NewCollisions(dynamo.BoundaryHit),
		metrics.NewCollisions(dynamo.BodyHitSameColor),
		metrics.NewCollisions(dynamo.BodyHitDiffColor),
		metrics.NewRate(),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
