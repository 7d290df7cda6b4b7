package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/bouncesim/internal/config"
	"github.com/san-kum/bouncesim/internal/experiment"
)

// Tunable lists the scene parameters a search may vary.
var Tunable = []string{"gravity", "restitution", "boundary_restitution", "spawn_offset_scale"}

func apply(cfg *config.Config, name string, v float64) error {
	switch name {
	case "gravity":
		cfg.Gravity = v
	case "restitution":
		cfg.Restitution = v
	case "boundary_restitution":
		cfg.BoundaryRestitution = v
	case "spawn_offset_scale":
		cfg.SpawnOffsetScale = v
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	return nil
}

// GridSearch tries every combination of the given values and keeps the one
// whose run scores best on a single metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	Maximize   bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search runs one headless experiment per grid point and returns the best
// parameter set with its metric value.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, reg *experiment.Registry, metricName string) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("%d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}
	for _, name := range g.paramNames {
		if err := apply(&config.Config{}, name, 0); err != nil {
			return nil, 0, err
		}
	}

	best := math.Inf(1)
	if g.Maximize {
		best = math.Inf(-1)
	}
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) error {
		val, err := g.evaluate(ctx, base, reg, params, metricName)
		if err != nil {
			return err
		}
		if (g.Maximize && val > best) || (!g.Maximize && val < best) {
			best = val
			bestParams = make(map[string]float64, len(params))
			for k, v := range params {
				bestParams[k] = v
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return bestParams, best, nil
}

func (g *GridSearch) evaluate(ctx context.Context, base *config.Config, reg *experiment.Registry, params map[string]float64, metricName string) (float64, error) {
	cfg := *base
	for k, v := range params {
		if err := apply(&cfg, k, v); err != nil {
			return 0, err
		}
	}
	exp := experiment.New(&cfg)
	if err := exp.Setup(reg, reg.DefaultMetrics(cfg.Gravity)); err != nil {
		return 0, err
	}
	result, err := exp.Run(ctx)
	if err != nil {
		return 0, err
	}
	val, ok := result.Metrics[metricName]
	if !ok {
		return 0, fmt.Errorf("unknown metric: %s", metricName)
	}
	return val, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	visit func(map[string]float64) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		return visit(current)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, visit); err != nil {
			return err
		}
	}
	return nil
}
