package automation

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/bouncesim/internal/config"
	"github.com/san-kum/bouncesim/internal/dynamo"
	"github.com/san-kum/bouncesim/internal/experiment"
	"github.com/san-kum/bouncesim/internal/storage"
)

// Scenario is a scripted list of headless runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep runs one preset with optional overrides. Zero values keep
// the preset's own setting.
type ScenarioStep struct {
	Scene       string   `yaml:"scene"`
	Gravity     *float64 `yaml:"gravity,omitempty"`
	Restitution *float64 `yaml:"restitution,omitempty"`
	Substeps    int      `yaml:"substeps,omitempty"`
	Duration    float64  `yaml:"duration,omitempty"`
	Seed        int64    `yaml:"seed,omitempty"`
	BroadPhase  string   `yaml:"broadphase,omitempty"`
	SaveAs      string   `yaml:"save_as,omitempty"`
}

// StepResult pairs a finished run with the ID it was stored under, if any.
type StepResult struct {
	Step   ScenarioStep
	RunID  string
	Result *dynamo.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Config resolves a step against its preset.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.GetPreset(s.Scene)
	if cfg == nil {
		return nil, fmt.Errorf("unknown scene: %s", s.Scene)
	}
	if s.Gravity != nil {
		cfg.Gravity = *s.Gravity
	}
	if s.Restitution != nil {
		cfg.Restitution = *s.Restitution
	}
	if s.Substeps > 0 {
		cfg.Substeps = s.Substeps
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	if s.BroadPhase != "" {
		cfg.BroadPhase = s.BroadPhase
	}
	return cfg, cfg.Validate()
}

// RunScenario executes every step in order. Steps with SaveAs are written
// to st when it is not nil. It stops at the first failing step and returns
// what finished before it.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, st *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		fmt.Printf("running step %d/%d: %s\n", i+1, len(scenario.Steps), step.Scene)

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(registry, registry.DefaultMetrics(cfg.Gravity)); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: step, Result: result}
		if st != nil && step.SaveAs != "" {
			id, err := st.Save(storage.RunMetadata{
				Scene:      step.SaveAs,
				Seed:       cfg.Seed,
				FrameDt:    cfg.FrameDt(),
				Duration:   cfg.Duration,
				Integrator: cfg.Integrator,
				BroadPhase: cfg.BroadPhase,
				Params:     cfg.Params(),
			}, result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			sr.RunID = id
		}
		results = append(results, sr)
	}

	return results, nil
}
