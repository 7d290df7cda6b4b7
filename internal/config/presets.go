package config

import (
	"sort"

	"github.com/san-kum/bouncesim/internal/dynamo"
)

func colorPtr(c dynamo.Color) *dynamo.Color { return &c }

func preset(apply func(c *Config)) *Config {
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

var Presets = map[string]*Config{
	// three balls dropped side by side
	"trio": preset(func(c *Config) {
		c.Bodies = []BodyConfig{
			{X: 400, Y: 100, Radius: 10},
			{X: 300, Y: 100, Radius: 10},
			{X: 500, Y: 100, Radius: 10},
		}
		c.Duration = 30.0
	}),
	"rain": preset(func(c *Config) {
		c.RandomBodies = 12
		c.BodyRadius = 8
		c.Restitution = 1.0
		c.Seed = 1
	}),
	"pairs": preset(func(c *Config) {
		c.Gravity = 0
		c.Bodies = []BodyConfig{
			{X: 300, Y: 300, VX: 80, Radius: 10, Color: colorPtr(dynamo.Color{255, 0, 0})},
			{X: 500, Y: 300, VX: -80, Radius: 10, Color: colorPtr(dynamo.Color{255, 0, 0})},
			{X: 400, Y: 150, VY: 80, Radius: 10, Color: colorPtr(dynamo.Color{0, 0, 255})},
			{X: 400, Y: 450, VY: -80, Radius: 10, Color: colorPtr(dynamo.Color{0, 255, 0})},
		}
		c.Duration = 5.0
	}),
	"crowd": preset(func(c *Config) {
		c.RandomBodies = 60
		c.BodyRadius = 6
		c.RandomSpeed = 120
		c.MaxBodies = 150
		c.BroadPhase = "grid"
		c.GridCell = 24
		c.Seed = 7
	}),
}

var descriptions = map[string]string{
	"trio":  "three balls falling into the ring",
	"rain":  "a dozen random balls, elastic",
	"pairs": "no gravity, head-on pairs",
	"crowd": "sixty small balls on a grid broad phase",
}

// Describe returns a one-line description of a preset.
func Describe(name string) string { return descriptions[name] }

// GetPreset returns a deep copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	out := *cfg
	out.Bodies = append([]BodyConfig(nil), cfg.Bodies...)
	for i, b := range out.Bodies {
		if b.Color != nil {
			out.Bodies[i].Color = colorPtr(*b.Color)
		}
	}
	out.Palette = append([]dynamo.Color(nil), cfg.Palette...)
	return &out
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
