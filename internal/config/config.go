package config

import (
	"fmt"
	"math"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/bouncesim/internal/dynamo"
)

const (
	DefaultGravity          = 500.0
	DefaultRestitution      = 1.01
	DefaultSubsteps         = 10
	DefaultFPS              = 60
	DefaultDuration         = 10.0
	DefaultRadius           = 10.0
	DefaultSpawnOffsetScale = 100.0
	DefaultMaxBodies        = 200
	DefaultGridCell         = 32.0
)

type Config struct {
	Gravity             float64        `yaml:"gravity"`
	Restitution         float64        `yaml:"restitution"`
	BoundaryRestitution float64        `yaml:"boundary_restitution"`
	Substeps            int            `yaml:"substeps"`
	FPS                 int            `yaml:"fps"`
	SpawnOffsetScale    float64        `yaml:"spawn_offset_scale"`
	MaxBodies           int            `yaml:"max_bodies"`
	Lifecycle           bool           `yaml:"lifecycle"`
	Integrator          string         `yaml:"integrator"`
	BroadPhase          string         `yaml:"broadphase"`
	GridCell            float64        `yaml:"grid_cell"`
	Seed                int64          `yaml:"seed"`
	Duration            float64        `yaml:"duration"`
	Boundary            BoundaryConfig `yaml:"boundary"`
	Bodies              []BodyConfig   `yaml:"bodies,omitempty"`
	Palette             []dynamo.Color `yaml:"palette,omitempty"`
	RandomBodies        int            `yaml:"random_bodies"`
	BodyRadius          float64        `yaml:"body_radius"`
	RandomSpeed         float64        `yaml:"random_speed"`
	Song                SongConfig     `yaml:"song"`
}

type BoundaryConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Radius float64 `yaml:"radius"`
}

// BodyConfig is one seed body. A missing color is drawn from the palette.
type BodyConfig struct {
	X      float64       `yaml:"x"`
	Y      float64       `yaml:"y"`
	VX     float64       `yaml:"vx"`
	VY     float64       `yaml:"vy"`
	Radius float64       `yaml:"radius"`
	Color  *dynamo.Color `yaml:"color,omitempty"`
}

type SongConfig struct {
	Path   string  `yaml:"path"`
	Policy string  `yaml:"policy"`
	Tempo  float64 `yaml:"tempo"`
}

// DefaultPalette is a seven-color rainbow.
var DefaultPalette = []dynamo.Color{
	{144, 0, 211},
	{75, 0, 130},
	{0, 0, 255},
	{0, 255, 0},
	{255, 255, 0},
	{255, 127, 0},
	{255, 0, 0},
}

func DefaultConfig() *Config {
	return &Config{
		Gravity:             DefaultGravity,
		Restitution:         DefaultRestitution,
		BoundaryRestitution: 1.0,
		Substeps:            DefaultSubsteps,
		FPS:                 DefaultFPS,
		SpawnOffsetScale:    DefaultSpawnOffsetScale,
		MaxBodies:           DefaultMaxBodies,
		Lifecycle:           true,
		Integrator:          "euler",
		BroadPhase:          "allpairs",
		GridCell:            DefaultGridCell,
		Duration:            DefaultDuration,
		Boundary:            BoundaryConfig{X: 400, Y: 300, Radius: 280},
		BodyRadius:          DefaultRadius,
		Song:                SongConfig{Policy: "wrap", Tempo: 1.0},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Params() dynamo.Params {
	return dynamo.Params{
		Gravity:             c.Gravity,
		Restitution:         c.Restitution,
		BoundaryRestitution: c.BoundaryRestitution,
		Boundary: dynamo.Boundary{
			Center: dynamo.V(c.Boundary.X, c.Boundary.Y),
			Radius: c.Boundary.Radius,
		},
		Substeps:         c.Substeps,
		SpawnOffsetScale: c.SpawnOffsetScale,
		MaxBodies:        c.MaxBodies,
		Lifecycle:        c.Lifecycle,
	}
}

// FrameDt is the wall-clock time one presenter tick covers.
func (c *Config) FrameDt() float64 {
	return 1.0 / float64(c.FPS)
}

func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %d", dynamo.ErrInvalidParams, c.FPS)
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %f", dynamo.ErrInvalidParams, c.Duration)
	}
	if c.RandomBodies < 0 {
		return fmt.Errorf("%w: random_bodies must not be negative", dynamo.ErrInvalidParams)
	}
	if c.RandomBodies > 0 && !(c.BodyRadius > 0) {
		return fmt.Errorf("%w: body_radius must be positive", dynamo.ErrInvalidParams)
	}
	return nil
}

// Seeds builds the initial body set: the listed bodies first, then
// RandomBodies bodies scattered inside the boundary. Colors come from the
// palette without replacement until it runs dry.
func (c *Config) Seeds(rng *rand.Rand) ([]dynamo.BodySpec, error) {
	palette := NewPalette(c.Palette, rng)
	specs := make([]dynamo.BodySpec, 0, len(c.Bodies)+c.RandomBodies)

	for i, b := range c.Bodies {
		radius := b.Radius
		if radius == 0 {
			radius = c.BodyRadius
		}
		color := palette.Next()
		if b.Color != nil {
			color = *b.Color
		}
		spec := dynamo.BodySpec{
			Pos:    dynamo.V(b.X, b.Y),
			Vel:    dynamo.V(b.VX, b.VY),
			Radius: radius,
			Color:  color,
		}
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
		specs = append(specs, spec)
	}

	center := dynamo.V(c.Boundary.X, c.Boundary.Y)
	reach := c.Boundary.Radius - c.BodyRadius
	for i := 0; i < c.RandomBodies; i++ {
		pos := scatter(rng, center, reach, c.BodyRadius, specs)
		vel := dynamo.V(
			(rng.Float64()*2-1)*c.RandomSpeed,
			(rng.Float64()*2-1)*c.RandomSpeed,
		)
		specs = append(specs, dynamo.BodySpec{Pos: pos, Vel: vel, Radius: c.BodyRadius, Color: palette.Next()})
	}

	return specs, nil
}

// scatter picks a uniform point in the disk, retrying a bounded number of
// times to avoid overlapping bodies already placed.
func scatter(rng *rand.Rand, center dynamo.Vec2, reach, radius float64, placed []dynamo.BodySpec) dynamo.Vec2 {
	var pos dynamo.Vec2
	for attempt := 0; attempt < 100; attempt++ {
		angle := rng.Float64() * 2 * math.Pi
		dist := math.Sqrt(rng.Float64()) * reach
		pos = center.Add(dynamo.V(math.Cos(angle)*dist, math.Sin(angle)*dist))

		free := true
		for _, s := range placed {
			gap := s.Radius + radius
			if pos.Sub(s.Pos).LengthSquared() <= gap*gap {
				free = false
				break
			}
		}
		if free {
			break
		}
	}
	return pos
}
