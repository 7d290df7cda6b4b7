package gui

import (
	"fmt"
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/bouncesim/internal/audio"
	"github.com/san-kum/bouncesim/internal/physics"
	"github.com/san-kum/bouncesim/internal/sim"
)

var (
	ColBg      = rl.NewColor(30, 30, 30, 255)
	ColRing    = rl.NewColor(155, 155, 155, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(70, 70, 70, 255)
)

// Builder makes a fresh simulator with its listeners attached.
type Builder func() (*sim.Simulator, error)

type Options struct {
	Width, Height int
	FPS           int
	Title         string

	// Synth, when set, gets the world energy every frame.
	Synth *audio.Synth
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Height <= 0 {
		o.Height = 600
	}
	if o.FPS <= 0 {
		o.FPS = 60
	}
	if o.Title == "" {
		o.Title = "bouncesim"
	}
	return o
}

// App is the window frame loop: one Advance per frame, then a draw of the
// snapshot taken after it.
type App struct {
	build   Builder
	opts    Options
	Sim     *sim.Simulator
	Running bool
	ShowHUD bool
	frameDt float64
	view    View
	lastErr error
}

func NewApp(build Builder, opts Options) (*App, error) {
	opts = opts.withDefaults()
	a := &App{
		build:   build,
		opts:    opts,
		Running: true,
		ShowHUD: true,
		frameDt: 1.0 / float64(opts.FPS),
	}
	if err := a.reset(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) reset() error {
	s, err := a.build()
	if err != nil {
		return fmt.Errorf("failed to build scene: %w", err)
	}
	a.Sim = s
	a.lastErr = nil
	a.view = Fit(s.World().Boundary(), a.opts.Width, a.opts.Height)
	return nil
}

// Run opens the window and blocks until it is closed.
func Run(build Builder, opts Options) error {
	app, err := NewApp(build, opts)
	if err != nil {
		return err
	}

	rl.InitWindow(int32(app.opts.Width), int32(app.opts.Height), app.opts.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(app.opts.FPS))
	rl.SetExitKey(0)

	if app.opts.Synth != nil {
		if err := app.opts.Synth.Start(); err != nil {
			log.Printf("audio disabled: %v", err)
		} else {
			defer app.opts.Synth.Stop()
		}
	}

	app.RunLoop()
	return nil
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if a.Update() {
			return
		}
		a.Draw()
	}
}

// Update handles input and advances one frame. It reports whether the user
// asked to quit.
func (a *App) Update() bool {
	switch {
	case rl.IsKeyPressed(rl.KeyQ), rl.IsKeyPressed(rl.KeyEscape):
		return true
	case rl.IsKeyPressed(rl.KeySpace):
		a.Running = !a.Running
	case rl.IsKeyPressed(rl.KeyR):
		if err := a.reset(); err != nil {
			log.Printf("reset: %v", err)
			a.lastErr = err
		}
	case rl.IsKeyPressed(rl.KeyH):
		a.ShowHUD = !a.ShowHUD
	case rl.IsKeyPressed(rl.KeyUp):
		a.tuneGravity(25)
	case rl.IsKeyPressed(rl.KeyDown):
		a.tuneGravity(-25)
	}

	if a.Running && a.lastErr == nil {
		a.Step()
	}
	return false
}

// Step advances the simulator by one frame.
func (a *App) Step() {
	if err := a.Sim.Advance(a.frameDt); err != nil {
		log.Printf("step failed at t=%.3f: %v", a.Sim.Time(), err)
		a.lastErr = err
		a.Running = false
		return
	}
	if a.opts.Synth != nil {
		a.opts.Synth.UpdateEnergy(physics.KineticEnergy(a.Sim.World().Bodies()))
	}
}

func (a *App) tuneGravity(delta float64) {
	if err := a.Sim.SetGravity(a.Sim.Params().Gravity + delta); err != nil {
		log.Printf("gravity: %v", err)
	}
}
