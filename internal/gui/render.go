package gui

import (
	"fmt"
	"image/color"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/bouncesim/internal/dynamo"
)

// View maps world coordinates to window pixels.
type View struct {
	Scale  float64
	Offset dynamo.Vec2
}

// Fit returns the identity view when the boundary already fits in the
// window, otherwise a uniform scale that centres it with a small margin.
func Fit(bd dynamo.Boundary, width, height int) View {
	w, h := float64(width), float64(height)
	if bd.Center.X+bd.Radius <= w && bd.Center.Y+bd.Radius <= h &&
		bd.Center.X-bd.Radius >= 0 && bd.Center.Y-bd.Radius >= 0 {
		return View{Scale: 1}
	}
	scale := math.Min(w, h) / (2 * bd.Radius) * 0.95
	return View{
		Scale:  scale,
		Offset: dynamo.V(w/2-bd.Center.X*scale, h/2-bd.Center.Y*scale),
	}
}

func (v View) Project(p dynamo.Vec2) rl.Vector2 {
	return rl.NewVector2(float32(p.X*v.Scale+v.Offset.X), float32(p.Y*v.Scale+v.Offset.Y))
}

func (v View) Length(r float64) float32 { return float32(r * v.Scale) }

func toColor(c dynamo.Color) color.RGBA {
	return rl.NewColor(c[0], c[1], c[2], 255)
}

func (a *App) Draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()
	rl.ClearBackground(ColBg)

	w := a.Sim.World()
	bd := w.Boundary()
	r := a.view.Length(bd.Radius)
	rl.DrawRing(a.view.Project(bd.Center), r, r+2, 0, 360, 128, ColRing)

	for _, b := range w.Snapshot() {
		rl.DrawCircleV(a.view.Project(b.Pos), a.view.Length(b.Radius), toColor(b.Color))
	}

	if a.ShowHUD {
		a.drawHUD(len(w.Bodies()))
	}
}

func (a *App) drawHUD(n int) {
	p := a.Sim.Params()
	rl.DrawText(fmt.Sprintf("t %.2fs  bodies %d  g %.0f  e %.2f", a.Sim.Time(), n, p.Gravity, p.Restitution), 10, 10, 16, ColText)
	stats := a.Sim.LifecycleStats()
	rl.DrawText(fmt.Sprintf("spawned %d  removed %d  capped %d", stats.Spawned, stats.Removed, stats.Suppressed), 10, 30, 16, ColTextDim)
	if a.lastErr != nil {
		rl.DrawText(a.lastErr.Error(), 10, int32(a.opts.Height-50), 16, rl.Red)
	}
	if !a.Running {
		rl.DrawText("PAUSED", int32(a.opts.Width-90), 10, 16, ColText)
	}
	rl.DrawText("SPACE pause  R reset  UP/DOWN gravity  H hud  Q quit", 10, int32(a.opts.Height-25), 14, ColTextDim)
}
