package viz

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/bouncesim/internal/dynamo"
	"github.com/san-kum/bouncesim/internal/integrators"
	"github.com/san-kum/bouncesim/internal/sim"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(100, 0)

	if c.Grid[0][0] != 0x2801 {
		t.Errorf("cell 0 = %U, want U+2801", c.Grid[0][0])
	}
	if c.Grid[0][1] != 0x2880 {
		t.Errorf("cell 1 = %U, want U+2880", c.Grid[0][1])
	}

	c.Unset(0, 0)
	if c.Grid[0][0] != 0x2800 {
		t.Error("unset did not clear the dot")
	}
}

func TestCanvasCircles(t *testing.T) {
	c := NewCanvas(20, 10)
	c.DrawCircle(20, 20, 8)
	for _, p := range [][2]int{{28, 20}, {12, 20}, {20, 28}, {20, 12}} {
		cell := c.Grid[p[1]/4][p[0]/2]
		if cell&rune(pixelMap[p[1]%4][p[0]%2]) == 0 {
			t.Errorf("expected dot at %v", p)
		}
	}

	red := dynamo.Color{255, 0, 0}
	c.Clear()
	c.FillCircle(20, 20, 3, red)
	if col := c.Colors[5][10]; col == nil || *col != red {
		t.Errorf("centre cell not tinted: %v", col)
	}
	if !strings.Contains(c.Render(), string(c.Grid[5][10])) {
		t.Error("render is missing the filled cell")
	}

	c.Clear()
	if c.Colors[5][10] != nil {
		t.Error("clear kept the tint")
	}
}

func testBuilder() (*sim.Simulator, error) {
	bd := dynamo.Boundary{Center: dynamo.V(400, 300), Radius: 280}
	w, err := sim.NewWorld(bd, []dynamo.BodySpec{
		{Pos: dynamo.V(400, 100), Radius: 10, Color: dynamo.Color{255, 0, 0}},
		{Pos: dynamo.V(300, 100), Radius: 10, Color: dynamo.Color{0, 255, 0}},
	})
	if err != nil {
		return nil, err
	}
	return sim.New(w, integrators.NewEuler(), dynamo.DefaultParams())
}

func tick(t *testing.T, m Model, n int) Model {
	t.Helper()
	for i := 0; i < n; i++ {
		next, _ := m.Update(TickMsg(time.Now()))
		m = next.(Model)
	}
	return m
}

func key(t *testing.T, m Model, k string) Model {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelAdvances(t *testing.T) {
	m, err := NewModel(testBuilder, "trio", 60)
	if err != nil {
		t.Fatalf("NewModel failed: %v", err)
	}

	m = tick(t, m, 10)
	if got := m.sim.StepsTaken(); got != 100 {
		t.Errorf("expected 100 sub-steps after 10 ticks, got %d", got)
	}
	if len(m.history) != 11 {
		t.Errorf("expected 11 snapshots, got %d", len(m.history))
	}

	view := m.View()
	if !strings.Contains(view, "TRIO") || !strings.Contains(view, "Bodies") {
		t.Error("view is missing the header or stats")
	}
}

func TestModelPauseAndScrub(t *testing.T) {
	m, _ := NewModel(testBuilder, "trio", 60)
	m = tick(t, m, 5)

	m = key(t, m, " ")
	steps := m.sim.StepsTaken()
	m = tick(t, m, 5)
	if m.sim.StepsTaken() != steps {
		t.Error("paused model kept stepping")
	}

	m = key(t, m, "[")
	if m.playHead != len(m.history)-2 {
		t.Errorf("playhead = %d, want %d", m.playHead, len(m.history)-2)
	}
	if m.current().Time >= m.sim.Time() {
		t.Error("replay should show an earlier frame")
	}
	m = key(t, m, "]")
	m = key(t, m, "]")
	if m.playHead != -1 {
		t.Error("scrubbing past the end should return to live")
	}
}

func TestModelTune(t *testing.T) {
	m, _ := NewModel(testBuilder, "trio", 60)
	g := m.sim.Params().Gravity

	m = key(t, m, "up")
	if m.sim.Params().Gravity != g+25 {
		t.Errorf("gravity = %v, want %v", m.sim.Params().Gravity, g+25)
	}

	m = key(t, m, "tab")
	e := m.sim.Params().Restitution
	m = key(t, m, "j")
	if diff := e - 0.01 - m.sim.Params().Restitution; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("restitution = %v, want %v", m.sim.Params().Restitution, e-0.01)
	}
}

func TestModelReset(t *testing.T) {
	m, _ := NewModel(testBuilder, "trio", 60)
	m = tick(t, m, 3)
	m = key(t, m, "r")
	if m.sim.Time() != 0 || len(m.history) != 1 {
		t.Errorf("reset left time %v and %d snapshots", m.sim.Time(), len(m.history))
	}
}

func TestNewModelBuildError(t *testing.T) {
	boom := errors.New("boom")
	if _, err := NewModel(func() (*sim.Simulator, error) { return nil, boom }, "x", 60); !errors.Is(err, boom) {
		t.Errorf("expected build error, got %v", err)
	}
}

func TestRecordGIF(t *testing.T) {
	m, _ := NewModel(testBuilder, "trio", 60)
	m = key(t, m, "g")
	m = tick(t, m, 3)
	if len(m.frames) != 3 {
		t.Fatalf("expected 3 captured frames, got %d", len(m.frames))
	}

	img := m.frames[0]
	if len(img.Palette) < 3 {
		t.Error("expected body colors in the palette")
	}

	path := filepath.Join(t.TempDir(), "out.gif")
	if err := m.saveGIF(path); err != nil {
		t.Fatalf("saveGIF failed: %v", err)
	}
}

func TestMenu(t *testing.T) {
	scenes := []SceneInfo{{"trio", "three balls"}, {"rain", "many balls"}}
	var opened string
	var mm tea.Model = NewMenu(scenes, func(name string) (Model, error) {
		opened = name
		return NewModel(testBuilder, name, 60)
	})

	mm, _ = mm.Update(tea.KeyMsg{Type: tea.KeyDown})
	if !strings.Contains(mm.View(), "> rain") {
		t.Error("cursor should be on rain")
	}

	mm, cmd := mm.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if opened != "rain" || cmd == nil {
		t.Errorf("expected rain to open with a tick, got %q", opened)
	}
	if !strings.Contains(mm.View(), "RAIN") {
		t.Error("expected the live view")
	}

	mm, _ = mm.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !strings.Contains(mm.View(), "BOUNCESIM") {
		t.Error("esc should return to the menu")
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		fraction float64
		filled   int
	}{
		{0, 0},
		{0.5, 10},
		{1, 20},
		{1.7, 20},
		{-1, 0},
	}
	for _, tt := range tests {
		bar := ProgressBar(tt.fraction, 20)
		if got := strings.Count(bar, "█"); got != tt.filled {
			t.Errorf("ProgressBar(%v) filled %d, want %d", tt.fraction, got, tt.filled)
		}
		if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != 20 {
			t.Errorf("ProgressBar(%v) width %d", tt.fraction, got)
		}
	}
}
