package viz

import (
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/bouncesim/internal/dynamo"
	"github.com/san-kum/bouncesim/internal/physics"
	"github.com/san-kum/bouncesim/internal/sim"
)

const (
	width           = 60
	height          = 30
	historyCapacity = 600
)

// Snapshot is one rendered frame kept for replay.
type Snapshot struct {
	Bodies []dynamo.BodyView
	Time   float64
}

var (
	canvasStyle      = lipgloss.NewStyle().Padding(1, 2)
	statsStyle       = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeParamStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

var tunable = []string{"gravity", "restitution"}

type TickMsg time.Time

// Builder makes a fresh simulator for the scene. It is called again on
// reset, so it should attach any listeners the caller needs.
type Builder func() (*sim.Simulator, error)

// Model is the terminal frame loop: every tick it advances the world by one
// frame and draws a snapshot taken between ticks.
type Model struct {
	build         Builder
	sim           *sim.Simulator
	err           error
	scene         string
	frameDt       float64
	width, height int
	canvas        *Canvas
	running       bool
	counts        map[dynamo.EventKind]int
	popHistory    []float64
	energyHistory []float64
	history       []Snapshot
	playHead      int
	selected      int
	recording     bool
	frames        []*image.Paletted
	showHelp      bool
}

func NewModel(build Builder, scene string, fps int) (Model, error) {
	if fps <= 0 {
		fps = 60
	}
	m := Model{
		build:         build,
		scene:         scene,
		frameDt:       1.0 / float64(fps),
		width:         width,
		height:        height,
		canvas:        NewCanvas(width, height),
		running:       true,
		popHistory:    make([]float64, 0, historyCapacity),
		energyHistory: make([]float64, 0, historyCapacity),
		history:       make([]Snapshot, 0, historyCapacity),
		playHead:      -1,
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Duration(m.frameDt*float64(time.Second)), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			m.selected = (m.selected + 1) % len(tunable)
		case "up", "k":
			m.adjustParam(1)
		case "down", "j":
			m.adjustParam(-1)
		case "g":
			if m.recording {
				if err := m.saveGIF("bouncesim.gif"); err != nil {
					m.err = err
				}
				m.recording = false
				m.frames = nil
			} else {
				m.recording = true
				m.frames = make([]*image.Paletted, 0)
			}
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			names := ThemeNames()
			for i, name := range names {
				if name == CurrentTheme.Name {
					SetTheme(names[(i+1)%len(names)])
					break
				}
			}
		}
	case TickMsg:
		if m.running && m.err == nil {
			if m.playHead == -1 {
				m.step()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) reset() error {
	s, err := m.build()
	if err != nil {
		return err
	}
	counts := make(map[dynamo.EventKind]int)
	s.AddListener(sim.ListenerFunc(func(e dynamo.Event) { counts[e.Kind]++ }))

	m.sim = s
	m.err = nil
	m.counts = counts
	m.popHistory = m.popHistory[:0]
	m.energyHistory = m.energyHistory[:0]
	m.history = m.history[:0]
	m.playHead = -1
	m.record()
	return nil
}

// step advances the world by one frame's worth of sub-steps.
func (m *Model) step() {
	if err := m.sim.Advance(m.frameDt); err != nil {
		m.err = err
		m.running = false
		return
	}
	m.record()
}

func (m *Model) record() {
	w := m.sim.World()
	m.popHistory = appendCapped(m.popHistory, float64(w.Len()))
	m.energyHistory = appendCapped(m.energyHistory, physics.Energy(w.Bodies(), m.sim.Params().Gravity))

	m.history = append(m.history, Snapshot{Bodies: w.Snapshot(), Time: m.sim.Time()})
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

func appendCapped(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyCapacity {
		xs = xs[1:]
	}
	return xs
}

func (m *Model) adjustParam(dir int) {
	p := m.sim.Params()
	var err error
	switch tunable[m.selected] {
	case "gravity":
		err = m.sim.SetGravity(p.Gravity + float64(dir)*25)
	case "restitution":
		err = m.sim.SetRestitution(math.Max(0, p.Restitution+float64(dir)*0.01))
	}
	if err != nil {
		m.err = err
	}
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

func (m *Model) current() Snapshot {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead]
	}
	if len(m.history) == 0 {
		return Snapshot{}
	}
	return m.history[len(m.history)-1]
}

// project maps world coordinates onto canvas dots, keeping the boundary
// circle round and centred.
func (m *Model) project(bd dynamo.Boundary) func(p dynamo.Vec2) (int, int) {
	cw, ch := float64(m.width*2), float64(m.height*4)
	scale := math.Min(cw, ch) / (2 * bd.Radius) * 0.98
	ox := cw/2 - bd.Center.X*scale
	oy := ch/2 - bd.Center.Y*scale
	return func(p dynamo.Vec2) (int, int) {
		return int(math.Round(p.X*scale + ox)), int(math.Round(p.Y*scale + oy))
	}
}

func (m *Model) draw() {
	m.canvas.Clear()
	bd := m.sim.World().Boundary()
	proj := m.project(bd)
	scale := math.Min(float64(m.width*2), float64(m.height*4)) / (2 * bd.Radius) * 0.98

	cx, cy := proj(bd.Center)
	m.canvas.DrawCircle(cx, cy, int(math.Round(bd.Radius*scale)))

	for _, b := range m.current().Bodies {
		x, y := proj(b.Pos)
		m.canvas.FillCircle(x, y, int(math.Round(b.Radius*scale)), b.Color)
	}
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return errorStyle.Render("ERROR")
	case m.playHead != -1:
		snap := m.history[m.playHead]
		label := "REPLAY"
		if !m.running {
			label = "REPLAY PAUSED"
		}
		return StatusPaused.Render(fmt.Sprintf("%s (%.1fs)", label, snap.Time-m.sim.Time()))
	case !m.running:
		return StatusPaused.Render("PAUSED")
	case m.recording:
		return StatusRecording.Render("REC")
	}
	return StatusRunning.Render("RUNNING")
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.Render())

	var s strings.Builder
	s.WriteString(HeaderStyle.Foreground(CurrentTheme.Primary).Render(strings.ToUpper(m.scene)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.popHistory) > 1 {
		chart := asciigraph.Plot(m.popHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Bodies"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	snap := m.current()
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", snap.Time))
	row("Bodies", fmt.Sprintf("%d", len(snap.Bodies)))
	if len(m.energyHistory) > 0 {
		row("Energy", fmt.Sprintf("%.0f", m.energyHistory[len(m.energyHistory)-1]))
	}
	row("Wall hits", fmt.Sprintf("%d", m.counts[dynamo.BoundaryHit]))
	row("Same", fmt.Sprintf("%d", m.counts[dynamo.BodyHitSameColor]))
	row("Diff", fmt.Sprintf("%d", m.counts[dynamo.BodyHitDiffColor]))
	stats := m.sim.LifecycleStats()
	row("Spawned", fmt.Sprintf("%d (capped %d)", stats.Spawned, stats.Suppressed))
	if p := m.sim.Params(); p.MaxBodies > 0 {
		s.WriteString(ProgressBar(float64(len(snap.Bodies))/float64(p.MaxBodies), 20) + "\n")
	}

	s.WriteString("\nPARAMETERS\n")
	p := m.sim.Params()
	values := map[string]float64{"gravity": p.Gravity, "restitution": p.Restitution}
	for i, k := range tunable {
		line := fmt.Sprintf("%-12s %.2f", k, values[k])
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}

	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\nT:Theme  G:Record ?:Help\n[ ]:Time-Travel ↑↓:Tune"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Rebuild the scene        ║
║  Q        - Quit                     ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter       ║
║  Down/J   - Decrease parameter       ║
║  [        - Rewind (time travel)     ║
║  ]        - Forward (time travel)    ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`
