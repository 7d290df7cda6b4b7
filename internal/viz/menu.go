package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SceneInfo is one entry of the scene menu.
type SceneInfo struct {
	Name        string
	Description string
}

// Opener builds the live view for a scene chosen from the menu.
type Opener func(scene string) (Model, error)

const (
	stateMenu = iota
	stateSim
)

type menu struct {
	state  int
	cursor int
	scenes []SceneInfo
	open   Opener
	err    error
	live   Model
}

// NewMenu returns a program model that lists scenes and opens the selected
// one in a live view. Esc in the live view returns to the list.
func NewMenu(scenes []SceneInfo, open Opener) tea.Model {
	return menu{scenes: scenes, open: open}
}

func (m menu) Init() tea.Cmd { return nil }

func (m menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			m.state = stateMenu
			return m, nil
		}
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.scenes)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.scenes) == 0 {
			return m, nil
		}
		live, err := m.open(m.scenes[m.cursor].Name)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.live = live
		m.state = stateSim
		return m, live.Init()
	}
	return m, nil
}

func (m menu) View() string {
	if m.state == stateSim {
		return m.live.View()
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Primary)
	selected := lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Bold(true)
	desc := lipgloss.NewStyle().Foreground(CurrentTheme.Muted)

	var s strings.Builder
	s.WriteString(title.Render("BOUNCESIM") + "\n\n")
	for i, sc := range m.scenes {
		line := fmt.Sprintf("%-10s", sc.Name)
		if i == m.cursor {
			s.WriteString(selected.Render("> "+line) + " " + desc.Render(sc.Description) + "\n")
		} else {
			s.WriteString("  " + line + " " + desc.Render(sc.Description) + "\n")
		}
	}
	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}
	s.WriteString("\n" + Subtle.Render("↑↓ select  enter open  esc back  q quit"))
	return lipgloss.NewStyle().Padding(1, 2).Render(s.String())
}
