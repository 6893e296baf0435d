package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// leanStep is how far one arrow press tilts the globe, in g.
const leanStep = 0.25

type keyMap struct {
	Left  key.Binding
	Right key.Binding
	Up    key.Binding
	Down  key.Binding
	Tilt  key.Binding // help only
	Shake key.Binding
	Level key.Binding
	View  key.Binding
	Quit  key.Binding
}

func newKeyMap(canTilt bool) keyMap {
	k := keyMap{
		Left:  key.NewBinding(key.WithKeys("left", "h")),
		Right: key.NewBinding(key.WithKeys("right", "l")),
		Up:    key.NewBinding(key.WithKeys("up", "k")),
		Down:  key.NewBinding(key.WithKeys("down", "j")),
		Tilt:  key.NewBinding(key.WithKeys("left", "right", "up", "down"), key.WithHelp("←↑↓→", "tilt")),
		Shake: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "shake")),
		Level: key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "level")),
		View:  key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "view")),
		Quit:  key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
	for _, b := range []*key.Binding{&k.Left, &k.Right, &k.Up, &k.Down, &k.Tilt, &k.Shake, &k.Level} {
		b.SetEnabled(canTilt)
	}
	return k
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tilt, k.Shake, k.Level, k.View, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func isQuit(k keyMap, msg tea.KeyMsg) bool {
	return key.Matches(msg, k.Quit)
}
