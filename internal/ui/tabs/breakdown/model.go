// Package breakdown provides the per-model usage breakdown tab.
package breakdown

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/veylab/relaymeter/internal/app"
)

// sortMode determines the row ordering of the breakdown table.
type sortMode int

const (
	sortByCost sortMode = iota
	sortByTokens
	sortByRequests
)

func (s sortMode) String() string {
	switch s {
	case sortByCost:
		return "cost"
	case sortByTokens:
		return "tokens"
	case sortByRequests:
		return "requests"
	default:
		return "unknown"
	}
}

func (s sortMode) next() sortMode {
	return (s + 1) % 3
}

// keyMap defines the key bindings specific to the breakdown tab.
type keyMap struct {
	CycleSort key.Binding
	Up        key.Binding
	Down      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		CycleSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle sort"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "scroll down"),
		),
	}
}

// Model represents the breakdown tab state.
type Model struct {
	state    *app.State
	keys     keyMap
	viewport viewport.Model
	sort     sortMode
	width    int
	height   int
}

// New creates a new breakdown tab model.
func New(state *app.State) *Model {
	return &Model{
		state:    state,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
		sort:     sortByCost,
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.CycleSort) {
			m.sort = m.sort.next()
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// SetSize sets the available size for the breakdown tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.CycleSort, m.keys.Up, m.keys.Down}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.CycleSort},
		{m.keys.Up, m.keys.Down},
	}
}
