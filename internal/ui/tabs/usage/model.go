// Package usage provides the usage overview tab.
package usage

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/veylab/relaymeter/internal/app"
	"github.com/veylab/relaymeter/internal/ui/components"
)

type animationTickMsg time.Time

func animationTickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*40, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// keyMap defines the key bindings specific to the usage tab.
type keyMap struct {
	NextProvider  key.Binding
	PrevProvider  key.Binding
	FirstProvider key.Binding
	LastProvider  key.Binding
	Select        key.Binding
}

// defaultKeyMap returns the default key bindings for the usage tab.
func defaultKeyMap() keyMap {
	return keyMap{
		NextProvider: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next provider"),
		),
		PrevProvider: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "prev provider"),
		),
		FirstProvider: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "first provider"),
		),
		LastProvider: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "last provider"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "switch provider"),
		),
	}
}

// Model represents the usage tab state.
type Model struct {
	state          *app.State
	spinner        components.LoadingSpinner
	keys           keyMap
	viewport       viewport.Model
	width          int
	height         int
	animationFrame int
}

// New creates a new usage tab model.
func New(state *app.State) *Model {
	return &Model{
		state:    state,
		spinner:  components.NewSpinner("Fetching usage..."),
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Init(), animationTickCmd())
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case animationTickMsg:
		m.animationFrame++
		if m.state.GetUsage().Phase == app.PhaseLoading {
			cmds = append(cmds, animationTickCmd())
		}

	case app.UsageFetchedMsg, app.PeriodToggledMsg, app.RefreshMsg:
		cmds = append(cmds, animationTickCmd())

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	providers := m.state.GetProviders()
	count := len(providers)
	selected := m.state.GetSelectedProviderIndex()

	switch {
	case key.Matches(msg, m.keys.NextProvider):
		if count > 0 {
			m.state.SetSelectedProviderIndex((selected + 1) % count)
		}
	case key.Matches(msg, m.keys.PrevProvider):
		if count > 0 {
			m.state.SetSelectedProviderIndex((selected - 1 + count) % count)
		}
	case key.Matches(msg, m.keys.FirstProvider):
		if count > 0 {
			m.state.SetSelectedProviderIndex(0)
		}
	case key.Matches(msg, m.keys.LastProvider):
		if count > 0 {
			m.state.SetSelectedProviderIndex(count - 1)
		}
	case key.Matches(msg, m.keys.Select):
		if selected < count {
			id := providers[selected].ID
			return func() tea.Msg {
				return app.SwitchProviderMsg{ProviderID: id}
			}
		}
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

// SetSize sets the available size for the usage tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.NextProvider,
		m.keys.PrevProvider,
		m.keys.Select,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.NextProvider, m.keys.PrevProvider},
		{m.keys.FirstProvider, m.keys.LastProvider},
		{m.keys.Select},
	}
}
