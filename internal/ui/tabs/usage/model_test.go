package usage

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/veylab/relaymeter/internal/app"
	"github.com/veylab/relaymeter/internal/models"
	usagesvc "github.com/veylab/relaymeter/internal/services/usage"
)

func newTestModel() (*Model, *app.State) {
	state := app.NewState()
	state.SetProviders([]models.Provider{
		{ID: "p1", Name: "Relay One", AppKind: models.AppClaude},
		{ID: "p2", Name: "Relay Two", AppKind: models.AppCodex},
		{ID: "p3", Name: "Relay Three", AppKind: models.AppGemini},
	}, &models.Provider{ID: "p1", Name: "Relay One", AppKind: models.AppClaude})

	m := New(state)
	m.SetSize(100, 40)
	return m, state
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestModel_ProviderNavigation(t *testing.T) {
	m, state := newTestModel()

	m.Update(keyRune('j'))
	if got := state.GetSelectedProviderIndex(); got != 1 {
		t.Errorf("after j, selected = %d, want 1", got)
	}

	m.Update(keyRune('k'))
	if got := state.GetSelectedProviderIndex(); got != 0 {
		t.Errorf("after k, selected = %d, want 0", got)
	}

	// Wraps around in both directions.
	m.Update(keyRune('k'))
	if got := state.GetSelectedProviderIndex(); got != 2 {
		t.Errorf("after wrap, selected = %d, want 2", got)
	}

	m.Update(keyRune('g'))
	if got := state.GetSelectedProviderIndex(); got != 0 {
		t.Errorf("after g, selected = %d, want 0", got)
	}

	m.Update(keyRune('G'))
	if got := state.GetSelectedProviderIndex(); got != 2 {
		t.Errorf("after G, selected = %d, want 2", got)
	}
}

func TestModel_SelectEmitsSwitch(t *testing.T) {
	m, state := newTestModel()
	state.SetSelectedProviderIndex(1)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command from select")
	}

	sw, ok := cmd().(app.SwitchProviderMsg)
	if !ok {
		t.Fatalf("expected SwitchProviderMsg, got %T", cmd())
	}
	if sw.ProviderID != "p2" {
		t.Errorf("ProviderID = %q, want p2", sw.ProviderID)
	}
}

func TestModel_ViewListsProviders(t *testing.T) {
	m, _ := newTestModel()

	view := m.View()
	for _, name := range []string{"Relay One", "Relay Two", "Relay Three"} {
		if !strings.Contains(view, name) {
			t.Errorf("view missing provider %q", name)
		}
	}
	if !strings.Contains(view, "claude") || !strings.Contains(view, "codex") {
		t.Error("view missing app kind badges")
	}
}

func TestModel_ViewPhases(t *testing.T) {
	m, state := newTestModel()

	if view := m.View(); !strings.Contains(view, "Waiting for the first refresh") {
		t.Error("idle view missing placeholder")
	}

	state.BeginFetch()
	if view := m.View(); !strings.Contains(view, "Fetching usage") {
		t.Error("loading view missing spinner label")
	}

	state.ApplySnapshot(&usagesvc.Snapshot{Seq: 1, ProviderID: "p1", NotConfigured: true})
	if view := m.View(); !strings.Contains(view, "No API key configured") {
		t.Error("not-configured view missing message")
	}

	state.ApplySnapshot(&usagesvc.Snapshot{Seq: 2, ProviderID: "p1", Err: "boom"})
	if view := m.View(); !strings.Contains(view, "boom") {
		t.Error("failed view missing error text")
	}
}

func TestModel_ViewLoaded(t *testing.T) {
	m, state := newTestModel()

	snap := &usagesvc.Snapshot{
		Seq:        3,
		ProviderID: "p1",
		Period:     models.PeriodDaily,
		FetchedAt:  time.Now(),
		Overview: &models.UsageOverview{
			Name:   "team key",
			Active: true,
			Limits: models.UsageLimits{
				DailyCostLimit:   10,
				CurrentDailyCost: 2.5,
			},
		},
		Aggregate: &models.PeriodUsage{
			Requests:     42,
			InputTokens:  1_500_000,
			OutputTokens: 2_500,
			AllTokens:    1_502_500,
			TotalCost:    2.5,
		},
	}
	if !state.ApplySnapshot(snap) {
		t.Fatal("snapshot not applied")
	}

	view := m.View()
	for _, want := range []string{"team key", "active", "1.50M", "2.5K", "$2.50 / $10.00", "42"} {
		if !strings.Contains(view, want) {
			t.Errorf("loaded view missing %q", want)
		}
	}
}

func TestModel_AnimationContinuesWhileLoading(t *testing.T) {
	m, state := newTestModel()
	state.BeginFetch()

	frame := m.animationFrame
	_, cmd := m.Update(animationTickMsg(time.Now()))
	if m.animationFrame != frame+1 {
		t.Errorf("frame = %d, want %d", m.animationFrame, frame+1)
	}
	if cmd == nil {
		t.Error("expected another tick while loading")
	}
}
