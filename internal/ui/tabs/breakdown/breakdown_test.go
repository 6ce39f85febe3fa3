package breakdown

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/veylab/relaymeter/internal/app"
	"github.com/veylab/relaymeter/internal/models"
	usagesvc "github.com/veylab/relaymeter/internal/services/usage"
)

func newTestModel() (*Model, *app.State) {
	state := app.NewState()
	m := New(state)
	m.SetSize(120, 40)
	return m, state
}

func loadedSnapshot() *usagesvc.Snapshot {
	return &usagesvc.Snapshot{
		Seq:        1,
		ProviderID: "p1",
		Period:     models.PeriodDaily,
		ModelStats: []models.ModelUsage{
			{
				Model:        "claude-haiku-4",
				Requests:     100,
				InputTokens:  5_000,
				OutputTokens: 1_000,
				AllTokens:    6_000,
				Costs:        models.CostBreakdown{TotalCost: 0.5, TotalCostStr: "$0.50"},
			},
			{
				Model:        "claude-opus-4",
				Requests:     10,
				InputTokens:  2_000_000,
				OutputTokens: 50_000,
				AllTokens:    2_050_000,
				Costs:        models.CostBreakdown{TotalCost: 12.5, TotalCostStr: "$12.50"},
			},
		},
	}
}

func TestModel_SortCycling(t *testing.T) {
	m, _ := newTestModel()

	if m.sort != sortByCost {
		t.Fatalf("initial sort = %v, want cost", m.sort)
	}

	s := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}}
	m.Update(s)
	if m.sort != sortByTokens {
		t.Errorf("sort = %v, want tokens", m.sort)
	}
	m.Update(s)
	if m.sort != sortByRequests {
		t.Errorf("sort = %v, want requests", m.sort)
	}
	m.Update(s)
	if m.sort != sortByCost {
		t.Errorf("sort = %v, want cost after full cycle", m.sort)
	}
}

func TestModel_SortedOrder(t *testing.T) {
	m, _ := newTestModel()
	stats := loadedSnapshot().ModelStats

	byCost := m.sorted(stats)
	if byCost[0].Model != "claude-opus-4" {
		t.Errorf("cost sort first = %q, want claude-opus-4", byCost[0].Model)
	}

	m.sort = sortByRequests
	byReq := m.sorted(stats)
	if byReq[0].Model != "claude-haiku-4" {
		t.Errorf("request sort first = %q, want claude-haiku-4", byReq[0].Model)
	}

	// Input slice is not mutated.
	if stats[0].Model != "claude-haiku-4" {
		t.Error("sorted mutated its input")
	}
}

func TestModel_ViewLoaded(t *testing.T) {
	m, state := newTestModel()
	state.ApplySnapshot(loadedSnapshot())

	view := m.View()
	for _, want := range []string{"claude-opus-4", "claude-haiku-4", "2.05M", "$12.50", "Cost by Model", "■ cost", "■ share"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_ViewPhases(t *testing.T) {
	m, state := newTestModel()

	if view := m.View(); !strings.Contains(view, "Loading model breakdown") {
		t.Error("idle view missing loading message")
	}

	state.ApplySnapshot(&usagesvc.Snapshot{Seq: 1, ProviderID: "p1", Err: "timeout"})
	if view := m.View(); !strings.Contains(view, "timeout") {
		t.Error("failed view missing error")
	}

	state.ApplySnapshot(&usagesvc.Snapshot{Seq: 2, ProviderID: "p1", NotConfigured: true})
	if view := m.View(); !strings.Contains(view, "No API key") {
		t.Error("not-configured view missing message")
	}
}

func TestModel_ViewEmptyStats(t *testing.T) {
	m, state := newTestModel()
	state.ApplySnapshot(&usagesvc.Snapshot{Seq: 1, ProviderID: "p1"})

	if view := m.View(); !strings.Contains(view, "No model usage") {
		t.Error("empty view missing placeholder")
	}
}

func TestShortModelName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"claude-opus-4", "claude-opus-4"},
		{"claude-sonnet-4-20250514", "claude-sonnet-4"},
		{"gpt-4o-mini-2024-07-18-preview-extra", "gpt-4o-mini-2024-07-18-preview-extra"[:17] + "..."},
	}
	for _, tt := range tests {
		if got := shortModelName(tt.in); got != tt.want {
			t.Errorf("shortModelName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
