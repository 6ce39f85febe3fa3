package info

import (
	"strings"
	"testing"
	"time"

	"github.com/veylab/relaymeter/internal/app"
	"github.com/veylab/relaymeter/internal/config"
	"github.com/veylab/relaymeter/internal/models"
	usagesvc "github.com/veylab/relaymeter/internal/services/usage"
)

func TestModel_View(t *testing.T) {
	state := app.NewState()
	state.SetProviders([]models.Provider{
		{ID: "p1", Name: "One", AppKind: models.AppClaude},
		{ID: "p2", Name: "Two", AppKind: models.AppCodex},
	}, nil)

	cfg := &config.Config{
		ProvidersPath:   "/tmp/providers.json",
		RefreshInterval: 60 * time.Second,
		DefaultPeriod:   models.PeriodDaily,
	}

	m := New(state, cfg)
	m.SetSize(100, 40)

	view := m.View()

	for _, want := range []string{
		"Configuration",
		"/tmp/providers.json",
		"1m0s",
		"daily",
		"About Relaymeter",
		"Providers",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	// No override set, so the base URL shows the default marker.
	if !strings.Contains(view, "default") {
		t.Error("view missing default base URL marker")
	}

	// Nothing fetched yet.
	if !strings.Contains(view, "never") {
		t.Error("view missing last-updated placeholder")
	}
}

func TestModel_ViewLastUpdated(t *testing.T) {
	state := app.NewState()
	state.ApplySnapshot(&usagesvc.Snapshot{Seq: 1, ProviderID: "p1"})

	m := New(state, nil)
	m.SetSize(100, 40)

	if view := m.View(); !strings.Contains(view, "ago") {
		t.Error("view should show time since the last update")
	}
}

func TestModel_ViewNilConfig(t *testing.T) {
	m := New(app.NewState(), nil)
	m.SetSize(100, 40)

	if view := m.View(); !strings.Contains(view, "Configuration not loaded") {
		t.Error("nil config view missing placeholder")
	}
}
