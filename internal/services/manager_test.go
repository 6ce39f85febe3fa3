package services

import (
	"testing"
	"time"

	"github.com/veylab/relaymeter/internal/config"
	"github.com/veylab/relaymeter/internal/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	tmpDir := t.TempDir()
	cfg := &config.Config{
		ProvidersPath:   tmpDir + "/providers.json",
		RefreshInterval: time.Hour,
		DefaultPeriod:   models.PeriodDaily,
	}

	mgr, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr
}

func TestNewManager(t *testing.T) {
	mgr := newTestManager(t)

	if mgr.Providers() == nil {
		t.Error("Providers service should be initialized")
	}
	if mgr.Usage() == nil {
		t.Error("Usage service should be initialized")
	}

	stats := mgr.GetStats()
	if stats.ProviderCount != 0 {
		t.Errorf("Stats.ProviderCount = %d, want 0", stats.ProviderCount)
	}
}

func TestManager_Subscription(t *testing.T) {
	mgr := newTestManager(t)

	ch, cmd := mgr.Subscribe()
	if ch == nil {
		t.Error("Subscribe returned nil channel")
	}
	if cmd == nil {
		t.Error("Subscribe returned nil command")
	}

	mgr.Unsubscribe(ch)

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Channel should be closed")
		}
	default:
		// might block if not closed and empty, but Unsubscribe closes it
	}
}

func TestManager_Broadcast(t *testing.T) {
	mgr := newTestManager(t)

	ch, _ := mgr.Subscribe()
	defer mgr.Unsubscribe(ch)

	event := StatsEvent{ProviderCount: 1}
	mgr.broadcast(event)

	select {
	case e := <-ch:
		if e != event {
			t.Errorf("Got event %v, want %v", e, event)
		}
	case <-time.After(time.Second):
		t.Error("Timeout waiting for broadcast")
	}
}

func TestManager_CheckNotifications(t *testing.T) {
	mgr := newTestManager(t)

	overview := func(current float64) *models.UsageOverview {
		return &models.UsageOverview{
			Name: "key",
			Limits: models.UsageLimits{
				DailyCostLimit:   10,
				CurrentDailyCost: current,
			},
		}
	}

	// First reading only seeds the state, no notification.
	mgr.checkNotifications("p1", overview(5))
	if got := mgr.previousCosts["p1"]; got != 50 {
		t.Errorf("previousCosts = %v, want 50", got)
	}

	// Crossing the threshold upward updates the state. beeep is
	// best-effort and may fail in a headless environment; it must
	// not panic either way.
	mgr.checkNotifications("p1", overview(9.5))
	if got := mgr.previousCosts["p1"]; got != 95 {
		t.Errorf("previousCosts = %v, want 95", got)
	}

	// A key with no daily limit never records anything.
	mgr.checkNotifications("p2", &models.UsageOverview{Name: "unlimited"})
	if _, ok := mgr.previousCosts["p2"]; ok {
		t.Error("unlimited key should not be tracked")
	}
}

func TestWaitForEvent(t *testing.T) {
	ch := make(chan ServiceEvent, 1)
	ch <- StatsEvent{}

	cmd := WaitForEvent(ch)
	msg := cmd()
	if msg == nil {
		t.Error("WaitForEvent cmd returned nil msg")
	}
}

func TestServiceEvent_Interface(t *testing.T) {
	var _ ServiceEvent = ProvidersChangedEvent{}
	var _ ServiceEvent = UsageUpdatedEvent{}
	var _ ServiceEvent = ErrorEvent{}
	var _ ServiceEvent = StatsEvent{}
}
