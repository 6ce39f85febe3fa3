package app

import (
	"testing"
	"time"

	"github.com/veylab/relaymeter/internal/models"
	"github.com/veylab/relaymeter/internal/services/usage"
)

func TestNewState(t *testing.T) {
	s := NewState()

	if s.GetProviderCount() != 0 {
		t.Error("new state should have no providers")
	}
	if s.GetPeriod() != models.PeriodDaily {
		t.Errorf("Period = %v, want daily", s.GetPeriod())
	}
	if s.GetUsage().Phase != PhaseIdle {
		t.Errorf("Phase = %v, want idle", s.GetUsage().Phase)
	}
}

func TestState_SetProviders(t *testing.T) {
	s := NewState()

	providers := []models.Provider{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B"},
	}
	s.SetProviders(providers, &providers[1])

	if s.GetProviderCount() != 2 {
		t.Errorf("count = %d, want 2", s.GetProviderCount())
	}
	if cur := s.GetCurrentProvider(); cur == nil || cur.ID != "b" {
		t.Errorf("current = %v, want b", cur)
	}

	// Shrinking the list clamps the cursor.
	s.SetSelectedProviderIndex(1)
	s.SetProviders(providers[:1], &providers[0])
	if got := s.GetSelectedProviderIndex(); got != 0 {
		t.Errorf("selected index = %d, want 0", got)
	}
}

func TestState_TogglePeriod(t *testing.T) {
	s := NewState()

	if got := s.TogglePeriod(); got != models.PeriodMonthly {
		t.Errorf("TogglePeriod() = %v, want monthly", got)
	}
	if got := s.TogglePeriod(); got != models.PeriodDaily {
		t.Errorf("TogglePeriod() = %v, want daily", got)
	}
}

func TestState_UsagePhases(t *testing.T) {
	s := NewState()

	s.BeginFetch()
	if s.GetUsage().Phase != PhaseLoading {
		t.Errorf("Phase = %v, want loading", s.GetUsage().Phase)
	}

	// A loaded snapshot moves the view to PhaseLoaded.
	loaded := &usage.Snapshot{Seq: 1, ProviderID: "p1", Overview: &models.UsageOverview{Name: "key"}}
	if !s.ApplySnapshot(loaded) {
		t.Fatal("ApplySnapshot() = false, want true")
	}
	view := s.GetUsage()
	if view.Phase != PhaseLoaded || view.Snapshot != loaded {
		t.Errorf("view = %+v, want loaded", view)
	}

	// A failed snapshot carries only an error.
	failed := &usage.Snapshot{Seq: 2, ProviderID: "p1", Err: "boom"}
	s.ApplySnapshot(failed)
	view = s.GetUsage()
	if view.Phase != PhaseFailed || view.Err != "boom" || view.Snapshot != nil {
		t.Errorf("view = %+v, want failed with no snapshot", view)
	}

	// A not-configured snapshot is a state, not an error.
	s.ApplySnapshot(&usage.Snapshot{Seq: 3, ProviderID: "p1", NotConfigured: true})
	view = s.GetUsage()
	if view.Phase != PhaseNotConfigured || view.Err != "" {
		t.Errorf("view = %+v, want not configured", view)
	}
}

func TestState_ApplySnapshotDropsStale(t *testing.T) {
	s := NewState()

	newer := &usage.Snapshot{Seq: 5, ProviderID: "p1", Overview: &models.UsageOverview{}}
	older := &usage.Snapshot{Seq: 3, ProviderID: "p1", Err: "late failure"}

	if !s.ApplySnapshot(newer) {
		t.Fatal("newer snapshot should apply")
	}
	if s.ApplySnapshot(older) {
		t.Error("stale snapshot must be dropped")
	}
	if view := s.GetUsage(); view.Phase != PhaseLoaded || view.Snapshot != newer {
		t.Errorf("view = %+v, want the newer snapshot", view)
	}

	if s.ApplySnapshot(nil) {
		t.Error("nil snapshot must be dropped")
	}
}

func TestState_ResetUsageKeepsSeqGuard(t *testing.T) {
	s := NewState()

	s.ApplySnapshot(&usage.Snapshot{Seq: 4, Overview: &models.UsageOverview{}})
	s.ResetUsage()

	if s.GetUsage().Phase != PhaseIdle {
		t.Errorf("Phase = %v, want idle after reset", s.GetUsage().Phase)
	}

	// Reset must not reopen the door for stale responses.
	if s.ApplySnapshot(&usage.Snapshot{Seq: 2, Err: "stale"}) {
		t.Error("stale snapshot applied after reset")
	}
}

func TestState_Notifications(t *testing.T) {
	s := NewState()

	id := s.AddNotification(NotificationSuccess, "done", time.Minute)
	if id == "" {
		t.Error("AddNotification returned empty ID")
	}
	if got := len(s.GetNotifications()); got != 1 {
		t.Errorf("notifications = %d, want 1", got)
	}

	s.RemoveNotification(id)
	if got := len(s.GetNotifications()); got != 0 {
		t.Errorf("notifications = %d, want 0 after remove", got)
	}
}

func TestState_NotificationExpiry(t *testing.T) {
	s := NewState()

	s.AddNotification(NotificationInfo, "short lived", time.Nanosecond)
	time.Sleep(time.Millisecond)

	if got := len(s.GetNotifications()); got != 0 {
		t.Errorf("expired notification still visible: %d", got)
	}

	s.ClearExpiredNotifications()
	s.mu.RLock()
	raw := len(s.notifications)
	s.mu.RUnlock()
	if raw != 0 {
		t.Errorf("expired notification not cleared: %d", raw)
	}
}

func TestState_LoadingNotification(t *testing.T) {
	s := NewState()

	s.SetLoadingNotification("Loading...")
	s.SetLoadingNotification("Still loading...")

	notifications := s.GetNotifications()
	if len(notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifications))
	}
	if notifications[0].Message != "Still loading..." {
		t.Errorf("message = %q", notifications[0].Message)
	}

	s.ClearLoadingNotification()
	if got := len(s.GetNotifications()); got != 0 {
		t.Errorf("notifications = %d, want 0 after clear", got)
	}
}

func TestUsagePhase_String(t *testing.T) {
	tests := []struct {
		phase UsagePhase
		want  string
	}{
		{PhaseIdle, "idle"},
		{PhaseLoading, "loading"},
		{PhaseNotConfigured, "not configured"},
		{PhaseFailed, "failed"},
		{PhaseLoaded, "loaded"},
		{UsagePhase(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("UsagePhase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

func TestTimeSinceUpdate(t *testing.T) {
	s := NewState()

	if got := s.TimeSinceUpdate(); got != 0 {
		t.Errorf("TimeSinceUpdate() = %v before any update, want 0", got)
	}

	s.ApplySnapshot(&usage.Snapshot{Seq: 1, ProviderID: "p1"})
	if got := s.TimeSinceUpdate(); got <= 0 || got > time.Minute {
		t.Errorf("TimeSinceUpdate() = %v after a snapshot, want a small positive duration", got)
	}
}
