// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/veylab/relaymeter/internal/models"
	"github.com/veylab/relaymeter/internal/services"
	"github.com/veylab/relaymeter/internal/services/usage"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// UsagePhase is the phase of the usage view. The view is always in
// exactly one phase; there is no separate loading flag to fall out of
// sync with the data.
type UsagePhase int

const (
	// PhaseIdle means no fetch has been issued yet.
	PhaseIdle UsagePhase = iota
	// PhaseLoading means a fetch is in flight.
	PhaseLoading
	// PhaseNotConfigured means the selected provider has no usable API key.
	PhaseNotConfigured
	// PhaseFailed means the last fetch failed.
	PhaseFailed
	// PhaseLoaded means the view holds a current snapshot.
	PhaseLoaded
)

// String returns the string representation of a UsagePhase.
func (p UsagePhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseNotConfigured:
		return "not configured"
	case PhaseFailed:
		return "failed"
	case PhaseLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// UsageView is the usage portion of the UI state. Snapshot is only
// meaningful in PhaseLoaded (and, as the previous reading, during
// PhaseLoading); Err is only meaningful in PhaseFailed.
type UsageView struct {
	Phase    UsagePhase
	Snapshot *usage.Snapshot
	Err      string

	// lastSeq is the sequence number of the newest applied snapshot.
	// Responses with an older seq are dropped so a slow fetch can
	// never overwrite a newer one.
	lastSeq uint64
}

// State is the shared application state.
type State struct {
	mu sync.RWMutex

	Providers             []models.Provider
	CurrentProvider       *models.Provider
	SelectedProviderIndex int

	Period models.Period
	Usage  UsageView

	History []usage.CostPoint
	Stats   *services.StatsEvent

	LastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// NewState creates the initial application state.
func NewState() *State {
	return &State{
		Providers:     make([]models.Provider, 0),
		Period:        models.PeriodDaily,
		notifications: make([]Notification, 0),
	}
}

// SetProviders updates the provider list and the current provider.
func (s *State) SetProviders(providers []models.Provider, current *models.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Providers = providers
	s.CurrentProvider = current
	s.LastUpdated = time.Now()

	if s.SelectedProviderIndex >= len(providers) {
		s.SelectedProviderIndex = max(0, len(providers)-1)
	}
}

// GetProviders returns a copy of the provider list.
func (s *State) GetProviders() []models.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()

	providers := make([]models.Provider, len(s.Providers))
	copy(providers, s.Providers)
	return providers
}

// GetProviderCount returns the number of providers.
func (s *State) GetProviderCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.Providers)
}

// GetCurrentProvider returns the selected provider.
func (s *State) GetCurrentProvider() *models.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.CurrentProvider
}

// GetSelectedProviderIndex returns the cursor position in the provider list.
func (s *State) GetSelectedProviderIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SelectedProviderIndex
}

// SetSelectedProviderIndex moves the cursor in the provider list.
func (s *State) SetSelectedProviderIndex(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx < 0 || idx >= len(s.Providers) {
		return
	}
	s.SelectedProviderIndex = idx
}

// GetPeriod returns the currently displayed usage period.
func (s *State) GetPeriod() models.Period {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Period
}

// TogglePeriod flips between the daily and monthly period and returns
// the new value.
func (s *State) TogglePeriod() models.Period {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Period = s.Period.Toggle()
	return s.Period
}

// BeginFetch moves the usage view into the loading phase. The previous
// snapshot stays around so the view can keep rendering stale numbers
// under the spinner.
func (s *State) BeginFetch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Usage.Phase = PhaseLoading
	s.Usage.Err = ""
}

// ApplySnapshot applies a fetch result to the usage view. It returns
// false when the snapshot is stale, that is, when a newer one has
// already been applied.
func (s *State) ApplySnapshot(snap *usage.Snapshot) bool {
	if snap == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.Seq <= s.Usage.lastSeq {
		return false
	}
	s.Usage.lastSeq = snap.Seq
	s.LastUpdated = time.Now()

	switch {
	case snap.NotConfigured:
		s.Usage = UsageView{Phase: PhaseNotConfigured, lastSeq: s.Usage.lastSeq}
	case snap.Failed():
		s.Usage = UsageView{Phase: PhaseFailed, Err: snap.Err, lastSeq: s.Usage.lastSeq}
	default:
		s.Usage = UsageView{Phase: PhaseLoaded, Snapshot: snap, lastSeq: s.Usage.lastSeq}
	}
	return true
}

// ResetUsage clears the usage view, e.g. after switching providers.
func (s *State) ResetUsage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Usage = UsageView{Phase: PhaseIdle, lastSeq: s.Usage.lastSeq}
}

// GetUsage returns the current usage view.
func (s *State) GetUsage() UsageView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Usage
}

// SetHistory replaces the in-session cost history used for charting.
func (s *State) SetHistory(points []usage.CostPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.History = points
}

// GetHistory returns a copy of the cost history.
func (s *State) GetHistory() []usage.CostPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	points := make([]usage.CostPoint, len(s.History))
	copy(points, s.History)
	return points
}

// SetStats updates the statistics.
func (s *State) SetStats(stats services.StatsEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Stats = &stats
}

// GetStats returns the current statistics.
func (s *State) GetStats() *services.StatsEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Stats
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	notification := Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	}

	s.notifications = append(s.notifications, notification)

	// Keep only the last 10 notifications
	if len(s.notifications) > 10 {
		s.notifications = s.notifications[len(s.notifications)-10:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}

	return active
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  0,
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// GetLastUpdated returns the last time the state was updated.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}

// TimeSinceUpdate returns the duration since the last update.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}
