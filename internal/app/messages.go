package app

import (
	"time"

	"github.com/veylab/relaymeter/internal/models"
	"github.com/veylab/relaymeter/internal/services"
	"github.com/veylab/relaymeter/internal/services/usage"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// ProvidersLoadedMsg contains the loaded provider list.
type ProvidersLoadedMsg struct {
	Providers []models.Provider
	Current   *models.Provider
	Stats     services.StatsEvent
}

// UsageFetchedMsg contains the result of a usage fetch. The snapshot is
// always non-nil and carries its own failure or not-configured state.
type UsageFetchedMsg struct {
	Snapshot *usage.Snapshot
}

// HistoryLoadedMsg contains the in-session cost history for the chart.
type HistoryLoadedMsg struct {
	ProviderID string
	Points     []usage.CostPoint
}

// SwitchProviderMsg requests switching to a different provider.
type SwitchProviderMsg struct {
	ProviderID string
}

// SwitchProviderResultMsg contains the result of a provider switch.
type SwitchProviderResultMsg struct {
	ProviderID string
	Success    bool
	Error      error
}

// PeriodToggledMsg signals that the displayed period changed.
type PeriodToggledMsg struct {
	Period models.Period
}

// RefreshMsg requests a refresh of the current provider's usage.
type RefreshMsg struct{}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// SelectedProviderChangedMsg signals that the list cursor moved.
type SelectedProviderChangedMsg struct {
	Index      int
	ProviderID string
}
