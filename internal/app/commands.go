package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/veylab/relaymeter/internal/models"
	"github.com/veylab/relaymeter/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second

	// fetchTimeout bounds a single UI-initiated usage fetch.
	fetchTimeout = 45 * time.Second
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadProvidersCmd returns a command that loads the provider list.
func loadProvidersCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return ProvidersLoadedMsg{
			Providers: mgr.GetProviders(),
			Current:   mgr.GetCurrentProvider(),
			Stats:     mgr.GetStats(),
		}
	}
}

// fetchUsageCmd returns a command that performs the joined usage fetch
// for a provider and period. The snapshot it yields carries a sequence
// number, so out-of-order results are dropped when applied.
func fetchUsageCmd(mgr *services.Manager, providerID string, period models.Period) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		snap := mgr.FetchUsage(ctx, providerID, period)
		return UsageFetchedMsg{Snapshot: snap}
	}
}

// loadHistoryCmd returns a command that loads the cost history for the chart.
func loadHistoryCmd(mgr *services.Manager, providerID string) tea.Cmd {
	return func() tea.Msg {
		return HistoryLoadedMsg{
			ProviderID: providerID,
			Points:     mgr.History(providerID),
		}
	}
}

// switchProviderCmd returns a command that switches the current provider.
func switchProviderCmd(mgr *services.Manager, providerID string) tea.Cmd {
	return func() tea.Msg {
		err := mgr.SetCurrentProvider(providerID)
		return SwitchProviderResultMsg{
			ProviderID: providerID,
			Success:    err == nil,
			Error:      err,
		}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationSuccess,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationError,
			Message:  message,
			Duration: LongNotificationDuration,
		}
	}
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationInfo,
			Message:  message,
			Duration: QuickNotificationDuration,
		}
	}
}

// delayedCmd returns a command that sends a message after a delay.
func delayedCmd(delay time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return msg
	})
}

// Commands provides a public interface to the command functions for tabs.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// Tick returns a tick command with the specified interval.
func (c *Commands) Tick(interval time.Duration) tea.Cmd {
	return tickCmd(interval)
}

// LoadProviders returns a command that loads the provider list.
func (c *Commands) LoadProviders() tea.Cmd {
	return loadProvidersCmd(c.manager)
}

// FetchUsage returns a command that fetches usage for a provider and period.
func (c *Commands) FetchUsage(providerID string, period models.Period) tea.Cmd {
	return fetchUsageCmd(c.manager, providerID, period)
}

// LoadHistory returns a command that loads the cost history.
func (c *Commands) LoadHistory(providerID string) tea.Cmd {
	return loadHistoryCmd(c.manager, providerID)
}

// SwitchProvider returns a command that switches the current provider.
func (c *Commands) SwitchProvider(providerID string) tea.Cmd {
	return switchProviderCmd(c.manager, providerID)
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}

// Delayed returns a command that sends a message after a delay.
func (c *Commands) Delayed(delay time.Duration, msg tea.Msg) tea.Cmd {
	return delayedCmd(delay, msg)
}
