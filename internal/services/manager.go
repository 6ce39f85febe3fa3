// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/veylab/relaymeter/internal/config"
	"github.com/veylab/relaymeter/internal/models"
	"github.com/veylab/relaymeter/internal/services/providers"
	"github.com/veylab/relaymeter/internal/services/usage"
)

// dailyCostAlertPercent is the daily-spend threshold for the desktop
// notification, as a percentage of the key's configured daily limit.
const dailyCostAlertPercent = 90.0

type (
	// ProvidersChangedEvent is emitted when the provider list changes.
	ProvidersChangedEvent struct {
		Providers       []models.Provider
		CurrentProvider *models.Provider
	}

	// UsageUpdatedEvent is emitted when a usage snapshot is refreshed.
	UsageUpdatedEvent struct {
		ProviderID string
		Snapshot   *usage.Snapshot
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}

	// StatsEvent is emitted when global statistics change.
	StatsEvent struct {
		ProviderCount int
		CachedUsage   int
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (ProvidersChangedEvent) isServiceEvent() {}
func (UsageUpdatedEvent) isServiceEvent()     {}
func (ErrorEvent) isServiceEvent()            {}
func (StatsEvent) isServiceEvent()            {}

// Manager orchestrates services and event routing.
type Manager struct {
	mu            sync.RWMutex
	providers     *providers.Service
	usage         *usage.Service
	eventChan     chan ServiceEvent
	stopChan      chan struct{}
	subscribers   []chan<- ServiceEvent
	previousCosts map[string]float64
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		eventChan:     make(chan ServiceEvent, 100),
		stopChan:      make(chan struct{}),
		previousCosts: make(map[string]float64),
	}

	var err error
	m.providers, err = providers.New(cfg.ProvidersPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize provider service: %w", err)
	}

	usageConfig := usage.DefaultConfig()
	usageConfig.BaseURLOverride = cfg.BaseURLOverride
	usageConfig.PollInterval = cfg.RefreshInterval

	m.usage = usage.New(m.providers, usageConfig)
	m.usage.SetActivePeriod(cfg.DefaultPeriod)

	go m.routeEvents()

	return m, nil
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.providers.Events():
			m.handleProviderEvent(event)

		case event := <-m.usage.Events():
			m.handleUsageEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

// handleProviderEvent converts and broadcasts provider events.
func (m *Manager) handleProviderEvent(event providers.Event) {
	switch event.Type {
	case providers.EventProvidersLoaded, providers.EventProvidersChanged,
		providers.EventCurrentChanged:

		m.broadcast(ProvidersChangedEvent{
			Providers:       m.providers.GetProviders(),
			CurrentProvider: m.providers.GetCurrentProvider(),
		})

	case providers.EventError:
		m.broadcast(ErrorEvent{
			Service: "providers",
			Error:   event.Error,
		})
	}
}

func (m *Manager) handleUsageEvent(event usage.Event) {
	switch event.Type {
	case usage.EventUsageUpdated:
		m.broadcast(UsageUpdatedEvent{
			ProviderID: event.ProviderID,
			Snapshot:   event.Snapshot,
		})

		if event.Snapshot != nil && event.Snapshot.Overview != nil {
			m.checkNotifications(event.ProviderID, event.Snapshot.Overview)
		}

	case usage.EventUsageError:
		m.broadcast(ErrorEvent{
			Service: "usage",
			Error:   event.Error,
		})
	}
}

// checkNotifications fires a desktop notification when the daily spend
// crosses the alert threshold. Only the upward crossing notifies, so
// refreshes that stay above the limit remain quiet.
func (m *Manager) checkNotifications(providerID string, overview *models.UsageOverview) {
	limits := overview.Limits
	if limits.DailyCostLimit <= 0 {
		return
	}

	newPercent := limits.CurrentDailyCost / limits.DailyCostLimit * 100

	oldPercent, exists := m.previousCosts[providerID]
	m.previousCosts[providerID] = newPercent

	if !exists {
		return
	}

	if newPercent >= dailyCostAlertPercent && oldPercent < dailyCostAlertPercent {
		title := fmt.Sprintf("Daily Cost Alert: %s", overview.Name)
		body := fmt.Sprintf("Daily spend has reached %.0f%% of the configured limit.", newPercent)
		_ = beeep.Notify(title, body, "")
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	// Send to main event channel
	select {
	case m.eventChan <- event:
	default:
	}

	// Send to subscribers
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// GetProviders returns all configured providers.
func (m *Manager) GetProviders() []models.Provider {
	return m.providers.GetProviders()
}

// GetCurrentProvider returns the selected provider, if any.
func (m *Manager) GetCurrentProvider() *models.Provider {
	return m.providers.GetCurrentProvider()
}

// SetCurrentProvider selects a provider by ID and persists the choice.
func (m *Manager) SetCurrentProvider(id string) error {
	return m.providers.SetCurrent(id)
}

// FetchUsage performs the joined usage fetch for a provider and period.
func (m *Manager) FetchUsage(ctx context.Context, providerID string, period models.Period) *usage.Snapshot {
	return m.usage.Fetch(ctx, providerID, period)
}

// GetSnapshot returns the cached snapshot for a provider and period.
func (m *Manager) GetSnapshot(providerID string, period models.Period) *usage.Snapshot {
	return m.usage.GetSnapshot(providerID, period)
}

// History returns the in-session daily-cost history for a provider.
func (m *Manager) History(providerID string) []usage.CostPoint {
	return m.usage.History(providerID)
}

// SetActivePeriod sets the period the background refresh queries.
func (m *Manager) SetActivePeriod(period models.Period) {
	m.usage.SetActivePeriod(period)
}

// GetStats returns aggregated statistics.
func (m *Manager) GetStats() StatsEvent {
	return StatsEvent{
		ProviderCount: m.providers.Count(),
		CachedUsage:   m.usage.CachedCount(),
	}
}

// Providers returns the provider service.
func (m *Manager) Providers() *providers.Service {
	return m.providers
}

// Usage returns the usage service.
func (m *Manager) Usage() *usage.Service {
	return m.usage
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if err := m.providers.Close(); err != nil {
		errs = append(errs, err)
	}

	if err := m.usage.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
