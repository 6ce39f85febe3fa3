package usage

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/veylab/relaymeter/internal/logger"
	"github.com/veylab/relaymeter/internal/models"
)

// ProviderSource supplies provider records to the usage service.
type ProviderSource interface {
	GetProviderByID(id string) *models.Provider
	GetCurrentProvider() *models.Provider
}

// Event represents a usage service event.
type Event struct {
	Type       EventType
	ProviderID string
	Snapshot   *Snapshot
	Error      error
}

// EventType defines the type of usage event.
type EventType int

const (
	// EventUsageUpdated indicates a snapshot was refreshed.
	EventUsageUpdated EventType = iota
	// EventUsageError indicates the fetch pair failed.
	EventUsageError
)

// Snapshot is the result of one joined fetch pair for a provider and
// period. Exactly one of the following holds: NotConfigured is set, Err
// is non-empty, or Overview and ModelStats are populated. The two remote
// calls succeed or fail together; there is no partial snapshot.
type Snapshot struct {
	Seq           uint64
	ProviderID    string
	AppKind       models.AppKind
	Period        models.Period
	FetchedAt     time.Time
	NotConfigured bool
	Err           string
	Overview      *models.UsageOverview
	ModelStats    []models.ModelUsage
	Aggregate     *models.PeriodUsage
}

// Failed reports whether the snapshot represents a fetch failure.
func (s *Snapshot) Failed() bool {
	return s != nil && s.Err != ""
}

// CostPoint is one in-session reading of the overview's daily cost.
type CostPoint struct {
	At   time.Time
	Cost float64
}

// Config holds configuration for the usage service.
type Config struct {
	BaseURLOverride string
	PollInterval    time.Duration
	HistoryLimit    int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval: 60 * time.Second,
		HistoryLimit: 240,
	}
}

// Service fetches usage snapshots, caches the latest per provider and
// period, and keeps an in-session cost history for charting. Nothing is
// persisted: all state dies with the process.
type Service struct {
	mu           sync.RWMutex
	providers    ProviderSource
	client       *Client
	config       Config
	cache        map[string]*Snapshot
	history      map[string][]CostPoint
	activePeriod models.Period
	eventChan    chan Event
	stopChan     chan struct{}
	seq          atomic.Uint64
}

// New creates a new usage service and starts the background refresh loop.
func New(providers ProviderSource, config Config) *Service {
	def := DefaultConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = def.PollInterval
	}
	if config.HistoryLimit <= 0 {
		config.HistoryLimit = def.HistoryLimit
	}

	s := &Service{
		providers:    providers,
		client:       NewClient(),
		config:       config,
		cache:        make(map[string]*Snapshot),
		history:      make(map[string][]CostPoint),
		activePeriod: models.PeriodDaily,
		eventChan:    make(chan Event, 100),
		stopChan:     make(chan struct{}),
	}

	go s.pollLoop()

	return s
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// NextSeq allocates the sequence number for a fetch about to be issued.
// Snapshots carry their seq so consumers can drop out-of-order results.
func (s *Service) NextSeq() uint64 {
	return s.seq.Add(1)
}

// SetActivePeriod sets the period the background refresh loop queries.
func (s *Service) SetActivePeriod(period models.Period) {
	s.mu.Lock()
	s.activePeriod = period
	s.mu.Unlock()
}

// ActivePeriod returns the period the background refresh loop queries.
func (s *Service) ActivePeriod() models.Period {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activePeriod
}

// GetSnapshot returns the cached snapshot for a provider and period.
func (s *Service) GetSnapshot(providerID string, period models.Period) *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache[cacheKey(providerID, period)]
}

// CachedCount returns the number of cached snapshots.
func (s *Service) CachedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

// History returns a copy of the in-session daily-cost history for a provider.
func (s *Service) History(providerID string) []CostPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	points := s.history[providerID]
	out := make([]CostPoint, len(points))
	copy(out, points)
	return out
}

// Fetch resolves the provider's credential and performs the joined fetch
// pair. The returned snapshot is always non-nil; a missing credential
// yields a NotConfigured snapshot, which is a state, not an error.
func (s *Service) Fetch(ctx context.Context, providerID string, period models.Period) *Snapshot {
	seq := s.NextSeq()
	return s.fetchWithSeq(ctx, providerID, period, seq)
}

func (s *Service) fetchWithSeq(ctx context.Context, providerID string, period models.Period, seq uint64) *Snapshot {
	snap := &Snapshot{
		Seq:        seq,
		ProviderID: providerID,
		Period:     period,
		FetchedAt:  time.Now(),
	}

	provider := s.providers.GetProviderByID(providerID)
	if provider == nil {
		snap.NotConfigured = true
		s.store(snap)
		return snap
	}
	snap.AppKind = provider.AppKind

	apiKey := models.ExtractAPIKey(provider, provider.AppKind)
	if apiKey == "" {
		snap.NotConfigured = true
		s.store(snap)
		return snap
	}

	baseURL := ResolveBaseURL(provider, s.config.BaseURLOverride)

	// Both calls run concurrently and are joined: either both succeed
	// or the pair fails with a single error and no data.
	var (
		wg          sync.WaitGroup
		overview    *models.UsageOverview
		modelStats  []models.ModelUsage
		overviewErr error
		statsErr    error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		overview, overviewErr = s.client.QueryOverview(ctx, baseURL, apiKey, period)
	}()
	go func() {
		defer wg.Done()
		modelStats, statsErr = s.client.QueryModelStats(ctx, baseURL, apiKey, period)
	}()
	wg.Wait()

	if err := firstError(overviewErr, statsErr); err != nil {
		snap.Err = err.Error()
		s.store(snap)
		s.sendEvent(Event{Type: EventUsageError, ProviderID: providerID, Snapshot: snap, Error: err})
		return snap
	}

	filtered := models.FilterForApp(modelStats, provider.AppKind)

	snap.Overview = overview
	snap.ModelStats = filtered
	snap.Aggregate = models.Aggregate(filtered)

	s.store(snap)
	s.recordCost(providerID, overview.Limits.CurrentDailyCost, snap.FetchedAt)
	s.sendEvent(Event{Type: EventUsageUpdated, ProviderID: providerID, Snapshot: snap})

	logger.Debug("usage refreshed",
		"provider", providerID, "period", period.String(), "models", len(filtered))

	return snap
}

// RefreshCurrent fetches usage for the currently selected provider.
func (s *Service) RefreshCurrent(ctx context.Context, period models.Period) *Snapshot {
	provider := s.providers.GetCurrentProvider()
	if provider == nil {
		return nil
	}
	return s.Fetch(ctx, provider.ID, period)
}

// pollLoop refreshes the selected provider at the configured interval.
func (s *Service) pollLoop() {
	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			s.RefreshCurrent(ctx, s.ActivePeriod())
			cancel()

		case <-s.stopChan:
			return
		}
	}
}

// store caches a snapshot unless a newer one is already present.
func (s *Service) store(snap *Snapshot) {
	key := cacheKey(snap.ProviderID, snap.Period)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.cache[key]; ok && existing.Seq > snap.Seq {
		return
	}
	s.cache[key] = snap
}

// recordCost appends one cost reading to the session history ring.
func (s *Service) recordCost(providerID string, cost float64, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	points := append(s.history[providerID], CostPoint{At: at, Cost: cost})
	if limit := s.config.HistoryLimit; limit > 0 && len(points) > limit {
		points = points[len(points)-limit:]
	}
	s.history[providerID] = points
}

// sendEvent sends an event without blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
	}
}

// Close stops the background refresh loop.
func (s *Service) Close() error {
	close(s.stopChan)
	return nil
}

func cacheKey(providerID string, period models.Period) string {
	return providerID + "/" + period.String()
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
