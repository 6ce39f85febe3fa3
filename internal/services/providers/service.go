// Package providers reads the switcher's provider list and watches it for changes.
package providers

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/veylab/relaymeter/internal/logger"
	"github.com/veylab/relaymeter/internal/models"
)

// File represents the JSON structure of the providers file. The file is
// owned by the switcher application; this service treats it as mostly
// read-only and only ever rewrites the `current` selection.
type File struct {
	Version   int               `json:"version,omitempty"`
	Current   string            `json:"current,omitempty"`
	Providers []models.Provider `json:"providers"`
}

// Event represents a provider service event.
type Event struct {
	Type  EventType
	Error error
}

// EventType defines the type of provider event.
type EventType int

const (
	// EventProvidersLoaded is emitted once after the initial load.
	EventProvidersLoaded EventType = iota
	// EventProvidersChanged is emitted when the file changes on disk.
	EventProvidersChanged
	// EventCurrentChanged is emitted when the selected provider changes.
	EventCurrentChanged
	// EventError is emitted when loading or watching fails.
	EventError
)

// Service manages the provider list with file watching and change
// notifications. A file change is how credential and base-URL changes
// reach the application, so subscribers re-fetch usage on every reload.
type Service struct {
	mu            sync.RWMutex
	providers     []models.Provider
	current       string
	filePath      string
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
}

// New creates a new provider service and starts file watching. A missing
// providers file is not an error: the switcher may not have run yet.
func New(filePath string) (*Service, error) {
	s := &Service{
		providers: make([]models.Provider, 0),
		filePath:  filePath,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load providers: %w", err)
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventProvidersLoaded})

	return s, nil
}

// Events returns the event channel for subscribing to provider changes.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// GetProviders returns a copy of all providers.
func (s *Service) GetProviders() []models.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()

	providers := make([]models.Provider, len(s.providers))
	copy(providers, s.providers)
	return providers
}

// GetProviderByID returns the provider with the given ID, or nil.
func (s *Service) GetProviderByID(id string) *models.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.providers {
		if s.providers[i].ID == id {
			p := s.providers[i]
			return &p
		}
	}
	return nil
}

// GetCurrentProvider returns the selected provider, falling back to the
// first entry when no selection is recorded.
func (s *Service) GetCurrentProvider() *models.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.providers {
		if s.providers[i].ID == s.current {
			p := s.providers[i]
			return &p
		}
	}

	if len(s.providers) > 0 {
		p := s.providers[0]
		return &p
	}
	return nil
}

// GetCurrentID returns the ID of the selected provider.
func (s *Service) GetCurrentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Count returns the number of providers.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.providers)
}

// SetCurrent selects a provider by ID and persists the selection.
func (s *Service) SetCurrent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, p := range s.providers {
		if p.ID == id {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("provider not found: %s", id)
	}

	s.current = id
	if err := s.saveLocked(); err != nil {
		return fmt.Errorf("failed to save providers: %w", err)
	}

	s.sendEvent(Event{Type: EventCurrentChanged})
	return nil
}

// load reads the providers file into memory.
func (s *Service) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse providers file: %w", err)
	}

	s.mu.Lock()
	s.providers = file.Providers
	s.current = file.Current
	s.mu.Unlock()
	return nil
}

// saveLocked writes the providers file atomically (must hold lock).
func (s *Service) saveLocked() error {
	file := File{
		Version:   1,
		Current:   s.current,
		Providers: s.providers,
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal providers: %w", err)
	}

	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, s.filePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// startWatcher starts the file system watcher on the parent directory so
// file creation and atomic replace are both observed.
func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	dir := filepath.Dir(s.filePath)
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (s *Service) watchLoop() {
	const debounceInterval = 250 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				s.mu.Lock()
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, s.handleFileChange)
				s.mu.Unlock()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleFileChange reloads the provider list after an external change.
func (s *Service) handleFileChange() {
	if err := s.load(); err != nil {
		if os.IsNotExist(err) {
			// File removed: treat as an empty provider list.
			s.mu.Lock()
			s.providers = nil
			s.current = ""
			s.mu.Unlock()
			s.sendEvent(Event{Type: EventProvidersChanged})
			return
		}
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}

	logger.Debug("providers file reloaded", "path", s.filePath)
	s.sendEvent(Event{Type: EventProvidersChanged})
}

// sendEvent sends an event without blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		logger.Warn("provider event channel full, dropping event", "type", event.Type)
	}
}

// Close stops the watcher and releases resources.
func (s *Service) Close() error {
	close(s.stopChan)

	s.mu.Lock()
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.mu.Unlock()

	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
