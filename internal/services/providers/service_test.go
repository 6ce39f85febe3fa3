package providers

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/veylab/relaymeter/internal/models"
)

func writeProvidersFile(t *testing.T, path string, file File) {
	t.Helper()
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func testFile() File {
	return File{
		Version: 1,
		Current: "packy",
		Providers: []models.Provider{
			{
				ID:         "packy",
				Name:       "PackyRelay",
				AppKind:    models.AppClaude,
				WebsiteURL: "https://relay.example.com",
				SettingsConfig: json.RawMessage(
					`{"env":{"ANTHROPIC_AUTH_TOKEN":"sk-test"}}`),
			},
			{
				ID:      "gem",
				Name:    "Gemini Direct",
				AppKind: models.AppGemini,
			},
		},
	}
}

func TestNewLoadsProviders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.json")
	writeProvidersFile(t, path, testFile())

	svc, err := New(path)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer func() { _ = svc.Close() }()

	if svc.Count() != 2 {
		t.Errorf("Count() = %d, want 2", svc.Count())
	}

	current := svc.GetCurrentProvider()
	if current == nil || current.ID != "packy" {
		t.Errorf("GetCurrentProvider() = %v, want packy", current)
	}

	if p := svc.GetProviderByID("gem"); p == nil || p.AppKind != models.AppGemini {
		t.Errorf("GetProviderByID(gem) = %v, want gemini provider", p)
	}
	if p := svc.GetProviderByID("missing"); p != nil {
		t.Errorf("GetProviderByID(missing) = %v, want nil", p)
	}
}

func TestNewMissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.json")

	svc, err := New(path)
	if err != nil {
		t.Fatalf("New() error for missing file: %v", err)
	}
	defer func() { _ = svc.Close() }()

	if svc.Count() != 0 {
		t.Errorf("Count() = %d, want 0", svc.Count())
	}
	if p := svc.GetCurrentProvider(); p != nil {
		t.Errorf("GetCurrentProvider() = %v, want nil", p)
	}
}

func TestCurrentFallsBackToFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.json")
	file := testFile()
	file.Current = "nonexistent"
	writeProvidersFile(t, path, file)

	svc, err := New(path)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer func() { _ = svc.Close() }()

	current := svc.GetCurrentProvider()
	if current == nil || current.ID != "packy" {
		t.Errorf("GetCurrentProvider() = %v, want first provider", current)
	}
}

func TestSetCurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.json")
	writeProvidersFile(t, path, testFile())

	svc, err := New(path)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer func() { _ = svc.Close() }()

	if err := svc.SetCurrent("gem"); err != nil {
		t.Fatalf("SetCurrent() error: %v", err)
	}
	if got := svc.GetCurrentID(); got != "gem" {
		t.Errorf("GetCurrentID() = %q, want gem", got)
	}

	// Selection is persisted.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		t.Fatalf("parse saved file: %v", err)
	}
	if file.Current != "gem" {
		t.Errorf("saved current = %q, want gem", file.Current)
	}

	if err := svc.SetCurrent("missing"); err == nil {
		t.Error("SetCurrent(missing) should fail")
	}
}

func TestFileChangeReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.json")
	writeProvidersFile(t, path, testFile())

	svc, err := New(path)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer func() { _ = svc.Close() }()

	drainEvents(svc)

	updated := testFile()
	updated.Providers = updated.Providers[:1]
	writeProvidersFile(t, path, updated)

	if !waitFor(func() bool { return svc.Count() == 1 }, 3*time.Second) {
		t.Fatalf("Count() = %d after file change, want 1", svc.Count())
	}
}

func drainEvents(svc *Service) {
	for {
		select {
		case <-svc.Events():
		default:
			return
		}
	}
}

func waitFor(cond func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}
