package config

import (
	"testing"
	"time"

	"github.com/veylab/relaymeter/internal/models"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("RELAYMETER_TEST_STR", "value")

	if got := getEnvString("RELAYMETER_TEST_STR", "fallback"); got != "value" {
		t.Errorf("getEnvString() = %q, want %q", got, "value")
	}
	if got := getEnvString("RELAYMETER_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("getEnvString() = %q, want %q", got, "fallback")
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"WithUnit", "45s", 45 * time.Second},
		{"Minutes", "2m", 2 * time.Minute},
		{"BareSeconds", "90", 90 * time.Second},
		{"Invalid", "soon", defaultRefreshInterval},
		{"Empty", "", defaultRefreshInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RELAYMETER_TEST_DUR", tt.value)
			if got := getEnvDuration("RELAYMETER_TEST_DUR", defaultRefreshInterval); got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvPeriod(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  models.Period
	}{
		{"Daily", "daily", models.PeriodDaily},
		{"Monthly", "monthly", models.PeriodMonthly},
		{"Unknown", "weekly", models.PeriodDaily},
		{"Empty", "", models.PeriodDaily},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RELAYMETER_TEST_PERIOD", tt.value)
			if got := getEnvPeriod("RELAYMETER_TEST_PERIOD", models.PeriodDaily); got != tt.want {
				t.Errorf("getEnvPeriod() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RELAYMETER_PROVIDERS_PATH", t.TempDir()+"/providers.json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.RefreshInterval != defaultRefreshInterval {
		t.Errorf("RefreshInterval = %v, want %v", cfg.RefreshInterval, defaultRefreshInterval)
	}
	if cfg.DefaultPeriod != models.PeriodDaily {
		t.Errorf("DefaultPeriod = %v, want daily", cfg.DefaultPeriod)
	}
	if cfg.BaseURLOverride != "" {
		t.Errorf("BaseURLOverride = %q, want empty", cfg.BaseURLOverride)
	}
}
