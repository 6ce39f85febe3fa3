// Package models defines data structures and domain types.
package models

import (
	"strings"
	"time"
)

// Period selects the remote aggregation window for usage queries.
type Period string

const (
	// PeriodDaily requests usage for the current day.
	PeriodDaily Period = "daily"
	// PeriodMonthly requests usage for the current month.
	PeriodMonthly Period = "monthly"
)

// String returns the string representation of the Period.
func (p Period) String() string {
	return string(p)
}

// Toggle returns the other period.
func (p Period) Toggle() Period {
	if p == PeriodDaily {
		return PeriodMonthly
	}
	return PeriodDaily
}

// CostBreakdown holds the cost components for one model's usage.
// The *_formatted fields are display strings produced by the remote
// service and are preferred over reformatting the raw values.
type CostBreakdown struct {
	InputCost          float64 `json:"input_cost"`
	OutputCost         float64 `json:"output_cost"`
	CacheCreateCost    float64 `json:"cache_create_cost"`
	CacheReadCost      float64 `json:"cache_read_cost"`
	TotalCost          float64 `json:"total_cost"`
	InputCostStr       string  `json:"input_cost_formatted,omitempty"`
	OutputCostStr      string  `json:"output_cost_formatted,omitempty"`
	CacheCreateCostStr string  `json:"cache_create_cost_formatted,omitempty"`
	CacheReadCostStr   string  `json:"cache_read_cost_formatted,omitempty"`
	TotalCostStr       string  `json:"total_cost_formatted,omitempty"`
}

// ModelUsage represents one model's usage for the requested period, as
// reported by the remote service. Immutable once decoded.
type ModelUsage struct {
	Model             string        `json:"model"`
	Requests          int64         `json:"requests"`
	InputTokens       int64         `json:"input_tokens"`
	OutputTokens      int64         `json:"output_tokens"`
	CacheCreateTokens int64         `json:"cache_create_tokens"`
	CacheReadTokens   int64         `json:"cache_read_tokens"`
	AllTokens         int64         `json:"all_tokens"`
	Costs             CostBreakdown `json:"costs"`
}

// PeriodUsage is the component-wise sum over a filtered set of
// ModelUsage records. It is recomputed on every fetch, never stored.
type PeriodUsage struct {
	Requests          int64
	InputTokens       int64
	OutputTokens      int64
	CacheCreateTokens int64
	CacheReadTokens   int64
	AllTokens         int64
	TotalCost         float64
}

// UsageLimits is the limits block of a usage overview.
type UsageLimits struct {
	Concurrency      int     `json:"concurrency"`
	DailyCostLimit   float64 `json:"daily_cost_limit"`
	TotalCostLimit   float64 `json:"total_cost_limit"`
	CurrentDailyCost float64 `json:"current_daily_cost"`
	CurrentTotalCost float64 `json:"current_total_cost"`
}

// UsageOverview describes the remote key's account-level usage state.
type UsageOverview struct {
	Name      string      `json:"name"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
	Limits    UsageLimits `json:"limits"`
}

// modelFamilies maps an app kind to the identifier substrings that mark
// a model as belonging to that assistant.
var modelFamilies = map[AppKind][]string{
	AppClaude: {"claude", "anthropic", "sonnet", "opus", "haiku"},
	AppCodex:  {"gpt", "o1", "o3", "o4"},
	AppGemini: {"gemini"},
}

// FilterForApp keeps the models relevant to the given app kind, matched
// case-insensitively on the model identifier. Unknown kinds keep all
// models. Input order is preserved and the input slice is not modified.
func FilterForApp(items []ModelUsage, kind AppKind) []ModelUsage {
	needles, ok := modelFamilies[kind]
	if !ok {
		return items
	}

	filtered := make([]ModelUsage, 0, len(items))
	for _, item := range items {
		id := strings.ToLower(item.Model)
		for _, needle := range needles {
			if strings.Contains(id, needle) {
				filtered = append(filtered, item)
				break
			}
		}
	}
	return filtered
}

// Aggregate sums the given records into a single PeriodUsage. An empty
// input yields nil: no usage to show is distinct from zero usage.
func Aggregate(items []ModelUsage) *PeriodUsage {
	if len(items) == 0 {
		return nil
	}

	var total PeriodUsage
	for _, item := range items {
		total.Requests += item.Requests
		total.InputTokens += item.InputTokens
		total.OutputTokens += item.OutputTokens
		total.CacheCreateTokens += item.CacheCreateTokens
		total.CacheReadTokens += item.CacheReadTokens
		total.AllTokens += item.AllTokens
		total.TotalCost += item.Costs.TotalCost
	}
	return &total
}
