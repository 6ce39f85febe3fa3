// Package components provides reusable UI components.
package components

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatTokens renders a token count in a compact human form:
// millions with two decimals, thousands with one, small counts as-is.
func FormatTokens(tokens int64) string {
	switch {
	case tokens >= 1_000_000:
		return fmt.Sprintf("%.2fM", float64(tokens)/1_000_000)
	case tokens >= 1_000:
		return fmt.Sprintf("%.1fK", float64(tokens)/1_000)
	default:
		return fmt.Sprintf("%d", tokens)
	}
}

// FormatTokensPtr is FormatTokens for optional counts; nil renders as a dash.
func FormatTokensPtr(tokens *int64) string {
	if tokens == nil {
		return "-"
	}
	return FormatTokens(*tokens)
}

// FormatCost renders a dollar cost. The API sends pre-formatted strings
// alongside raw values; formatted wins when present.
func FormatCost(raw float64, formatted string) string {
	if formatted != "" {
		return formatted
	}
	return fmt.Sprintf("$%.4f", raw)
}

// FormatCount renders a plain count with thousands separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// FormatRelativeTime renders a timestamp as "3 minutes ago".
func FormatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}
