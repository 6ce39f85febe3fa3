package usage

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/veylab/relaymeter/internal/app"
	"github.com/veylab/relaymeter/internal/models"
	usagesvc "github.com/veylab/relaymeter/internal/services/usage"
	"github.com/veylab/relaymeter/internal/ui/components"
	"github.com/veylab/relaymeter/internal/ui/styles"
)

// View renders the usage tab.
func (m *Model) View() string {
	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderProviderList())
	sections = append(sections, m.renderUsageCard())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderTitle renders the usage tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Usage")

	period := m.state.GetPeriod()
	subtitle := styles.HelpStyle.Render(
		fmt.Sprintf("Relay spend and token usage · %s · press p to toggle", period))

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderProviderList renders the list of configured providers.
func (m *Model) renderProviderList() string {
	providers := m.state.GetProviders()
	current := m.state.GetCurrentProvider()
	selected := m.state.GetSelectedProviderIndex()

	cardWidth := max(m.width-6, 40)

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Providers"))

	if len(providers) == 0 {
		rows = append(rows, "")
		rows = append(rows, styles.HelpStyle.Render("  No providers configured"))
		rows = append(rows, styles.InfoTextStyle.Render("  ╰─▶ Add providers by editing providers.json"))

		return styles.CardStyle.Width(cardWidth).Render(
			lipgloss.JoinVertical(lipgloss.Left, rows...),
		)
	}

	rows = append(rows, "")
	for i, p := range providers {
		rows = append(rows, m.renderProviderRow(p, current, i == selected))
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderProviderRow(p models.Provider, current *models.Provider, selected bool) string {
	marker := lipgloss.NewStyle().Foreground(styles.Subtle).Render("○ ")
	if current != nil && current.ID == p.ID {
		marker = styles.SuccessTextStyle.Render("● ")
	}

	prefix := "  "
	if selected {
		prefix = styles.FocusedStyle.Render("▸ ")
	}

	name := p.Name
	if name == "" {
		name = p.ID
	}
	if len(name) > 35 {
		name = name[:32] + "..."
	}

	kind := string(p.AppKind)
	badge := styles.GetAppStyle(kind).Render(kind)

	return fmt.Sprintf("%s%s%s %s",
		prefix,
		marker,
		lipgloss.NewStyle().Bold(true).Render(name),
		badge,
	)
}

// renderUsageCard renders the usage view for the current provider,
// dispatching on the view's phase.
func (m *Model) renderUsageCard() string {
	cardWidth := max(m.width-6, 40)
	view := m.state.GetUsage()

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Current Usage"))
	rows = append(rows, "")

	switch view.Phase {
	case app.PhaseIdle:
		rows = append(rows, styles.HelpStyle.Render("  Waiting for the first refresh..."))

	case app.PhaseLoading:
		rows = append(rows, m.renderLoading(cardWidth-4)...)

	case app.PhaseNotConfigured:
		rows = append(rows, styles.WarningTextStyle.Render("  No API key configured for this provider"))
		rows = append(rows, styles.HelpStyle.Render("  Add a key to its settings to see usage here"))

	case app.PhaseFailed:
		rows = append(rows, styles.ErrorTextStyle.Render("  Fetch failed: "+view.Err))
		rows = append(rows, styles.HelpStyle.Render("  Press r to retry"))

	case app.PhaseLoaded:
		rows = append(rows, m.renderSnapshot(view, cardWidth-4)...)
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderLoading(width int) []string {
	return []string{
		"  " + m.spinner.ViewWithLabel(),
		"",
		components.SimpleBarLoading(width, m.animationFrame),
	}
}

func (m *Model) renderSnapshot(view app.UsageView, width int) []string {
	snap := view.Snapshot
	var lines []string

	if snap.Overview != nil {
		lines = append(lines, m.renderOverview(snap.Overview)...)
		lines = append(lines, "")
		lines = append(lines, m.renderCostBars(snap.Overview.Limits, width)...)
	}

	lines = append(lines, "")
	lines = append(lines, m.renderAggregate(snap.Aggregate)...)

	if history := m.state.GetHistory(); len(history) > 1 {
		lines = append(lines, "")
		lines = append(lines, m.renderCostTrend(history, width)...)
	}

	lines = append(lines, "")
	lines = append(lines, styles.HelpStyle.Render(
		"  Updated "+components.FormatRelativeTime(snap.FetchedAt)))

	return lines
}

func (m *Model) renderOverview(overview *models.UsageOverview) []string {
	status := styles.SuccessTextStyle.Render("active")
	if !overview.Active {
		status = styles.ErrorTextStyle.Render("inactive")
	}

	name := lipgloss.NewStyle().Bold(true).Render(overview.Name)
	lines := []string{fmt.Sprintf("  %s  %s", name, status)}

	if !overview.CreatedAt.IsZero() {
		lines = append(lines, styles.HelpStyle.Render(
			"  Created "+overview.CreatedAt.Format("2006-01-02")))
	}

	if !overview.ExpiresAt.IsZero() {
		expiry := fmt.Sprintf("  Expires %s", overview.ExpiresAt.Format("2006-01-02"))
		if overview.ExpiresAt.Before(time.Now()) {
			lines = append(lines, styles.ErrorTextStyle.Render(expiry+" (expired)"))
		} else {
			lines = append(lines, styles.HelpStyle.Render(expiry))
		}
	}

	return lines
}

func (m *Model) renderCostBars(limits models.UsageLimits, width int) []string {
	barWidth := max(width-4, 30)

	lines := []string{
		"  " + components.SimpleCostBar("Daily", limits.CurrentDailyCost, limits.DailyCostLimit, barWidth),
		"  " + components.SimpleCostBar("Total", limits.CurrentTotalCost, limits.TotalCostLimit, barWidth),
	}

	if limits.Concurrency > 0 {
		lines = append(lines, styles.HelpStyle.Render(
			fmt.Sprintf("  Concurrency limit: %d", limits.Concurrency)))
	}

	return lines
}

func (m *Model) renderAggregate(agg *models.PeriodUsage) []string {
	if agg == nil {
		return []string{styles.HelpStyle.Render("  No usage recorded for this period")}
	}

	labelStyle := lipgloss.NewStyle().Width(16).Foreground(styles.TextMuted)
	valueStyle := lipgloss.NewStyle().Foreground(styles.TextPrimary)

	row := func(label, value string) string {
		return "  " + labelStyle.Render(label+":") + " " + valueStyle.Render(value)
	}

	return []string{
		row("Requests", components.FormatCount(agg.Requests)),
		row("Input tokens", components.FormatTokens(agg.InputTokens)),
		row("Output tokens", components.FormatTokens(agg.OutputTokens)),
		row("Cache create", components.FormatTokens(agg.CacheCreateTokens)),
		row("Cache read", components.FormatTokens(agg.CacheReadTokens)),
		row("All tokens", components.FormatTokens(agg.AllTokens)),
		row("Total cost", fmt.Sprintf("$%.4f", agg.TotalCost)),
	}
}

func (m *Model) renderCostTrend(history []usagesvc.CostPoint, width int) []string {
	data := make([]float64, len(history))
	for i, p := range history {
		data[i] = p.Cost
	}

	chartWidth := max(width-12, 20)
	chart := components.RenderLineChart(data, chartWidth, 5, "daily cost this session")

	return []string{
		styles.HelpStyle.Render("  Session trend"),
		chart,
	}
}
