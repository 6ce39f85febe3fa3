package breakdown

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/veylab/relaymeter/internal/app"
	"github.com/veylab/relaymeter/internal/models"
	"github.com/veylab/relaymeter/internal/ui/components"
	"github.com/veylab/relaymeter/internal/ui/styles"
)

// View renders the breakdown tab.
func (m *Model) View() string {
	view := m.state.GetUsage()

	switch view.Phase {
	case app.PhaseIdle, app.PhaseLoading:
		return m.renderMessage(styles.HelpStyle.Render("Loading model breakdown..."))
	case app.PhaseNotConfigured:
		return m.renderMessage(styles.WarningTextStyle.Render("No API key configured for this provider"))
	case app.PhaseFailed:
		return m.renderMessage(styles.ErrorTextStyle.Render("Fetch failed: " + view.Err))
	}

	sections := []string{
		m.renderTitle(),
		m.renderTable(view.Snapshot.ModelStats),
		m.renderCostChart(view.Snapshot.ModelStats),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderMessage(msg string) string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("Breakdown"),
		"",
		msg,
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Breakdown")
	subtitle := styles.HelpStyle.Render(fmt.Sprintf(
		"Per-model usage · %s · sorted by %s · press s to cycle",
		m.state.GetPeriod(), m.sort))

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// sorted returns a copy of stats ordered by the active sort mode,
// descending.
func (m *Model) sorted(stats []models.ModelUsage) []models.ModelUsage {
	out := make([]models.ModelUsage, len(stats))
	copy(out, stats)

	sort.SliceStable(out, func(i, j int) bool {
		switch m.sort {
		case sortByTokens:
			return out[i].AllTokens > out[j].AllTokens
		case sortByRequests:
			return out[i].Requests > out[j].Requests
		default:
			return out[i].Costs.TotalCost > out[j].Costs.TotalCost
		}
	})

	return out
}

func (m *Model) renderTable(stats []models.ModelUsage) string {
	cardWidth := max(m.width-6, 60)

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Models"), "")

	if len(stats) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No model usage for this period"))
		return styles.CardStyle.Width(cardWidth).Render(
			lipgloss.JoinVertical(lipgloss.Left, rows...),
		)
	}

	const rowFormat = "%-28s %9s %8s %8s %8s %8s %10s"

	header := fmt.Sprintf(rowFormat,
		"Model", "Requests", "Input", "Output", "Cache", "All", "Cost")
	rows = append(rows, "  "+styles.TableHeaderStyle.Render(header))

	for _, mu := range m.sorted(stats) {
		name := mu.Model
		if len(name) > 28 {
			name = name[:25] + "..."
		}

		cache := mu.CacheCreateTokens + mu.CacheReadTokens
		line := fmt.Sprintf(rowFormat,
			name,
			components.FormatCount(mu.Requests),
			components.FormatTokens(mu.InputTokens),
			components.FormatTokens(mu.OutputTokens),
			components.FormatTokens(cache),
			components.FormatTokens(mu.AllTokens),
			components.FormatCost(mu.Costs.TotalCost, mu.Costs.TotalCostStr),
		)
		rows = append(rows, "  "+styles.TableCellStyle.Render(line))
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderCostChart(stats []models.ModelUsage) string {
	cardWidth := max(m.width-6, 60)

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Cost by Model"), "")

	if len(stats) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No cost data available"))
	} else {
		byCost := make([]models.ModelUsage, len(stats))
		copy(byCost, stats)
		sort.SliceStable(byCost, func(i, j int) bool {
			return byCost[i].Costs.TotalCost > byCost[j].Costs.TotalCost
		})

		values := make([]float64, len(byCost))
		labels := make([]string, len(byCost))
		for i, mu := range byCost {
			values[i] = mu.Costs.TotalCost
			labels[i] = shortModelName(mu.Model)
		}

		chartWidth := max(cardWidth-12, 30)
		chart := components.RenderBarChart(values, labels, chartWidth)

		for _, line := range strings.Split(chart, "\n") {
			rows = append(rows, "  "+line)
		}

		spark := lipgloss.NewStyle().Foreground(styles.Secondary).
			Render(components.RenderSparkline(values, min(len(values)*4, chartWidth)))
		rows = append(rows, "")
		rows = append(rows, "  "+spark)

		rows = append(rows, "")
		rows = append(rows, "  "+components.RenderLegend([]components.LegendItem{
			{Label: "cost", Color: styles.Primary},
			{Label: "share", Color: styles.Secondary},
		}))
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// shortModelName trims version suffixes so bar chart labels stay
// narrow, e.g. "claude-sonnet-4-20250514" becomes "claude-sonnet-4".
func shortModelName(model string) string {
	if len(model) <= 20 {
		return model
	}
	if idx := strings.LastIndex(model, "-"); idx > 0 && len(model)-idx >= 8 {
		return model[:idx]
	}
	return model[:17] + "..."
}
