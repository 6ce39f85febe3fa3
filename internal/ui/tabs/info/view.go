package info

import (
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/veylab/relaymeter/internal/ui/styles"
	"github.com/veylab/relaymeter/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderConfigCard())
	sections = append(sections, m.renderAboutCard())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderConfigCard renders the configuration card.
func (m *Model) renderConfigCard() string {
	cardWidth := m.cardWidth()

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Configuration"))
	rows = append(rows, "")

	if m.config != nil {
		baseURL := m.config.BaseURLOverride
		if baseURL == "" {
			baseURL = "default"
		}

		rows = append(rows, m.renderConfigRow("Providers File", m.config.ProvidersPath))
		rows = append(rows, m.renderConfigRow("Base URL", baseURL))
		rows = append(rows, m.renderConfigRow("Refresh", m.config.RefreshInterval.String()))
		rows = append(rows, m.renderConfigRow("Default Period", string(m.config.DefaultPeriod)))
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	rows = append(rows, "")
	rows = append(rows, styles.HelpStyle.Render("Settings come from RELAYMETER_* variables or a .env file"))

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigRow renders a configuration key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	cardWidth := m.cardWidth()

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("About Relaymeter"))
	rows = append(rows, "")

	rows = append(rows, m.renderConfigRow("Version", version.Get()))
	rows = append(rows, m.renderConfigRow("Go Version", runtime.Version()))
	rows = append(rows, m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)))
	rows = append(rows, "")

	providerCount := m.state.GetProviderCount()
	rows = append(rows, fmt.Sprintf("Providers: %s",
		styles.InfoTextStyle.Render(fmt.Sprintf("%d", providerCount))))

	if stats := m.state.GetStats(); stats != nil {
		rows = append(rows, fmt.Sprintf("Cached snapshots: %s",
			styles.InfoTextStyle.Render(fmt.Sprintf("%d", stats.CachedUsage))))
	}

	updated := "never"
	if since := m.state.TimeSinceUpdate(); since > 0 {
		updated = fmt.Sprintf("%s ago", since.Round(time.Second))
	}
	rows = append(rows, fmt.Sprintf("Last updated: %s", styles.HelpStyle.Render(updated)))

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) cardWidth() int {
	w := m.width - 6
	if w < 50 {
		w = 50
	}
	if w > 80 {
		w = 80
	}
	return w
}
