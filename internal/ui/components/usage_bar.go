package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/veylab/relaymeter/internal/logger"
	"github.com/veylab/relaymeter/internal/ui/styles"
)

// ProgressPercent converts a current value and its limit into a
// display percentage. An absent or zero limit (unlimited key) and a
// zero current both yield 0; overspend is clamped to 100.
func ProgressPercent(current, limit float64) float64 {
	if current <= 0 || limit <= 0 {
		return 0
	}
	percent := current / limit * 100
	if percent > 100 {
		return 100
	}
	return percent
}

// UsageBar renders a spend progress bar with label and percentage.
type UsageBar struct {
	progress progress.Model
	label    string
}

// NewUsageBar creates a new usage bar with gradient colors. The
// gradient runs green to red: spending up is the bad direction.
func NewUsageBar() UsageBar {
	p := progress.New(
		progress.WithScaledGradient("#51cf66", "#ff6b6b"),
		progress.WithWidth(30),
		progress.WithoutPercentage(),
	)

	return UsageBar{progress: p}
}

// Init initializes the progress bar model.
func (u UsageBar) Init() tea.Cmd {
	return nil
}

// Update handles progress bar messages.
func (u UsageBar) Update(msg tea.Msg) (UsageBar, tea.Cmd) {
	model, cmd := u.progress.Update(msg)
	u.progress = model.(progress.Model)
	return u, cmd
}

// SetLabel sets the bar label.
func (u *UsageBar) SetLabel(label string) {
	u.label = label
}

// SetWidth sets the progress bar width.
func (u *UsageBar) SetWidth(width int) {
	u.progress.Width = width
}

// View renders the usage bar with percentage and label.
func (u UsageBar) View(percent float64, label string, width int) string {
	barWidth := width - 30 // Reserve space for label and percentage
	if barWidth < 10 {
		barWidth = 10
	}
	u.progress.Width = barWidth

	bar := u.progress.ViewAs(percent / 100)

	percentStyle := styles.GetCostStyle(percent)
	percentStr := percentStyle.Width(6).Align(lipgloss.Right).Render(fmt.Sprintf("%.0f%%", percent))

	labelStr := styles.ProgressLabelStyle.Width(15).Render(label)

	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		labelStr,
		bar,
		" ",
		percentStr,
	)
}

// RenderGradientBar renders just the bar characters with gradient
// colors, green filling toward red as percent grows.
func RenderGradientBar(percent float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := int(float64(width) * percent / 100)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	var barChars []string
	for i := 0; i < width; i++ {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor("#51cf66", "#ff6b6b", t)
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			barChars = append(barChars, style.Render("█"))
		} else {
			style := lipgloss.NewStyle().Foreground(styles.Subtle)
			barChars = append(barChars, style.Render("░"))
		}
	}

	return strings.Join(barChars, "")
}

// SimpleCostBar renders a one-line cost bar: label, gradient bar, and
// the spend out of the limit.
func SimpleCostBar(label string, current, limit float64, width int) string {
	percent := ProgressPercent(current, limit)

	valueText := fmt.Sprintf("$%.2f / $%.2f", current, limit)
	if limit <= 0 {
		valueText = fmt.Sprintf("$%.2f", current)
	}

	labelWidth := len(label) + 1
	valueWidth := len(valueText) + 1
	barWidth := width - labelWidth - valueWidth - 4
	if barWidth < 5 {
		barWidth = 5
	}

	bar := RenderGradientBar(percent, barWidth)

	labelStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Render(label)

	valueStr := styles.GetCostStyle(percent).Render(valueText)

	return fmt.Sprintf("%s [%s] %s", labelStr, bar, valueStr)
}

// SimpleBarLoading renders a shimmering placeholder bar for rows whose
// data has not arrived yet.
func SimpleBarLoading(width, frame int) string {
	const indentWidth = 4

	barWidth := width - indentWidth - 10
	if barWidth < 10 {
		barWidth = 10
	}

	cycle := 120
	t := float64(frame%cycle) / float64(cycle)
	var p float64
	if t < 0.5 {
		p = t * 2
	} else {
		p = (1 - t) * 2
	}
	eased := p * p * (3 - 2*p)
	shimmerPos := int(eased * float64(barWidth))

	var barChars []string
	for i := 0; i < barWidth; i++ {
		dist := shimmerPos - i
		if dist < 0 {
			dist = -dist
		}

		var char string
		var style lipgloss.Style

		if dist < 3 {
			char = "▓"
			style = lipgloss.NewStyle().Foreground(styles.Primary)
		} else if dist < 5 {
			char = "▒"
			style = lipgloss.NewStyle().Foreground(styles.TextSecondary)
		} else {
			char = "░"
			style = lipgloss.NewStyle().Foreground(styles.BgLight)
		}

		barChars = append(barChars, style.Render(char))
	}

	bar := strings.Join(barChars, "")

	dots := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	dot := dots[(frame/2)%len(dots)]

	return lipgloss.JoinHorizontal(lipgloss.Left,
		"    ",
		bar,
		" ",
		lipgloss.NewStyle().Foreground(styles.Primary).Render(dot),
	)
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
