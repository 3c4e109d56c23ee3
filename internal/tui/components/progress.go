package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/feeburn/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders a progress bar with percentage. pct is a 0..1 fraction.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clamp01(pct)
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}

	var barColor lipgloss.Color
	switch {
	case pct >= 0.8:
		barColor = t.AccentBright
	case pct >= 0.5:
		barColor = t.Accent
	default:
		barColor = t.Cyan
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))

	return b.String() + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// Slider describes one adjustable input shown as a bar.
type Slider struct {
	Label string
	Value float64
	Min   float64
	Max   float64
	Text  string // formatted value
	Keys  string // key hint, e.g. "-/+"
}

// Fraction returns Value's position between Min and Max as 0..1.
func (s Slider) Fraction() float64 {
	if s.Max <= s.Min {
		return 0
	}
	return clamp01((s.Value - s.Min) / (s.Max - s.Min))
}

// RenderSlider renders a labeled slider row.
func RenderSlider(s Slider, labelW, barWidth int) string {
	t := theme.Active

	bar := progress.New(
		progress.WithSolidFill(string(t.Accent)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	row := labelStyle.Render(fmt.Sprintf("%-*s", labelW, s.Label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(s.Fraction()) +
		spaceStyle.Render(" ") +
		valueStyle.Render(fmt.Sprintf("%10s", s.Text))
	if s.Keys != "" {
		row += spaceStyle.Render("  ") + keyStyle.Render("["+s.Keys+"]")
	}
	return row
}

// RateBar renders an APR as a bar scaled against maxPct, colored by rate band.
func RateBar(pct, maxPct float64, width int) string {
	t := theme.Active
	if maxPct <= 0 {
		maxPct = 1
	}

	bar := progress.New(
		progress.WithSolidFill(string(t.RateColor(pct))),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.SurfaceBright)
	return bar.ViewAs(clamp01(pct / maxPct))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
