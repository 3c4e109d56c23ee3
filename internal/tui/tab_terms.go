package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/feeburn/internal/cli"
	"github.com/theirongolddev/feeburn/internal/tui/components"
	"github.com/theirongolddev/feeburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderTermsTab(cw int) string {
	t := theme.Active
	rows := a.snap.Tables.Terms
	if len(rows) == 0 {
		return components.ContentCard("Rate by Term", "No rows.", cw)
	}

	vals := make([]float64, len(rows))
	labels := make([]string, len(rows))
	for i, r := range rows {
		vals[i] = r.Result.AnnualizedRatePercent
		labels[i] = fmt.Sprintf("%gy", r.TermYears)
	}

	chartH := 10
	if a.isCompactLayout() {
		chartH = 6
	}
	var b strings.Builder
	b.WriteString(components.ContentCard(
		fmt.Sprintf("Effective APR by Term (%s)", cli.FormatCurrency(a.in.terms.Principal)),
		components.BarChart(vals, labels, components.CardInnerWidth(cw), chartH),
		cw,
	))
	b.WriteString("\n")

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	hiStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)

	var tbl strings.Builder
	tbl.WriteString(headerStyle.Render(fmt.Sprintf("%10s%10s%14s%14s", "Term", "APR", "Total Fees", "Per "+periodLabel(a.in.terms))))
	tbl.WriteString("\n")
	for _, r := range rows {
		cells := fmt.Sprintf("%10s%10s%14s%14s",
			cli.FormatYears(r.TermYears),
			cli.FormatRate(r.Result.AnnualizedRatePercent),
			cli.FormatCurrency(r.TotalFees),
			cli.FormatCost(r.PeriodicPayment))
		if r.TermYears == a.in.terms.TermYears {
			tbl.WriteString(hiStyle.Render(cells))
		} else {
			tbl.WriteString(cellStyle.Render(cells))
		}
		tbl.WriteString("\n")
	}
	b.WriteString(components.ContentCard("Rate by Term", strings.TrimRight(tbl.String(), "\n"), cw))
	return b.String()
}
