package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/feeburn/internal/cli"
	"github.com/theirongolddev/feeburn/internal/tui/components"
	"github.com/theirongolddev/feeburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderAmountsTab(cw int) string {
	t := theme.Active
	rows := a.snap.Tables.Amounts
	if len(rows) == 0 {
		return components.ContentCard("Rate by Amount", "No rows.", cw)
	}

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	hiStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface)

	maxAPR := 0.0
	for _, r := range rows {
		if r.Result.AnnualizedRatePercent > maxAPR {
			maxAPR = r.Result.AnnualizedRatePercent
		}
	}

	inner := components.CardInnerWidth(cw)
	const fixedW = 12 + 10 + 12 + 10 + 4
	barW := inner - fixedW
	if barW < 10 {
		barW = 10
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%12s%10s%12s%10s", "Amount", "APR", "Total Fees", "Fee %")))
	b.WriteString("\n")
	for _, r := range rows {
		cells := fmt.Sprintf("%12s%10s%12s%10s",
			cli.FormatCurrency(r.Amount),
			cli.FormatRate(r.Result.AnnualizedRatePercent),
			cli.FormatCurrency(r.TotalFees),
			cli.FormatPercent(r.FeePercent))
		if r.Amount == a.in.terms.Principal {
			b.WriteString(hiStyle.Render(cells))
		} else {
			b.WriteString(cellStyle.Render(cells))
		}
		b.WriteString(space.Render("    "))
		b.WriteString(components.RateBar(r.Result.AnnualizedRatePercent, maxAPR, barW))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%s term, %s per %s, %s establishment fee",
		cli.FormatYears(a.in.terms.TermYears),
		cli.FormatCost(a.in.terms.WeeklyFee),
		strings.ToLower(periodLabel(a.in.terms)),
		cli.FormatCurrency(a.in.terms.EstablishmentFee))))

	return components.ContentCard("Rate by Amount", b.String(), cw)
}
