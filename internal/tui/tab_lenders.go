package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/feeburn/internal/cli"
	"github.com/theirongolddev/feeburn/internal/finance"
	"github.com/theirongolddev/feeburn/internal/pipeline"
	"github.com/theirongolddev/feeburn/internal/tui/components"
	"github.com/theirongolddev/feeburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// lendersState tracks the selected row of the ranking.
type lendersState struct {
	cursor int
}

func (s *lendersState) move(delta, n int) {
	s.cursor += delta
	s.clamp(n)
}

func (s *lendersState) clamp(n int) {
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (a App) renderLendersTab(cw int) string {
	t := theme.Active
	opts := a.snap.Ranking.Options
	if len(opts) == 0 {
		return components.ContentCard("Lenders", "No enabled lenders. Press [d] to include disabled ones.", cw)
	}

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	bestStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	var left, right int
	if a.isCompactLayout() {
		left, right = cw, cw
	} else {
		w := components.LayoutRow(cw, 5)
		left = w[0] + w[1] + w[2]
		right = w[3] + w[4]
	}
	nameW := components.CardInnerWidth(left) - 2 - 10 - 14
	if nameW < 12 {
		nameW = 12
	}

	var list strings.Builder
	list.WriteString(headerStyle.Render(fmt.Sprintf("  %-*s%10s%14s", nameW, "Option", "APR", "Total Cost")))
	list.WriteString("\n")
	for i, o := range opts {
		marker := "  "
		if i == 0 {
			marker = "★ "
		}
		line := fmt.Sprintf("%s%-*s%10s%14s", marker, nameW, truncStr(o.Name, nameW),
			cli.FormatRate(o.EffectiveAPR), cli.FormatCurrency(o.TotalCost))
		switch {
		case i == a.lenders.cursor:
			list.WriteString(selStyle.Render(line))
		case i == 0:
			list.WriteString(bestStyle.Render(line))
		default:
			list.WriteString(rowStyle.Render(line))
		}
		list.WriteString("\n")
	}
	if len(a.snap.Failed) > 0 {
		list.WriteString("\n")
		list.WriteString(warnStyle.Render("Could not solve: " + strings.Join(a.snap.Failed, ", ")))
		list.WriteString("\n")
	}
	list.WriteString("\n")
	hint := "[j/k] select  [d] show disabled"
	if a.in.showDisabled {
		hint = "[j/k] select  [d] hide disabled"
	}
	list.WriteString(mutedStyle.Render(hint))

	title := fmt.Sprintf("Cheapest Way to Fund %s", cli.FormatCurrency(a.in.terms.Principal))
	listCard := components.ContentCard(title, list.String(), left)

	a.lenders.clamp(len(opts))
	detail := components.ContentCard(opts[a.lenders.cursor].Name, a.renderOptionDetail(opts[a.lenders.cursor]), right)

	if a.isCompactLayout() {
		return listCard + "\n" + detail
	}
	return components.CardRow([]string{listCard, detail})
}

func (a App) renderOptionDetail(o pipeline.Option) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	line := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-16s", label)))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	if o.IsOffset || o.Outcome == nil {
		line("Mortgage rate", cli.FormatRate(o.EffectiveAPR))
		line("Interest lost", cli.FormatCurrency(o.TotalCost))
		b.WriteString(labelStyle.Render("Average drawn balance is half the\nprincipal over the term."))
		return b.String()
	}

	out := o.Outcome
	s := out.Scenario
	freq := finance.ParseFrequency(string(s.FeeFrequency))
	line("Term", cli.FormatYears(s.TermYears))
	line("Interest rate", cli.FormatRate(s.InterestRate))
	line("Fee", fmt.Sprintf("%s %s", cli.FormatCost(s.FeeAmount), freq))
	line("Establishment", cli.FormatCurrency(s.EstablishmentFee))
	line("Per "+strings.ToLower(freq.Label()), cli.FormatCost(out.PaymentPerPeriod))
	line("Total interest", cli.FormatCurrency(out.TotalInterest))
	line("Total fees", cli.FormatCurrency(out.TotalFees))
	line("Total repaid", cli.FormatCurrency(out.TotalRepaid))
	if !out.Converged {
		b.WriteString(lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Render("APR did not converge"))
	}
	return strings.TrimRight(b.String(), "\n")
}
