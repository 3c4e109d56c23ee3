package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/feeburn/internal/cli"
	"github.com/theirongolddev/feeburn/internal/finance"
	"github.com/theirongolddev/feeburn/internal/tui/components"
	"github.com/theirongolddev/feeburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// periodLabel names one repayment period, e.g. "Week".
func periodLabel(terms finance.LoanTerms) string {
	ppy := terms.PeriodsPerYear
	if ppy == 0 {
		ppy = finance.DefaultPeriodsPerYear
	}
	if f, ok := finance.FrequencyFor(ppy); ok {
		return f.Label()
	}
	return "Period"
}

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	calc := a.snap.Calculation
	res := calc.Result
	sum := calc.Summary
	var b strings.Builder

	// Row 1: headline metrics
	rateDelta := fmt.Sprintf("%d iterations", res.Iterations)
	if !res.Converged {
		rateDelta = "did not converge"
	}
	metrics := []components.Metric{
		{Label: "Effective APR", Value: cli.FormatRate(res.AnnualizedRatePercent), Delta: rateDelta, Color: t.RateColor(res.AnnualizedRatePercent)},
		{Label: "Total Fees", Value: cli.FormatCurrency(sum.TotalFees), Delta: cli.FormatPercent(sum.FeeSharePercent) + " of principal"},
		{Label: "Per " + periodLabel(calc.Terms), Value: cli.FormatCost(sum.PeriodicPayment), Delta: cli.FormatNumber(int64(sum.TotalPeriods)) + " payments"},
		{Label: "Total Repaid", Value: cli.FormatCurrency(sum.TotalRepaid)},
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	// Row 2: sliders + offset verdict
	var left, right int
	if a.isCompactLayout() {
		left, right = cw, cw
	} else {
		halves := components.LayoutRow(cw, 2)
		left, right = halves[0], halves[1]
	}

	inner := components.CardInnerWidth(left)
	barW := inner - 12 - 1 - 1 - 10 - 2 - 5
	if barW < 8 {
		barW = 8
	}
	sliders := []components.Slider{
		{Label: "Principal", Value: a.in.terms.Principal, Min: principalMin, Max: principalMax, Text: cli.FormatCurrency(a.in.terms.Principal), Keys: "-/+"},
		{Label: "Term", Value: a.in.terms.TermYears, Min: termMin, Max: termMax, Text: cli.FormatYears(a.in.terms.TermYears), Keys: "[/]"},
		{Label: "Mortgage", Value: a.in.mortgageRate, Min: rateMin, Max: rateMax, Text: cli.FormatRate(a.in.mortgageRate), Keys: "</>"},
	}
	rows := make([]string, len(sliders))
	for i, s := range sliders {
		rows[i] = components.RenderSlider(s, 12, barW)
	}
	inputsCard := components.AccentCard("Inputs", strings.Join(rows, "\n"), left)

	verdictCard := components.ContentCard("Offset Comparison", a.renderVerdict(), right)

	if a.isCompactLayout() {
		b.WriteString(inputsCard)
		b.WriteString("\n")
		b.WriteString(verdictCard)
	} else {
		b.WriteString(components.CardRow([]string{inputsCard, verdictCard}))
	}
	b.WriteString("\n")

	// Row 3: fee terms and the rate curve by amount
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var terms strings.Builder
	line := func(label, value string) {
		terms.WriteString(labelStyle.Render(fmt.Sprintf("%-20s", label)))
		terms.WriteString(valueStyle.Render(value))
		terms.WriteString("\n")
	}
	line("Fee per "+strings.ToLower(periodLabel(calc.Terms)), cli.FormatCost(calc.Terms.WeeklyFee))
	line("Establishment fee", cli.FormatCurrency(calc.Terms.EstablishmentFee))
	line("Principal per period", cli.FormatCost(calc.Terms.PeriodicPrincipal()))
	line("Periodic rate", fmt.Sprintf("%.5f%%", res.PeriodicRate*100))

	if len(a.snap.Tables.Amounts) > 0 {
		vals := make([]float64, len(a.snap.Tables.Amounts))
		for i, r := range a.snap.Tables.Amounts {
			vals[i] = r.Result.AnnualizedRatePercent
		}
		terms.WriteString("\n")
		terms.WriteString(labelStyle.Render(fmt.Sprintf("%-20s", "APR by amount")))
		terms.WriteString(components.Sparkline(vals, t.Accent))
	}

	b.WriteString(components.ContentCard("Fee Terms", terms.String(), cw))
	return b.String()
}

func (a App) renderVerdict() string {
	t := theme.Active
	calc := a.snap.Calculation

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	offset := finance.OffsetCost(calc.Terms.Principal, calc.Terms.TermYears, a.in.mortgageRate)
	v := finance.Compare(calc.Summary.TotalFees, offset)

	verdictStyle := lipgloss.NewStyle().Foreground(t.Verdict(v.FinancingCheaper)).Background(t.Surface).Bold(true)

	var b strings.Builder
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-18s", "Financing fees")))
	b.WriteString(valueStyle.Render(cli.FormatCurrency(v.FinancingCost)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-18s", "Offset interest")))
	b.WriteString(valueStyle.Render(cli.FormatCurrency(v.OffsetCost)))
	b.WriteString("\n")
	b.WriteString(verdictStyle.Render(verdictText(v, a.in.mortgageRate)))
	return b.String()
}

func verdictText(v finance.Verdict, mortgageRate float64) string {
	if v.FinancingCheaper {
		return fmt.Sprintf("Financing saves %s vs offset at %s", cli.FormatCurrency(v.Savings), cli.FormatRate(mortgageRate))
	}
	return fmt.Sprintf("Offset at %s saves %s", cli.FormatRate(mortgageRate), cli.FormatCurrency(v.Savings))
}
