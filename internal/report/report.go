// Package report renders a loan calculation as a printable PDF.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/theirongolddev/feeburn/internal/cli"
	"github.com/theirongolddev/feeburn/internal/finance"
	"github.com/theirongolddev/feeburn/internal/pipeline"

	"github.com/go-pdf/fpdf"
)

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
)

// Input is everything a report shows. Ranking and Tables are optional.
type Input struct {
	Title        string
	Calculation  pipeline.Calculation
	MortgageRate float64
	Tables       *pipeline.Tables
	Ranking      *pipeline.Ranking
	GeneratedAt  time.Time
}

type builder struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	in  Input
}

// Generate renders in as a PDF document.
func Generate(in Input) ([]byte, error) {
	if in.Title == "" {
		in.Title = "Flat-Fee Loan Report"
	}
	if in.GeneratedAt.IsZero() {
		in.GeneratedAt = time.Now()
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	b := &builder{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), in: in}

	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(contentWidth, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	b.addSummaryPage()
	if in.Ranking != nil && len(in.Ranking.Options) > 0 {
		b.addRanking()
	}
	if in.Tables != nil {
		b.addTables()
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (b *builder) addSummaryPage() {
	p := b.pdf
	p.AddPage()

	p.SetFont("Arial", "B", 22)
	p.SetTextColor(0, 51, 102)
	p.CellFormat(contentWidth, 12, b.tr(b.in.Title), "", 1, "L", false, 0, "")
	p.SetFont("Arial", "", 10)
	p.SetTextColor(100, 100, 100)
	p.CellFormat(contentWidth, 6, "Generated "+b.in.GeneratedAt.Format("2 January 2006 15:04"), "", 1, "L", false, 0, "")
	p.Ln(6)

	calc := b.in.Calculation
	t := calc.Terms

	b.drawSectionHeader("Loan Terms")
	widths := []float64{100, 80}
	b.drawTableRow([]string{"Principal", cli.FormatCurrency(t.Principal)}, widths, false)
	b.drawTableRow([]string{"Term", cli.FormatYears(t.TermYears)}, widths, false)
	b.drawTableRow([]string{"Periodic fee", cli.FormatCost(t.WeeklyFee)}, widths, false)
	b.drawTableRow([]string{"Establishment fee", cli.FormatCurrency(t.EstablishmentFee)}, widths, false)
	b.drawTableRow([]string{"Payments per year", fmt.Sprintf("%d", periodsOf(t))}, widths, false)
	p.Ln(6)

	b.drawSectionHeader("Effective Rate")
	b.drawTableRow([]string{"Effective annual rate", cli.FormatRate(calc.Result.AnnualizedRatePercent)}, widths, true)
	b.drawTableRow([]string{"Periodic rate", fmt.Sprintf("%.6f%%", calc.Result.PeriodicRate*100)}, widths, false)
	conv := "yes"
	if !calc.Result.Converged {
		conv = "no, last iterate shown"
	}
	b.drawTableRow([]string{"Converged", conv}, widths, false)
	b.drawTableRow([]string{"Iterations", fmt.Sprintf("%d", calc.Result.Iterations)}, widths, false)
	p.Ln(6)

	s := calc.Summary
	b.drawSectionHeader("Cost Summary")
	b.drawTableRow([]string{"Payments", cli.FormatNumber(int64(s.TotalPeriods))}, widths, false)
	b.drawTableRow([]string{"Payment per period", cli.FormatCost(s.PeriodicPayment)}, widths, false)
	b.drawTableRow([]string{"Total fees", cli.FormatCurrency(s.TotalFees)}, widths, true)
	b.drawTableRow([]string{"Total repaid", cli.FormatCurrency(s.TotalRepaid)}, widths, false)
	b.drawTableRow([]string{"Fees as share of principal", cli.FormatPercent(s.FeeSharePercent)}, widths, false)

	if b.in.MortgageRate > 0 {
		p.Ln(6)
		b.drawSectionHeader("Offset Comparison")
		offset := finance.OffsetCost(t.Principal, t.TermYears, b.in.MortgageRate)
		v := finance.Compare(s.TotalFees, offset)
		b.drawTableRow([]string{"Mortgage rate", cli.FormatRate(b.in.MortgageRate)}, widths, false)
		b.drawTableRow([]string{"Interest lost drawing from offset", cli.FormatCurrency(offset)}, widths, false)
		p.Ln(3)
		p.SetFont("Arial", "B", 11)
		if v.FinancingCheaper {
			p.SetTextColor(0, 128, 0)
		} else {
			p.SetTextColor(180, 0, 0)
		}
		p.MultiCell(contentWidth, 6, b.tr(verdictText(v, b.in.MortgageRate)), "", "L", false)
	}
}

func (b *builder) addRanking() {
	p := b.pdf
	p.Ln(6)
	b.drawSectionHeader("Options by Total Cost")
	headers := []string{"Option", "Effective APR", "Total Cost"}
	widths := []float64{80, 50, 50}
	b.drawTableHeader(headers, widths)
	for i, o := range b.in.Ranking.Options {
		b.drawTableRow([]string{o.Name, cli.FormatRate(o.EffectiveAPR), cli.FormatCurrency(o.TotalCost)}, widths, i == 0)
	}
}

func (b *builder) addTables() {
	p := b.pdf
	p.AddPage()

	b.drawSectionHeader("Rate by Amount")
	widths := []float64{45, 45, 45, 45}
	b.drawTableHeader([]string{"Amount", "Effective APR", "Total Fees", "Fee Share"}, widths)
	for _, r := range b.in.Tables.Amounts {
		b.drawTableRow([]string{
			cli.FormatCurrency(r.Amount),
			cli.FormatRate(r.Result.AnnualizedRatePercent),
			cli.FormatCurrency(r.TotalFees),
			cli.FormatPercent(r.FeePercent),
		}, widths, false)
	}
	p.Ln(8)

	b.drawSectionHeader("Rate by Term")
	b.drawTableHeader([]string{"Term", "Effective APR", "Total Fees", "Per Period"}, widths)
	for _, r := range b.in.Tables.Terms {
		b.drawTableRow([]string{
			cli.FormatYears(r.TermYears),
			cli.FormatRate(r.Result.AnnualizedRatePercent),
			cli.FormatCurrency(r.TotalFees),
			cli.FormatCost(r.PeriodicPayment),
		}, widths, false)
	}
	p.Ln(4)
	p.SetFont("Arial", "I", 8)
	p.SetTextColor(100, 100, 100)
	p.MultiCell(contentWidth, 4, "Rates assume straight-line principal repayment with the fee charged every period. "+
		"They are not comparable with annuity-based comparison rates.", "", "L", false)
}

func (b *builder) drawSectionHeader(title string) {
	p := b.pdf
	p.SetFont("Arial", "B", 14)
	p.SetTextColor(0, 51, 102)
	p.CellFormat(contentWidth, 9, b.tr(title), "", 1, "L", false, 0, "")
	p.SetDrawColor(0, 51, 102)
	p.Line(marginLeft, p.GetY(), marginLeft+contentWidth, p.GetY())
	p.Ln(3)
}

func (b *builder) drawTableHeader(headers []string, widths []float64) {
	p := b.pdf
	p.SetFillColor(0, 51, 102)
	p.SetTextColor(255, 255, 255)
	p.SetFont("Arial", "B", 9)
	for i, h := range headers {
		align := "L"
		if i > 0 {
			align = "R"
		}
		p.CellFormat(widths[i], 6, b.tr(h), "1", 0, align, true, 0, "")
	}
	p.Ln(-1)
}

func (b *builder) drawTableRow(cells []string, widths []float64, bold bool) {
	p := b.pdf
	p.SetFillColor(250, 250, 250)
	p.SetTextColor(50, 50, 50)
	if bold {
		p.SetFont("Arial", "B", 9)
		p.SetFillColor(240, 240, 240)
	} else {
		p.SetFont("Arial", "", 9)
	}
	for i, c := range cells {
		align := "L"
		if i > 0 {
			align = "R"
		}
		p.CellFormat(widths[i], 5, b.tr(c), "1", 0, align, true, 0, "")
	}
	p.Ln(-1)
}

func periodsOf(t finance.LoanTerms) int {
	if t.PeriodsPerYear > 0 {
		return t.PeriodsPerYear
	}
	return finance.DefaultPeriodsPerYear
}

func verdictText(v finance.Verdict, mortgageRate float64) string {
	if v.FinancingCheaper {
		return fmt.Sprintf("Financing saves you %s vs pulling from offset at %s.",
			cli.FormatCurrency(v.Savings), cli.FormatRate(mortgageRate))
	}
	return fmt.Sprintf("Pulling from offset at %s saves you %s vs financing.",
		cli.FormatRate(mortgageRate), cli.FormatCurrency(v.Savings))
}
