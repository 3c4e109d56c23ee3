package cmd

import (
	"fmt"

	"github.com/theirongolddev/feeburn/internal/cli"
	"github.com/theirongolddev/feeburn/internal/finance"
	"github.com/theirongolddev/feeburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Solve the effective annual rate of a flat-fee loan",
	RunE:  runRate,
}

func init() {
	rootCmd.AddCommand(rateCmd)
}

type rateOutput struct {
	pipeline.Calculation
	MortgageRate float64          `json:"mortgage_rate,omitempty"`
	Verdict      *finance.Verdict `json:"verdict,omitempty"`
}

func runRate(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	terms, mortgageRate := resolveInputs(cmd, cfg)

	cache, _ := openCache(cfg)
	defer cache.Close()

	calc, err := pipeline.SolveTerms(terms, cache)
	if err != nil {
		return err
	}

	var verdict *finance.Verdict
	if cfg.Offset.Compare && mortgageRate > 0 {
		v := finance.Compare(calc.Summary.TotalFees, finance.OffsetCost(terms.Principal, terms.TermYears, mortgageRate))
		verdict = &v
	}

	if flagJSON {
		return printJSON(rateOutput{Calculation: calc, MortgageRate: mortgageRate, Verdict: verdict})
	}

	res, sum := calc.Result, calc.Summary
	ppy := terms.PeriodsPerYear
	if ppy == 0 {
		ppy = finance.DefaultPeriodsPerYear
	}
	period := "period"
	if f, ok := finance.FrequencyFor(ppy); ok {
		period = f.Label()
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("FLAT-FEE LOAN  %s over %s", cli.FormatCurrency(terms.Principal), cli.FormatYears(terms.TermYears))))
	fmt.Println()
	fmt.Println(cli.RenderRate("Effective APR", res.AnnualizedRatePercent, res.Converged))
	fmt.Println()

	rows := [][]string{
		{"Principal", cli.FormatCurrency(terms.Principal)},
		{"Term", cli.FormatYears(terms.TermYears)},
		{"Fee per " + period, cli.FormatCost(terms.WeeklyFee)},
		{"Establishment fee", cli.FormatCurrency(terms.EstablishmentFee)},
		{"---"},
		{"Payments", cli.FormatNumber(int64(sum.TotalPeriods))},
		{"Payment per " + period, cli.FormatCost(sum.PeriodicPayment)},
		{"Total fees", cli.FormatCurrency(sum.TotalFees)},
		{"Fees / principal", cli.FormatPercent(sum.FeeSharePercent)},
		{"Total repaid", cli.FormatCurrency(sum.TotalRepaid)},
		{"---"},
		{"Periodic rate", fmt.Sprintf("%.6f%%", res.PeriodicRate*100)},
		{"Iterations", fmt.Sprintf("%d", res.Iterations)},
	}
	fmt.Print(cli.RenderTable(cli.Table{Headers: []string{"Item", "Value"}, Rows: rows}))

	if verdict != nil {
		fmt.Println()
		fmt.Println(cli.RenderVerdict(verdict.FinancingCheaper, verdictLine(*verdict, mortgageRate)))
	}
	if calc.Cached && !flagQuiet {
		fmt.Println()
		fmt.Println("  (from cache)")
	}
	return nil
}

func verdictLine(v finance.Verdict, mortgageRate float64) string {
	if v.FinancingCheaper {
		return fmt.Sprintf("Financing saves you %s vs pulling from offset at %s",
			cli.FormatCurrency(v.Savings), cli.FormatRate(mortgageRate))
	}
	return fmt.Sprintf("Pulling from offset saves you %s vs financing (mortgage at %s)",
		cli.FormatCurrency(v.Savings), cli.FormatRate(mortgageRate))
}
