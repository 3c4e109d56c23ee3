package cmd

import (
	"fmt"

	"github.com/theirongolddev/feeburn/internal/cli"
	"github.com/theirongolddev/feeburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagTableBy string

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Tabulate the effective rate across amounts and terms",
	RunE:  runTable,
}

func init() {
	tableCmd.Flags().StringVar(&flagTableBy, "by", "both", "Which table to print: amount, term, or both")
	rootCmd.AddCommand(tableCmd)
}

func runTable(cmd *cobra.Command, _ []string) error {
	switch flagTableBy {
	case "amount", "term", "both":
	default:
		return fmt.Errorf("--by must be amount, term, or both (got %q)", flagTableBy)
	}

	cfg := loadConfig()
	terms, _ := resolveInputs(cmd, cfg)

	cache, _ := openCache(cfg)
	defer cache.Close()

	tables, err := pipeline.BuildTables(terms, cache)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(tables)
	}

	fmt.Println()
	if flagTableBy != "term" {
		rows := make([][]string, 0, len(tables.Amounts))
		for _, r := range tables.Amounts {
			rows = append(rows, []string{
				cli.FormatCurrency(r.Amount),
				cli.FormatRate(r.Result.AnnualizedRatePercent),
				cli.FormatCurrency(r.TotalFees),
				cli.RenderShareBar(r.FeePercent, 12),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   fmt.Sprintf("Rate by amount (%s term)", cli.FormatYears(terms.TermYears)),
			Headers: []string{"Amount", "APR", "Total Fees", "Fees / Principal"},
			Rows:    rows,
		}))

		var maxAPR float64
		for _, r := range tables.Amounts {
			maxAPR = max(maxAPR, r.Result.AnnualizedRatePercent)
		}
		fmt.Println()
		for _, r := range tables.Amounts {
			label := fmt.Sprintf("%9s", cli.FormatCurrency(r.Amount))
			fmt.Println(cli.RenderHorizontalBar(label, r.Result.AnnualizedRatePercent, maxAPR, 30))
		}
		fmt.Println()
	}

	if flagTableBy != "amount" {
		rows := make([][]string, 0, len(tables.Terms))
		apr := make([]float64, 0, len(tables.Terms))
		for _, r := range tables.Terms {
			rows = append(rows, []string{
				cli.FormatYears(r.TermYears),
				cli.FormatRate(r.Result.AnnualizedRatePercent),
				cli.FormatCurrency(r.TotalFees),
				cli.FormatCost(r.PeriodicPayment),
			})
			apr = append(apr, r.Result.AnnualizedRatePercent)
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   fmt.Sprintf("Rate by term (%s)", cli.FormatCurrency(terms.Principal)),
			Headers: []string{"Term", "APR", "Total Fees", "Per Period"},
			Rows:    rows,
		}))
		fmt.Printf("\n  APR trend  %s\n", cli.RenderSparkline(apr))
	}
	return nil
}
