package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/feeburn/internal/cli"
	"github.com/theirongolddev/feeburn/internal/config"
	"github.com/theirongolddev/feeburn/internal/finance"
	"github.com/theirongolddev/feeburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagCompareDisabled bool
	flagCompareNoOffset bool
)

var compareCmd = &cobra.Command{
	Use:   "compare [file|dir]",
	Short: "Rank lenders (or scenario files) by total cost against a mortgage offset",
	Long: "Without arguments, compares the configured lenders for --principal.\n" +
		"With a path, compares the scenarios in a YAML or JSONL file, or in every\n" +
		"such file under a directory.",
	Args: cobra.MaximumNArgs(1),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().BoolVar(&flagCompareDisabled, "all", false, "Include disabled lenders")
	compareCmd.Flags().BoolVar(&flagCompareNoOffset, "no-offset", false, "Leave the mortgage offset out of the ranking")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	terms, mortgageRate := resolveInputs(cmd, cfg)

	var scenarios []finance.Scenario
	if len(args) == 1 {
		loaded, err := loadScenarioFiles(args[0])
		if err != nil {
			return err
		}
		scenarios = loaded.Scenarios
		if loaded.MortgageRate != nil && !cmd.Flags().Changed("mortgage-rate") {
			mortgageRate = *loaded.MortgageRate
		}
	} else {
		scenarios = config.Scenarios(cfg, terms.Principal, time.Now(), flagCompareDisabled)
	}

	if len(scenarios) == 0 {
		fmt.Println("\n  No scenarios to compare.")
		return nil
	}

	cache, _ := openCache(cfg)
	defer cache.Close()

	progressFn := func(current, total int) {
		if !flagQuiet && total > 50 && (current%50 == 0 || current == total) {
			fmt.Fprintf(os.Stderr, "\r  Solving [%d/%d]", current, total)
		}
	}
	ev, err := pipeline.EvaluateWithCache(scenarios, cache, progressFn)
	if err != nil {
		if !flagQuiet {
			fmt.Fprintf(os.Stderr, "  Cache error, solving without it: %v\n", err)
		}
		ev = &pipeline.CachedEvalResult{EvalResult: *pipeline.Evaluate(scenarios, progressFn)}
	}
	if !flagQuiet && len(scenarios) > 50 {
		fmt.Fprintf(os.Stderr, "\r  Solved %d scenarios (%d cached)    \n", len(scenarios), ev.CacheHits)
	}

	outcomes := ev.Outcomes()
	var offset *pipeline.OffsetInput
	if !flagCompareNoOffset && mortgageRate > 0 {
		offset = pipeline.OffsetFor(outcomes, mortgageRate)
	}
	ranking := pipeline.Rank(outcomes, offset)

	if flagJSON {
		return printJSON(ranking)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("FUNDING OPTIONS  %d compared", len(ranking.Options))))
	fmt.Println()

	rows := make([][]string, 0, len(ranking.Options))
	for i, o := range ranking.Options {
		name := o.Name
		if i == 0 {
			name = "★ " + name
		}
		per, repaid := "-", "-"
		if o.Outcome != nil {
			per = cli.FormatCost(o.Outcome.PaymentPerPeriod) + "/" + finance.ParseFrequency(string(o.Outcome.Scenario.FeeFrequency)).Label()
			repaid = cli.FormatCurrency(o.Outcome.TotalRepaid)
		}
		rows = append(rows, []string{name, cli.FormatRate(o.EffectiveAPR), cli.FormatCurrency(o.TotalCost), per, repaid})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Option", "APR", "Total Cost", "Payment", "Repaid"},
		Rows:    rows,
	}))

	for i, r := range ev.Results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", scenarios[i].Name, r.Err)
		}
	}

	if offset != nil && len(outcomes) > 0 {
		first := outcomes[0]
		v := finance.Compare(first.TotalCost, finance.OffsetCost(offset.Principal, offset.TermYears, offset.MortgageRate))
		fmt.Println()
		fmt.Println(cli.RenderVerdict(v.FinancingCheaper, fmt.Sprintf("%s: %s", first.Scenario.Name, verdictLine(v, mortgageRate))))
	}
	if best, ok := ranking.Best(); ok {
		fmt.Printf("\n  Best option: %s at %s total cost\n", best.Name, cli.FormatCurrency(best.TotalCost))
	}
	return nil
}

func loadScenarioFiles(path string) (*pipeline.LoadResult, error) {
	progressFn := func(current, total int) {
		if !flagQuiet && total > 1 {
			fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
		}
	}
	result, err := pipeline.Load(path, progressFn)
	if err != nil {
		return nil, err
	}
	if !flagQuiet {
		if result.TotalFiles > 1 {
			fmt.Fprintln(os.Stderr)
		}
		if result.TotalFiles == 0 {
			fmt.Fprintf(os.Stderr, "  No .yaml, .yml or .jsonl files found under %s\n", path)
		}
		if result.ParseErrors > 0 || result.FileErrors > 0 {
			fmt.Fprintf(os.Stderr, "  %d files could not be read, %d lines skipped\n", result.FileErrors, result.ParseErrors)
		}
		for _, err := range result.Errors {
			fmt.Fprintf(os.Stderr, "  %v\n", err)
		}
	}
	return result, nil
}
