package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/feeburn/internal/config"
	"github.com/theirongolddev/feeburn/internal/pipeline"
	"github.com/theirongolddev/feeburn/internal/report"

	"github.com/spf13/cobra"
)

var (
	flagReportOut   string
	flagReportTitle string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a PDF report of the rate, cost summary, lender ranking and tables",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&flagReportOut, "out", "o", "feeburn-report.pdf", "Output PDF path")
	reportCmd.Flags().StringVar(&flagReportTitle, "title", "", "Report title")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	terms, mortgageRate := resolveInputs(cmd, cfg)

	cache, _ := openCache(cfg)
	defer cache.Close()

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Solving...\n")
	}

	calc, err := pipeline.SolveTerms(terms, cache)
	if err != nil {
		return err
	}
	tables, err := pipeline.BuildTables(terms, cache)
	if err != nil {
		return err
	}

	in := report.Input{
		Title:       flagReportTitle,
		Calculation: calc,
		Tables:      &tables,
		GeneratedAt: time.Now(),
	}
	if cfg.Offset.Compare {
		in.MortgageRate = mortgageRate
	}

	scenarios := config.Scenarios(cfg, terms.Principal, time.Now(), false)
	if len(scenarios) > 0 {
		ev, err := pipeline.EvaluateWithCache(scenarios, cache, nil)
		if err == nil {
			outcomes := ev.Outcomes()
			var offset *pipeline.OffsetInput
			if cfg.Offset.Compare && mortgageRate > 0 {
				offset = pipeline.OffsetFor(outcomes, mortgageRate)
			}
			ranking := pipeline.Rank(outcomes, offset)
			in.Ranking = &ranking
		} else if !flagQuiet {
			fmt.Fprintf(os.Stderr, "  Skipping lender ranking: %v\n", err)
		}
	}

	pdf, err := report.Generate(in)
	if err != nil {
		return fmt.Errorf("generating report: %w", err)
	}

	if dir := filepath.Dir(flagReportOut); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report dir: %w", err)
		}
	}
	if err := os.WriteFile(flagReportOut, pdf, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	fmt.Printf("  Wrote %s (%d KB)\n", flagReportOut, (len(pdf)+1023)/1024)
	return nil
}
