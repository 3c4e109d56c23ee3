// Package cmd implements the feeburn CLI commands.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/feeburn/internal/config"
	"github.com/theirongolddev/feeburn/internal/finance"
	"github.com/theirongolddev/feeburn/internal/pipeline"
	"github.com/theirongolddev/feeburn/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagPrincipal        float64
	flagTerm             float64
	flagWeeklyFee        float64
	flagEstablishmentFee float64
	flagPeriods          int
	flagMortgageRate     float64
	flagNoCache          bool
	flagQuiet            bool
	flagJSON             bool
)

var rootCmd = &cobra.Command{
	Use:   "feeburn",
	Short: "Effective interest rates for flat-fee loans",
	Long: "Work out the effective annual rate hidden in a flat periodic account fee,\n" +
		"compare lenders, and weigh financing against drawing from a mortgage offset.",
	SilenceUsage:      true,
	PersistentPreRunE: checkInputFlags,
	RunE:              runRate,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.Float64VarP(&flagPrincipal, "principal", "p", 0, "Amount financed (default from config)")
	pf.Float64VarP(&flagTerm, "term", "t", 0, "Term in years (default from config)")
	pf.Float64Var(&flagWeeklyFee, "weekly-fee", 0, "Flat fee charged every period (default from config)")
	pf.Float64Var(&flagEstablishmentFee, "establishment-fee", 0, "One-off fee added to the first payment (default from config)")
	pf.IntVar(&flagPeriods, "periods", 0, "Payments per year (default from config, 52 = weekly)")
	pf.Float64Var(&flagMortgageRate, "mortgage-rate", 0, "Mortgage rate in percent for the offset comparison (default from config)")
	pf.BoolVar(&flagNoCache, "no-cache", false, "Skip the result cache, solve everything")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	pf.BoolVar(&flagJSON, "json", false, "Print machine-readable JSON")
}

// loadConfig loads the config file, warning on stderr and falling back to
// defaults when it cannot be read.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil && !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Config error, using defaults: %v\n", err)
	}
	return cfg
}

// checkInputFlags rejects explicitly supplied values that the config
// defaults would otherwise paper over.
func checkInputFlags(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("periods") && flagPeriods <= 0 {
		return fmt.Errorf("--periods must be a positive number of payments per year, got %d", flagPeriods)
	}
	return nil
}

// resolveInputs overlays explicitly set flags on the configured defaults.
func resolveInputs(cmd *cobra.Command, cfg config.Config) (finance.LoanTerms, float64) {
	terms := cfg.LoanTerms()
	rate := cfg.Offset.MortgageRate

	flags := cmd.Flags()
	if flags.Changed("principal") {
		terms.Principal = flagPrincipal
	}
	if flags.Changed("term") {
		terms.TermYears = flagTerm
	}
	if flags.Changed("weekly-fee") {
		terms.WeeklyFee = flagWeeklyFee
	}
	if flags.Changed("establishment-fee") {
		terms.EstablishmentFee = flagEstablishmentFee
	}
	if flags.Changed("periods") {
		terms.PeriodsPerYear = flagPeriods
	}
	if flags.Changed("mortgage-rate") {
		rate = flagMortgageRate
	}
	return terms, rate
}

// openCache opens the configured result cache. Failures degrade to an
// in-memory cache with a warning.
func openCache(cfg config.Config) (store.ResultCache, string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, backend, err := pipeline.OpenCache(ctx, cfg, flagNoCache)
	if err != nil && !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Cache unavailable, using %s: %v\n", backend, err)
	}
	return c, backend
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
