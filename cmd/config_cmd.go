package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/feeburn/internal/cli"
	"github.com/theirongolddev/feeburn/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Payments per year: %d\n", cfg.General.PeriodsPerYear)
	fmt.Printf("    Currency:          %s\n", cfg.General.Currency)
	fmt.Println()

	fmt.Println("  [Fees]")
	fmt.Printf("    Principal:         %s\n", cli.FormatCurrency(cfg.Fees.Principal))
	fmt.Printf("    Term:              %s\n", cli.FormatYears(cfg.Fees.TermYears))
	fmt.Printf("    Periodic fee:      %s\n", cli.FormatCost(cfg.Fees.WeeklyFee))
	fmt.Printf("    Establishment fee: %s\n", cli.FormatCurrency(cfg.Fees.EstablishmentFee))
	fmt.Println()

	fmt.Println("  [Offset]")
	fmt.Printf("    Mortgage rate: %s\n", cli.FormatRate(cfg.Offset.MortgageRate))
	fmt.Printf("    Compare:       %v\n", cfg.Offset.Compare)
	fmt.Println()

	fmt.Println("  [Cache]")
	switch {
	case cfg.Cache.Disabled:
		fmt.Println("    Backend: disabled (in-memory only)")
	case config.GetRedisAddr(cfg) != "":
		fmt.Printf("    Backend: redis at %s\n", config.GetRedisAddr(cfg))
	default:
		fmt.Printf("    Backend: sqlite in %s\n", config.CacheDir())
	}
	fmt.Printf("    TTL:     %dh\n", cfg.Cache.TTLHours)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:        %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Log level:      %s\n", config.GetLogLevel(cfg))
	fmt.Printf("    Prune schedule: %s\n", orNone(cfg.Daemon.PruneSchedule))
	fmt.Printf("    Events limit:   %d\n", cfg.Daemon.EventsLimit)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Lenders]")
	now := time.Now()
	for _, key := range config.LenderKeys(cfg) {
		t, ok := config.ResolveLender(cfg, key, now)
		if !ok {
			continue
		}
		fmt.Printf("    %-12s %s\n", key, describeLender(t))
	}
	fmt.Println()

	fmt.Println("  Run `feeburn setup` to reconfigure.")
	return nil
}

// describeLender summarizes a lender's terms on one line.
func describeLender(t config.LenderTerms) string {
	parts := []string{t.Name, cli.FormatYears(t.TermYears)}
	if t.InterestRate > 0 {
		parts = append(parts, cli.FormatRate(t.InterestRate)+" interest")
	}
	if t.FeeAmount > 0 {
		parts = append(parts, cli.FormatCost(t.FeeAmount)+" "+string(t.FeeFrequency)+" fee")
	}
	if t.EstablishmentFee > 0 {
		parts = append(parts, cli.FormatCurrency(t.EstablishmentFee)+" establishment")
	}
	if !t.Enabled {
		parts = append(parts, "(disabled)")
	}
	return strings.Join(parts, ", ")
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
