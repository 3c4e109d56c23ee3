package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/feeburn/internal/cli"
	"github.com/theirongolddev/feeburn/internal/config"
	"github.com/theirongolddev/feeburn/internal/pipeline"
	"github.com/theirongolddev/feeburn/internal/store"

	"github.com/spf13/cobra"
)

var flagPruneOlderThan time.Duration

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the on-disk result cache",
	RunE:  runCacheStats,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove cached results older than --older-than",
	RunE:  runCachePrune,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached result",
	RunE:  runCacheClear,
}

func init() {
	cachePruneCmd.Flags().DurationVar(&flagPruneOlderThan, "older-than", 30*24*time.Hour, "Age cutoff")
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()

	c, err := store.Open(pipeline.CachePath())
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer c.Close()

	st, err := c.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("  Database: %s\n", pipeline.CachePath())
	fmt.Printf("  Entries:  %s (%d terms, %d scenarios)\n", cli.FormatNumber(int64(st.Entries)), st.Terms, st.Scenarios)
	fmt.Printf("  Hits:     %s\n", cli.FormatNumber(st.Hits))
	if !st.Oldest.IsZero() {
		fmt.Printf("  Oldest:   %s\n", st.Oldest.Local().Format(time.RFC3339))
		fmt.Printf("  Newest:   %s\n", st.Newest.Local().Format(time.RFC3339))
	}

	if addr := config.GetRedisAddr(cfg); addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		rc, err := store.NewRedisCache(ctx, addr, 0)
		if err != nil {
			fmt.Printf("  Redis:    unreachable at %s (%v)\n", addr, err)
			return nil
		}
		defer rc.Close()

		n, err := rc.Count(ctx)
		if err != nil {
			fmt.Printf("  Redis:    %s (count failed: %v)\n", addr, err)
			return nil
		}
		fmt.Printf("  Redis:    %s entries at %s\n", cli.FormatNumber(int64(n)), addr)
	}
	return nil
}

func runCachePrune(_ *cobra.Command, _ []string) error {
	c, err := store.Open(pipeline.CachePath())
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer c.Close()

	n, err := c.Prune(time.Now().Add(-flagPruneOlderThan))
	if err != nil {
		return fmt.Errorf("pruning cache: %w", err)
	}
	fmt.Printf("  Pruned %d entries older than %s\n", n, flagPruneOlderThan)
	return nil
}

func runCacheClear(_ *cobra.Command, _ []string) error {
	c, err := store.Open(pipeline.CachePath())
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer c.Close()

	n, err := c.Clear()
	if err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	fmt.Printf("  Removed %d entries\n", n)
	return nil
}
