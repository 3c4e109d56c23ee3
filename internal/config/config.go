package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/feeburn/internal/finance"

	"github.com/BurntSushi/toml"
)

// Config holds all feeburn configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Fees       FeesConfig       `toml:"fees"`
	Offset     OffsetConfig     `toml:"offset"`
	Cache      CacheConfig      `toml:"cache"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Appearance AppearanceConfig `toml:"appearance"`
	Lenders    LenderOverrides  `toml:"lenders"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	PeriodsPerYear int    `toml:"periods_per_year"`
	Currency       string `toml:"currency"`
}

// FeesConfig holds the default loan the CLI and dashboard open with.
type FeesConfig struct {
	Principal        float64 `toml:"principal"`
	TermYears        float64 `toml:"term_years"`
	WeeklyFee        float64 `toml:"weekly_fee"`
	EstablishmentFee float64 `toml:"establishment_fee"`
}

// OffsetConfig holds the mortgage offset comparison settings.
type OffsetConfig struct {
	MortgageRate float64 `toml:"mortgage_rate"`
	Compare      bool    `toml:"compare"`
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	Disabled  bool   `toml:"disabled"`
	RedisAddr string `toml:"redis_addr,omitempty"`
	TTLHours  int    `toml:"ttl_hours"`
}

// DaemonConfig holds HTTP daemon settings.
type DaemonConfig struct {
	Addr          string `toml:"addr"`
	LogLevel      string `toml:"log_level"`
	PruneSchedule string `toml:"prune_schedule"`
	EventsLimit   int    `toml:"events_limit"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// LenderOverrides allows user-defined terms for specific lenders.
type LenderOverrides struct {
	Overrides map[string]LenderOverride `toml:"overrides,omitempty"`
}

// LenderOverride holds per-lender term overrides.
type LenderOverride struct {
	Name             *string  `toml:"name,omitempty"`
	TermYears        *float64 `toml:"term_years,omitempty"`
	InterestRate     *float64 `toml:"interest_rate,omitempty"`
	FeeAmount        *float64 `toml:"fee_amount,omitempty"`
	FeeFrequency     *string  `toml:"fee_frequency,omitempty"`
	EstablishmentFee *float64 `toml:"establishment_fee,omitempty"`
	Enabled          *bool    `toml:"enabled,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			PeriodsPerYear: finance.DefaultPeriodsPerYear,
			Currency:       "AUD",
		},
		Fees: FeesConfig{
			Principal:        15000,
			TermYears:        5,
			WeeklyFee:        2.30,
			EstablishmentFee: 75,
		},
		Offset: OffsetConfig{
			MortgageRate: 6.0,
			Compare:      true,
		},
		Cache: CacheConfig{
			TTLHours: 24 * 30,
		},
		Daemon: DaemonConfig{
			Addr:          "127.0.0.1:8417",
			LogLevel:      "info",
			PruneSchedule: "@hourly",
			EventsLimit:   200,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "feeburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "feeburn")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// CacheDir returns the XDG-compliant cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "feeburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "feeburn")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// GetRedisAddr returns the Redis address from env var or config, in that order.
func GetRedisAddr(cfg Config) string {
	if addr := os.Getenv("FEEBURN_REDIS_ADDR"); addr != "" {
		return addr
	}
	return cfg.Cache.RedisAddr
}

// GetLogLevel returns the daemon log level from env var or config, in that order.
func GetLogLevel(cfg Config) string {
	if lvl := os.Getenv("FEEBURN_LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return cfg.Daemon.LogLevel
}

// LoanTerms returns the configured default loan.
func (c Config) LoanTerms() finance.LoanTerms {
	return finance.LoanTerms{
		Principal:        c.Fees.Principal,
		TermYears:        c.Fees.TermYears,
		WeeklyFee:        c.Fees.WeeklyFee,
		EstablishmentFee: c.Fees.EstablishmentFee,
		PeriodsPerYear:   c.General.PeriodsPerYear,
	}
}
