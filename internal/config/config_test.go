package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Fees.WeeklyFee != 2.30 || cfg.Fees.EstablishmentFee != 75 {
		t.Errorf("default fees = %+v", cfg.Fees)
	}
	if Exists() {
		t.Error("Exists() = true with no config file")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Fees.Principal = 8000
	cfg.Offset.MortgageRate = 5.85
	cfg.Appearance.Theme = "terminal"
	if err := Save(cfg); err != nil {
		t.Fatal(err)
	}
	if !Exists() {
		t.Fatal("Exists() = false after Save")
	}

	got, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.Fees.Principal != 8000 || got.Offset.MortgageRate != 5.85 || got.Appearance.Theme != "terminal" {
		t.Errorf("round trip lost values: %+v", got)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := filepath.Join(dir, "feeburn", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	data := "[offset]\nmortgage_rate = 4.9\n\n[lenders.overrides.brighte]\nfee_amount = 2.5\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Offset.MortgageRate != 4.9 {
		t.Errorf("MortgageRate = %v, want 4.9", cfg.Offset.MortgageRate)
	}
	if cfg.Fees.Principal != 15000 {
		t.Errorf("Principal = %v, want default 15000", cfg.Fees.Principal)
	}
	ov, ok := cfg.Lenders.Overrides["brighte"]
	if !ok || ov.FeeAmount == nil || *ov.FeeAmount != 2.5 {
		t.Errorf("brighte override = %+v", ov)
	}
}

func TestLoad_BadTOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, "feeburn", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[fees\nprincipal = "), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.RedisAddr = "cfg:6379"

	t.Setenv("FEEBURN_REDIS_ADDR", "")
	if got := GetRedisAddr(cfg); got != "cfg:6379" {
		t.Errorf("GetRedisAddr = %q, want config value", got)
	}
	t.Setenv("FEEBURN_REDIS_ADDR", "env:6379")
	if got := GetRedisAddr(cfg); got != "env:6379" {
		t.Errorf("GetRedisAddr = %q, want env value", got)
	}

	t.Setenv("FEEBURN_LOG_LEVEL", "debug")
	if got := GetLogLevel(cfg); got != "debug" {
		t.Errorf("GetLogLevel = %q, want debug", got)
	}
}
