package config

import (
	"testing"
	"time"

	"github.com/theirongolddev/feeburn/internal/finance"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func withHistory(t *testing.T, key string, versions []lenderTermsVersion) {
	t.Helper()
	orig, had := defaultLenderHistory[key]
	if had {
		t.Cleanup(func() { defaultLenderHistory[key] = orig })
	} else {
		t.Cleanup(func() { delete(defaultLenderHistory, key) })
	}
	defaultLenderHistory[key] = versions
}

func TestLookupLenderAt_UsesEffectiveDate(t *testing.T) {
	withHistory(t, "test-lender-windowed", []lenderTermsVersion{
		{EffectiveFrom: mustDate(t, "2025-01-01"), Terms: LenderTerms{FeeAmount: 2.00}},
		{EffectiveFrom: mustDate(t, "2025-07-01"), Terms: LenderTerms{FeeAmount: 2.30}},
	})

	apr, ok := LookupLenderAt("Test Lender Windowed", mustDate(t, "2025-04-15"))
	if !ok {
		t.Fatal("LookupLenderAt returned !ok for historical lender")
	}
	if apr.FeeAmount != 2.00 {
		t.Fatalf("April FeeAmount = %.2f, want 2.00", apr.FeeAmount)
	}

	aug, ok := LookupLenderAt("test-lender-windowed", mustDate(t, "2025-08-15"))
	if !ok {
		t.Fatal("LookupLenderAt returned !ok in later window")
	}
	if aug.FeeAmount != 2.30 {
		t.Fatalf("August FeeAmount = %.2f, want 2.30", aug.FeeAmount)
	}
}

func TestLookupLenderAt_UsesLatestWhenTimeZero(t *testing.T) {
	withHistory(t, "test-lender-latest", []lenderTermsVersion{
		{EffectiveFrom: mustDate(t, "2025-01-01"), Terms: LenderTerms{EstablishmentFee: 50}},
		{EffectiveFrom: mustDate(t, "2025-09-01"), Terms: LenderTerms{EstablishmentFee: 75}},
	})

	terms, ok := LookupLenderAt("test-lender-latest", time.Time{})
	if !ok {
		t.Fatal("LookupLenderAt returned !ok")
	}
	if terms.EstablishmentFee != 75 {
		t.Fatalf("zero-time lookup EstablishmentFee = %.2f, want 75", terms.EstablishmentFee)
	}
}

func TestLookupLender_Unknown(t *testing.T) {
	if _, ok := LookupLender("no-such-lender"); ok {
		t.Fatal("LookupLender returned ok for unknown lender")
	}
}

func TestNormalizeLenderKey(t *testing.T) {
	tests := map[string]string{
		"Bank Loan":      "bank-loan",
		"  Green   Loan": "green-loan",
		"brighte":        "brighte",
	}
	for in, want := range tests {
		if got := NormalizeLenderKey(in); got != want {
			t.Errorf("NormalizeLenderKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestScenarios_DefaultsSkipDisabled(t *testing.T) {
	got := Scenarios(DefaultConfig(), 15000, time.Time{}, false)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (green loan is disabled by default)", len(got))
	}
	for _, s := range got {
		if s.Principal != 15000 {
			t.Errorf("%s: principal = %v, want 15000", s.Name, s.Principal)
		}
	}
	if all := Scenarios(DefaultConfig(), 15000, time.Time{}, true); len(all) != 3 {
		t.Fatalf("includeDisabled len = %d, want 3", len(all))
	}
}

func TestScenarios_AppliesOverrides(t *testing.T) {
	fee := 3.10
	enabled := true
	freq := "fortnightly"
	name := "Credit Union"
	rate := 6.2

	cfg := DefaultConfig()
	cfg.Lenders.Overrides = map[string]LenderOverride{
		"Brighte":    {FeeAmount: &fee, FeeFrequency: &freq},
		"green-loan": {Enabled: &enabled},
		"credit-union": {
			Name: &name, InterestRate: &rate,
		},
	}

	byName := make(map[string]finance.Scenario)
	for _, s := range Scenarios(cfg, 10000, time.Time{}, false) {
		byName[s.Name] = s
	}
	if len(byName) != 4 {
		t.Fatalf("got %d scenarios, want 4: %v", len(byName), byName)
	}
	if b := byName["Brighte"]; b.FeeAmount != 3.10 || b.FeeFrequency != finance.Fortnightly {
		t.Errorf("Brighte override not applied: %+v", b)
	}
	if _, ok := byName["Green Loan"]; !ok {
		t.Error("Green Loan not enabled by override")
	}
	cu := byName["Credit Union"]
	if cu.InterestRate != 6.2 || cu.FeeFrequency != finance.Monthly {
		t.Errorf("override-only lender = %+v", cu)
	}
}
