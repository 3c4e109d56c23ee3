package config

import (
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/feeburn/internal/finance"
)

// LenderTerms holds the published terms of a lender's offer.
type LenderTerms struct {
	Name             string
	TermYears        float64
	InterestRate     float64
	FeeAmount        float64
	FeeFrequency     finance.Frequency
	EstablishmentFee float64
	Enabled          bool
}

type lenderTermsVersion struct {
	EffectiveFrom time.Time
	Terms         LenderTerms
}

// DefaultLenders maps lender keys to their current terms.
var DefaultLenders = map[string]LenderTerms{
	"brighte": {
		Name: "Brighte", TermYears: 5,
		FeeAmount: 2.30, FeeFrequency: finance.Weekly, EstablishmentFee: 75,
		Enabled: true,
	},
	"bank-loan": {
		Name: "Bank Loan", TermYears: 5,
		InterestRate: 7.5, FeeFrequency: finance.Monthly, EstablishmentFee: 250,
		Enabled: true,
	},
	"green-loan": {
		Name: "Green Loan", TermYears: 7,
		InterestRate: 5.5, FeeFrequency: finance.Monthly,
	},
}

// defaultLenderHistory stores effective-dated terms for each lender.
// Entries must be sorted by EffectiveFrom ascending.
var defaultLenderHistory = makeDefaultLenderHistory(DefaultLenders)

func makeDefaultLenderHistory(base map[string]LenderTerms) map[string][]lenderTermsVersion {
	history := make(map[string][]lenderTermsVersion, len(base))
	for key, terms := range base {
		history[key] = []lenderTermsVersion{
			{Terms: terms},
		}
	}
	return history
}

// NormalizeLenderKey turns a display name like "Bank Loan" into "bank-loan".
func NormalizeLenderKey(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), "-")
}

// LookupLender returns the current terms for a lender.
// Returns zero terms and false if the lender is unknown.
func LookupLender(name string) (LenderTerms, bool) {
	return LookupLenderAt(name, time.Now())
}

// LookupLenderAt returns a lender's terms at the given timestamp.
// If at is zero, the latest known entry is used.
func LookupLenderAt(name string, at time.Time) (LenderTerms, bool) {
	key := NormalizeLenderKey(name)
	versions, ok := defaultLenderHistory[key]
	if !ok || len(versions) == 0 {
		t, fallback := DefaultLenders[key]
		return t, fallback
	}

	if at.IsZero() {
		return versions[len(versions)-1].Terms, true
	}

	at = at.UTC()
	selected := versions[0].Terms
	for _, v := range versions {
		if v.EffectiveFrom.IsZero() || !at.Before(v.EffectiveFrom.UTC()) {
			selected = v.Terms
			continue
		}
		break
	}
	return selected, true
}

// LenderKeys returns every known lender key plus any configured only through
// overrides, sorted.
func LenderKeys(cfg Config) []string {
	seen := make(map[string]bool)
	var keys []string
	for k := range defaultLenderHistory {
		seen[k] = true
		keys = append(keys, k)
	}
	for k := range cfg.Lenders.Overrides {
		k = NormalizeLenderKey(k)
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// ResolveLender returns a lender's terms at a point in time with the user's
// overrides applied.
func ResolveLender(cfg Config, key string, at time.Time) (LenderTerms, bool) {
	key = NormalizeLenderKey(key)
	terms, ok := LookupLenderAt(key, at)

	var ov LenderOverride
	var hasOv bool
	for k, v := range cfg.Lenders.Overrides {
		if NormalizeLenderKey(k) == key {
			ov, hasOv = v, true
			break
		}
	}
	if !ok && !hasOv {
		return LenderTerms{}, false
	}
	if !ok {
		// Override-only lenders start from an enabled blank offer.
		terms = LenderTerms{Name: key, FeeFrequency: finance.Monthly, Enabled: true}
	}
	if hasOv {
		terms = applyOverride(terms, ov)
	}
	return terms, true
}

func applyOverride(t LenderTerms, ov LenderOverride) LenderTerms {
	if ov.Name != nil {
		t.Name = *ov.Name
	}
	if ov.TermYears != nil {
		t.TermYears = *ov.TermYears
	}
	if ov.InterestRate != nil {
		t.InterestRate = *ov.InterestRate
	}
	if ov.FeeAmount != nil {
		t.FeeAmount = *ov.FeeAmount
	}
	if ov.FeeFrequency != nil {
		t.FeeFrequency = finance.ParseFrequency(*ov.FeeFrequency)
	}
	if ov.EstablishmentFee != nil {
		t.EstablishmentFee = *ov.EstablishmentFee
	}
	if ov.Enabled != nil {
		t.Enabled = *ov.Enabled
	}
	return t
}

// Scenarios builds a finance scenario per enabled lender, all borrowing
// principal. With includeDisabled every known lender is returned.
func Scenarios(cfg Config, principal float64, at time.Time, includeDisabled bool) []finance.Scenario {
	var out []finance.Scenario
	for _, key := range LenderKeys(cfg) {
		t, ok := ResolveLender(cfg, key, at)
		if !ok || (!t.Enabled && !includeDisabled) {
			continue
		}
		out = append(out, t.Scenario(principal))
	}
	return out
}

// Scenario converts the terms into a finance scenario for principal.
func (t LenderTerms) Scenario(principal float64) finance.Scenario {
	return finance.Scenario{
		Name:             t.Name,
		Principal:        principal,
		TermYears:        t.TermYears,
		InterestRate:     t.InterestRate,
		FeeAmount:        t.FeeAmount,
		FeeFrequency:     t.FeeFrequency,
		EstablishmentFee: t.EstablishmentFee,
	}
}
