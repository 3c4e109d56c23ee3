package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/theirongolddev/feeburn/internal/finance"
	"github.com/theirongolddev/feeburn/internal/store"
)

func defaultScenarios() []finance.Scenario {
	return []finance.Scenario{
		{Name: "Brighte", Principal: 15000, TermYears: 5, FeeAmount: 2.30, FeeFrequency: finance.Weekly, EstablishmentFee: 75},
		{Name: "Bank Loan", Principal: 15000, TermYears: 5, InterestRate: 7.5, FeeFrequency: finance.Monthly, EstablishmentFee: 250},
		{Name: "Green Loan", Principal: 15000, TermYears: 7, InterestRate: 5.5, FeeFrequency: finance.Monthly},
	}
}

func TestEvaluate_MatchesSerial(t *testing.T) {
	scenarios := append(defaultScenarios(), benchScenarios(40)...)
	var calls atomic.Int64
	r := Evaluate(scenarios, func(current, total int) {
		calls.Add(1)
		if total != len(scenarios) || current < 1 || current > total {
			t.Errorf("progress(%d, %d) out of range", current, total)
		}
	})

	if r.Failed != 0 || r.Solved != len(scenarios) {
		t.Fatalf("Solved=%d Failed=%d, want %d/0", r.Solved, r.Failed, len(scenarios))
	}
	if int(calls.Load()) != len(scenarios) {
		t.Errorf("progress called %d times, want %d", calls.Load(), len(scenarios))
	}
	for i, s := range scenarios {
		want, err := finance.Evaluate(s)
		if err != nil {
			t.Fatal(err)
		}
		if r.Results[i].Outcome.EffectiveAPR != want.EffectiveAPR {
			t.Errorf("%s: APR %v, want %v", s.Name, r.Results[i].Outcome.EffectiveAPR, want.EffectiveAPR)
		}
	}
}

func TestEvaluate_KeepsFailuresInPlace(t *testing.T) {
	scenarios := defaultScenarios()
	scenarios[1].Principal = 0
	r := Evaluate(scenarios, nil)
	if r.Failed != 1 || r.Solved != 2 {
		t.Fatalf("Solved=%d Failed=%d, want 2/1", r.Solved, r.Failed)
	}
	if !errors.Is(r.Results[1].Err, finance.ErrInvalidInput) {
		t.Errorf("Results[1].Err = %v, want ErrInvalidInput", r.Results[1].Err)
	}
	if got := len(r.Outcomes()); got != 2 {
		t.Errorf("Outcomes() len = %d, want 2", got)
	}
}

func TestEvaluate_OversizedTermFailsWithoutPanic(t *testing.T) {
	scenarios := defaultScenarios()
	scenarios = append(scenarios, finance.Scenario{
		Name: "Forever", Principal: 1000, TermYears: 1e17, FeeAmount: 1, FeeFrequency: finance.Weekly,
	})
	r := Evaluate(scenarios, nil)
	if r.Failed != 1 || r.Solved != 3 {
		t.Fatalf("Solved=%d Failed=%d, want 3/1", r.Solved, r.Failed)
	}
	if !errors.Is(r.Results[3].Err, finance.ErrInvalidInput) {
		t.Errorf("Results[3].Err = %v, want ErrInvalidInput", r.Results[3].Err)
	}
}

func TestEvaluateWithCache_HitsOnSecondRun(t *testing.T) {
	cache := store.NewMemoryCache()
	scenarios := defaultScenarios()

	first, err := EvaluateWithCache(scenarios, cache, nil)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHits != 0 || first.Solved != 3 {
		t.Fatalf("first run hits=%d solved=%d, want 0/3", first.CacheHits, first.Solved)
	}

	renamed := defaultScenarios()
	renamed[0].Name = "Brighte (renamed)"
	second, err := EvaluateWithCache(renamed, cache, nil)
	if err != nil {
		t.Fatal(err)
	}
	if second.CacheHits != 3 || second.Solved != 0 {
		t.Fatalf("second run hits=%d solved=%d, want 3/0", second.CacheHits, second.Solved)
	}
	if got := second.Results[0].Outcome.Scenario.Name; got != "Brighte (renamed)" {
		t.Errorf("cached outcome name = %q, want requested name", got)
	}
	if second.Results[1].Outcome.EffectiveAPR != first.Results[1].Outcome.EffectiveAPR {
		t.Error("cached APR differs from solved APR")
	}
}

func TestSolveTerms_UsesCache(t *testing.T) {
	cache := store.NewMemoryCache()
	lt := finance.LoanTerms{Principal: 15000, TermYears: 5, WeeklyFee: 2.30, EstablishmentFee: 75}

	c1, err := SolveTerms(lt, cache)
	if err != nil {
		t.Fatal(err)
	}
	if c1.Cached {
		t.Error("first solve reported cached")
	}
	c2, err := SolveTerms(lt, cache)
	if err != nil {
		t.Fatal(err)
	}
	if !c2.Cached {
		t.Error("second solve not cached")
	}
	if c2.Result != c1.Result || c2.Summary != c1.Summary {
		t.Errorf("cached calculation differs: %+v vs %+v", c2, c1)
	}

	if _, err := SolveTerms(finance.LoanTerms{}, cache); !errors.Is(err, finance.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
	if cache.Len() != 1 {
		t.Errorf("cache has %d entries, want 1", cache.Len())
	}
}

func TestSolveTerms_ClosedCacheFallsBack(t *testing.T) {
	cache := store.NewMemoryCache()
	_ = cache.Close()
	c, err := SolveTerms(finance.LoanTerms{Principal: 1000, TermYears: 1, WeeklyFee: 1}, cache)
	if err != nil {
		t.Fatalf("closed cache should not fail the solve: %v", err)
	}
	if !c.Result.Converged {
		t.Error("not converged")
	}
}

func TestRank_IncludesOffset(t *testing.T) {
	r := Evaluate(defaultScenarios(), nil)
	outcomes := r.Outcomes()

	ranking := Rank(outcomes, OffsetFor(outcomes, 6.0))
	if len(ranking.Options) != 4 {
		t.Fatalf("got %d options, want 4", len(ranking.Options))
	}
	for i := 1; i < len(ranking.Options); i++ {
		if ranking.Options[i].TotalCost < ranking.Options[i-1].TotalCost {
			t.Fatalf("options not sorted: %+v", ranking.Options)
		}
	}
	best, ok := ranking.Best()
	if !ok || best.Name != "Brighte" {
		t.Errorf("best = %+v, want Brighte", best)
	}

	var offset Option
	for _, o := range ranking.Options {
		if o.IsOffset {
			offset = o
		}
	}
	if offset.Name != OffsetName || offset.TotalCost != 2250 || offset.EffectiveAPR != 6.0 {
		t.Errorf("offset option = %+v", offset)
	}
}

func TestRank_OffsetWinsAtLowMortgageRate(t *testing.T) {
	outcomes := Evaluate(defaultScenarios()[1:2], nil).Outcomes()
	best, _ := Rank(outcomes, OffsetFor(outcomes, 3.0)).Best()
	if !best.IsOffset {
		t.Errorf("best = %s, want offset", best.Name)
	}
	if _, ok := (Ranking{}).Best(); ok {
		t.Error("empty ranking returned a best option")
	}
	if OffsetFor(nil, 6) != nil {
		t.Error("OffsetFor(nil) should be nil")
	}
}

func TestBuildTables_CacheMatchesDirect(t *testing.T) {
	base := finance.LoanTerms{Principal: 15000, TermYears: 3, WeeklyFee: 2.30, EstablishmentFee: 75}
	direct, err := BuildTables(base, nil)
	if err != nil {
		t.Fatal(err)
	}
	cached, err := BuildTables(base, store.NewMemoryCache())
	if err != nil {
		t.Fatal(err)
	}
	if len(direct.Amounts) != len(cached.Amounts) || len(direct.Terms) != len(cached.Terms) {
		t.Fatal("table sizes differ")
	}
	for i := range direct.Amounts {
		if direct.Amounts[i] != cached.Amounts[i] {
			t.Errorf("amount row %d: %+v vs %+v", i, direct.Amounts[i], cached.Amounts[i])
		}
	}
	for i := range direct.Terms {
		if direct.Terms[i] != cached.Terms[i] {
			t.Errorf("term row %d: %+v vs %+v", i, direct.Terms[i], cached.Terms[i])
		}
	}
}

func TestLoad_ScenarioDirectory(t *testing.T) {
	dir := t.TempDir()
	yamlDoc := strings.Join([]string{
		"principal: 10000",
		"mortgage_rate: 5.5",
		"scenarios:",
		"  - name: A",
		"    term_years: 3",
		"    fee_amount: 2",
		"    fee_frequency: weekly",
	}, "\n")
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(yamlDoc), 0o600); err != nil {
		t.Fatal(err)
	}
	jsonl := `{"name":"B","principal":10000,"term_years":3,"interest_rate":6}` + "\n" + "garbage\n"
	if err := os.WriteFile(filepath.Join(dir, "b.jsonl"), []byte(jsonl), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "c.yaml"), []byte("scenarios: ["), 0o600); err != nil {
		t.Fatal(err)
	}

	res, err := Load(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalFiles != 3 || res.ParsedFiles != 2 || res.FileErrors != 1 {
		t.Errorf("files total=%d parsed=%d errors=%d, want 3/2/1", res.TotalFiles, res.ParsedFiles, res.FileErrors)
	}
	if res.ParseErrors != 1 {
		t.Errorf("ParseErrors = %d, want 1", res.ParseErrors)
	}
	if len(res.Scenarios) != 2 || res.Scenarios[0].Name != "A" || res.Scenarios[1].Name != "B" {
		t.Errorf("scenarios = %+v", res.Scenarios)
	}
	if res.MortgageRate == nil || *res.MortgageRate != 5.5 {
		t.Errorf("MortgageRate = %v, want 5.5", res.MortgageRate)
	}
}
