package pipeline

import (
	"fmt"
	"testing"

	"github.com/theirongolddev/feeburn/internal/finance"
	"github.com/theirongolddev/feeburn/internal/store"
)

func benchScenarios(n int) []finance.Scenario {
	out := make([]finance.Scenario, n)
	for i := range out {
		out[i] = finance.Scenario{
			Name:             fmt.Sprintf("s%d", i),
			Principal:        float64(1000 + 500*i),
			TermYears:        float64(1 + i%10),
			InterestRate:     float64(i%3) * 2.5,
			FeeAmount:        2.30,
			FeeFrequency:     finance.Frequencies[i%len(finance.Frequencies)],
			EstablishmentFee: 75,
		}
	}
	return out
}

func BenchmarkEvaluate(b *testing.B) {
	scenarios := benchScenarios(200)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := Evaluate(scenarios, nil)
		if r.Failed > 0 {
			b.Fatalf("%d scenarios failed", r.Failed)
		}
	}
}

func BenchmarkEvaluateWithCacheWarm(b *testing.B) {
	scenarios := benchScenarios(200)
	cache := store.NewMemoryCache()
	if _, err := EvaluateWithCache(scenarios, cache, nil); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := EvaluateWithCache(scenarios, cache, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBuildTables(b *testing.B) {
	base := finance.LoanTerms{Principal: 15000, TermYears: 5, WeeklyFee: 2.30, EstablishmentFee: 75}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := BuildTables(base, nil); err != nil {
			b.Fatal(err)
		}
	}
}
