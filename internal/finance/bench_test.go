package finance

import "testing"

func BenchmarkSolve(b *testing.B) {
	lt := brighteTerms()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Solve(lt); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSolveLongTerm(b *testing.B) {
	lt := LoanTerms{Principal: 500, TermYears: 15, WeeklyFee: 10, EstablishmentFee: 250}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Solve(lt); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRateByAmount(b *testing.B) {
	lt := brighteTerms()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := RateByAmount(lt, nil); err != nil {
			b.Fatal(err)
		}
	}
}
