package finance

import (
	"errors"
	"math"
	"testing"
)

func brighteTerms() LoanTerms {
	return LoanTerms{Principal: 15000, TermYears: 5, WeeklyFee: 2.30, EstablishmentFee: 75}
}

func mustSolve(t *testing.T, lt LoanTerms) Result {
	t.Helper()
	res, err := Solve(lt)
	if err != nil {
		t.Fatalf("Solve(%+v): %v", lt, err)
	}
	return res
}

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestSolve_ConcreteScenario(t *testing.T) {
	lt := brighteTerms()
	res := mustSolve(t, lt)

	if !res.Converged {
		t.Fatalf("Converged = false after %d iterations", res.Iterations)
	}
	if res.AnnualizedRatePercent <= 1 || res.AnnualizedRatePercent >= 20 {
		t.Fatalf("APR = %.4f%%, want between 1%% and 20%%", res.AnnualizedRatePercent)
	}
	if !approx(res.AnnualizedRatePercent, 1.786, 0.005) {
		t.Errorf("APR = %.4f%%, want ~1.786%%", res.AnnualizedRatePercent)
	}

	payments, err := lt.Schedule()
	if err != nil {
		t.Fatal(err)
	}
	if got := NPV(lt.Principal, payments, res.PeriodicRate); math.Abs(got) > 1e-6*lt.Principal {
		t.Errorf("NPV at solved rate = %g, want ~0", got)
	}
}

func TestSolve_ZeroFeesIsZeroRate(t *testing.T) {
	for _, years := range []float64{0.5, 1, 5, 10} {
		res := mustSolve(t, LoanTerms{Principal: 15000, TermYears: years})
		if !res.Converged {
			t.Errorf("%v years: did not converge", years)
		}
		if math.Abs(res.AnnualizedRatePercent) >= 1e-6 {
			t.Errorf("%v years: APR = %g, want ~0", years, res.AnnualizedRatePercent)
		}
	}
}

func TestSolve_SinglePeriodClosedForm(t *testing.T) {
	lt := LoanTerms{Principal: 1000, TermYears: 1.0 / 52, WeeklyFee: 5, EstablishmentFee: 10}
	if n := lt.TotalPeriods(); n != 1 {
		t.Fatalf("TotalPeriods = %d, want 1", n)
	}
	res := mustSolve(t, lt)

	want := (1000.0+5+10)/1000 - 1
	if !approx(res.PeriodicRate, want, 1e-9) {
		t.Errorf("PeriodicRate = %.12f, want %.12f", res.PeriodicRate, want)
	}
	if !approx(res.AnnualizedRatePercent, 116.887, 0.001) {
		t.Errorf("APR = %.4f, want ~116.887", res.AnnualizedRatePercent)
	}
}

func TestSolve_MonotoneInWeeklyFee(t *testing.T) {
	prev := math.Inf(-1)
	for fee := 0.0; fee <= 10; fee += 0.5 {
		lt := brighteTerms()
		lt.WeeklyFee = fee
		apr := mustSolve(t, lt).AnnualizedRatePercent
		if fee > 0 && !(apr > prev) {
			t.Fatalf("fee %.2f: APR %.8f did not rise above %.8f", fee, apr, prev)
		}
		prev = apr
	}
}

func TestSolve_MonotoneInEstablishmentFee(t *testing.T) {
	prev := math.Inf(-1)
	for est := 0.0; est <= 1000; est += 50 {
		lt := brighteTerms()
		lt.EstablishmentFee = est
		apr := mustSolve(t, lt).AnnualizedRatePercent
		if est > 0 && !(apr > prev) {
			t.Fatalf("establishment %.0f: APR %.8f did not rise above %.8f", est, apr, prev)
		}
		prev = apr
	}
}

func TestSolve_RateRisesAsPrincipalFalls(t *testing.T) {
	prev := math.Inf(-1)
	for _, p := range []float64{100000, 50000, 30000, 15000, 10000, 5000, 3000, 1000, 500} {
		apr := mustSolve(t, brighteTerms().WithPrincipal(p)).AnnualizedRatePercent
		if !(apr > prev) {
			t.Fatalf("principal %.0f: APR %.8f did not rise above %.8f", p, apr, prev)
		}
		prev = apr
	}
}

func TestSolve_ConvergesAcrossRealisticGrid(t *testing.T) {
	for _, p := range []float64{500, 1000, 3000, 10000, 50000, 100000} {
		for _, years := range []float64{0.5, 1, 2, 5, 10, 15} {
			for _, fee := range []float64{0, 1, 2.3, 5, 10} {
				for _, est := range []float64{0, 75, 250} {
					lt := LoanTerms{Principal: p, TermYears: years, WeeklyFee: fee, EstablishmentFee: est}
					res, err := Solve(lt)
					if err != nil {
						t.Fatalf("%+v: %v", lt, err)
					}
					if !res.Converged {
						t.Errorf("%+v: not converged after %d iterations", lt, res.Iterations)
					}
					if res.Iterations >= 20 {
						t.Errorf("%+v: took %d iterations", lt, res.Iterations)
					}
				}
			}
		}
	}
}

func TestSolve_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		lt   LoanTerms
	}{
		{"zero principal", LoanTerms{Principal: 0, TermYears: 5}},
		{"negative principal", LoanTerms{Principal: -100, TermYears: 5}},
		{"NaN principal", LoanTerms{Principal: math.NaN(), TermYears: 5}},
		{"zero term", LoanTerms{Principal: 1000, TermYears: 0}},
		{"negative term", LoanTerms{Principal: 1000, TermYears: -1}},
		{"rounds to zero periods", LoanTerms{Principal: 1000, TermYears: 0.001}},
		{"negative fee", LoanTerms{Principal: 1000, TermYears: 1, WeeklyFee: -1}},
		{"negative establishment fee", LoanTerms{Principal: 1000, TermYears: 1, EstablishmentFee: -5}},
		{"negative periods", LoanTerms{Principal: 1000, TermYears: 1, PeriodsPerYear: -12}},
		{"huge term", LoanTerms{Principal: 1000, TermYears: 1e17}},
		{"term past period cap", LoanTerms{Principal: 1000, TermYears: 1e8, WeeklyFee: 1}},
		{"infinite term", LoanTerms{Principal: 1000, TermYears: math.Inf(1)}},
		{"huge periods per year", LoanTerms{Principal: 1000, TermYears: 1, PeriodsPerYear: 1 << 62}},
		{"more than daily", LoanTerms{Principal: 1000, TermYears: 1, PeriodsPerYear: MaxPeriodsPerYear + 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Solve(tt.lt)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestSolveSchedule_Degenerate(t *testing.T) {
	// One tiny payment against a large principal drives the first Newton
	// step far below -1.
	_, err := SolveSchedule(1000, []float64{1}, 52)
	if !errors.Is(err, ErrNumericDegeneracy) {
		t.Fatalf("err = %v, want ErrNumericDegeneracy", err)
	}
}

func TestSolveSchedule_RejectsEmptySchedule(t *testing.T) {
	if _, err := SolveSchedule(1000, nil, 52); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestSolver_NotConvergedIsNotAnError(t *testing.T) {
	s := Solver{MaxIterations: 1}
	res, err := s.Solve(brighteTerms())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Converged {
		t.Fatal("Converged = true after a single iteration")
	}
	if res.Iterations != 1 {
		t.Errorf("Iterations = %d, want 1", res.Iterations)
	}
	if math.IsNaN(res.AnnualizedRatePercent) {
		t.Error("APR is NaN")
	}
}

func TestSolve_MonthlyPeriods(t *testing.T) {
	weekly := mustSolve(t, brighteTerms())
	lt := brighteTerms()
	lt.PeriodsPerYear = 12
	monthly := mustSolve(t, lt)
	if !monthly.Converged {
		t.Fatal("monthly solve did not converge")
	}
	// Fewer, larger fee payments over the same term cost less in total.
	if monthly.AnnualizedRatePercent >= weekly.AnnualizedRatePercent {
		t.Errorf("monthly APR %.4f >= weekly APR %.4f", monthly.AnnualizedRatePercent, weekly.AnnualizedRatePercent)
	}
}

func TestAnnualize(t *testing.T) {
	if got := Annualize(0, 52); got != 0 {
		t.Errorf("Annualize(0) = %g", got)
	}
	if got := Annualize(0.01, 12); !approx(got, 12.6825, 0.0001) {
		t.Errorf("Annualize(0.01, 12) = %.4f, want 12.6825", got)
	}
}

func TestSolve_StrictlyMonotoneInSmallFeeSteps(t *testing.T) {
	base := mustSolve(t, brighteTerms()).AnnualizedRatePercent

	lt := brighteTerms()
	lt.EstablishmentFee += 0.01
	if apr := mustSolve(t, lt).AnnualizedRatePercent; !(apr > base) {
		t.Errorf("establishment +$0.01: APR %.8f, want > %.8f", apr, base)
	}

	lt = brighteTerms()
	lt.WeeklyFee += 0.01
	if apr := mustSolve(t, lt).AnnualizedRatePercent; !(apr > base) {
		t.Errorf("fee +$0.01: APR %.8f, want > %.8f", apr, base)
	}
}

func TestPeriodCount_Bounds(t *testing.T) {
	tests := []struct {
		years   float64
		perYear int
		want    int
	}{
		{5, 52, 260},
		{100, MaxPeriodsPerYear, MaxPeriods},
		{1e17, 52, MaxPeriods + 1},
		{1, 1 << 62, MaxPeriods + 1},
		{math.Inf(1), 52, MaxPeriods + 1},
		{math.NaN(), 52, MaxPeriods + 1},
		{-1e30, 52, 0},
	}
	for _, tt := range tests {
		if got := periodCount(tt.years, tt.perYear); got != tt.want {
			t.Errorf("periodCount(%g, %d) = %d, want %d", tt.years, tt.perYear, got, tt.want)
		}
	}
}
