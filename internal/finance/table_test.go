package finance

import "testing"

func TestRateByAmount_Defaults(t *testing.T) {
	base := brighteTerms().WithTerm(3)
	rows, err := RateByAmount(base, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != len(DefaultAmounts) {
		t.Fatalf("len = %d, want %d", len(rows), len(DefaultAmounts))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].Result.AnnualizedRatePercent >= rows[i-1].Result.AnnualizedRatePercent {
			t.Errorf("APR at %.0f (%.4f) not below APR at %.0f (%.4f)",
				rows[i].Amount, rows[i].Result.AnnualizedRatePercent,
				rows[i-1].Amount, rows[i-1].Result.AnnualizedRatePercent)
		}
		if rows[i].TotalFees != rows[0].TotalFees {
			t.Errorf("TotalFees varies with amount: %v vs %v", rows[i].TotalFees, rows[0].TotalFees)
		}
	}
	if !approx(rows[0].Result.AnnualizedRatePercent, 9.829, 0.01) {
		t.Errorf("APR at 3000 = %.4f, want ~9.829", rows[0].Result.AnnualizedRatePercent)
	}
	if !approx(rows[0].FeePercent, (2.30*156+75)/3000*100, 1e-9) {
		t.Errorf("FeePercent at 3000 = %.4f", rows[0].FeePercent)
	}
}

func TestRateByTerm_Defaults(t *testing.T) {
	rows, err := RateByTerm(brighteTerms(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != len(DefaultTerms) {
		t.Fatalf("len = %d, want %d", len(rows), len(DefaultTerms))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].Result.AnnualizedRatePercent >= rows[i-1].Result.AnnualizedRatePercent {
			t.Errorf("APR at %v years not below %v years", rows[i].TermYears, rows[i-1].TermYears)
		}
		if rows[i].TotalFees <= rows[i-1].TotalFees {
			t.Errorf("TotalFees at %v years not above %v years", rows[i].TermYears, rows[i-1].TermYears)
		}
	}
	if !approx(rows[4].Result.AnnualizedRatePercent, 1.786, 0.005) {
		t.Errorf("APR at 5 years = %.4f, want ~1.786", rows[4].Result.AnnualizedRatePercent)
	}
	if !approx(rows[0].PeriodicPayment, 15000.0/52+2.30, 1e-9) {
		t.Errorf("PeriodicPayment at 1 year = %.4f", rows[0].PeriodicPayment)
	}
}

func TestRateByAmount_PropagatesInvalidInput(t *testing.T) {
	if _, err := RateByAmount(brighteTerms(), []float64{1000, 0}); err == nil {
		t.Fatal("expected error for zero principal")
	}
}
