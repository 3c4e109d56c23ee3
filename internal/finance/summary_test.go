package finance

import (
	"errors"
	"testing"
)

func TestSummarize_ConcreteScenario(t *testing.T) {
	sum, err := Summarize(brighteTerms())
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalPeriods != 260 {
		t.Errorf("TotalPeriods = %d, want 260", sum.TotalPeriods)
	}
	if !approx(sum.TotalFees, 673, 1e-9) {
		t.Errorf("TotalFees = %.4f, want 673", sum.TotalFees)
	}
	if !approx(sum.PeriodicPayment, 15000.0/260+2.30, 1e-9) {
		t.Errorf("PeriodicPayment = %.6f, want %.6f", sum.PeriodicPayment, 15000.0/260+2.30)
	}
	if !approx(sum.TotalRepaid, 15673, 1e-9) {
		t.Errorf("TotalRepaid = %.4f, want 15673", sum.TotalRepaid)
	}
	if !approx(sum.FeeSharePercent, 673.0/15000*100, 1e-9) {
		t.Errorf("FeeSharePercent = %.4f", sum.FeeSharePercent)
	}
}

func TestSummarize_RoundsPeriods(t *testing.T) {
	tests := []struct {
		years float64
		want  int
	}{
		{1, 52},
		{0.5, 26},
		{2.5, 130},
		{1.0 / 52, 1},
		{0.01, 1}, // 0.52 rounds up
	}
	for _, tt := range tests {
		sum, err := Summarize(LoanTerms{Principal: 1000, TermYears: tt.years})
		if err != nil {
			t.Fatalf("%v years: %v", tt.years, err)
		}
		if sum.TotalPeriods != tt.want {
			t.Errorf("%v years: TotalPeriods = %d, want %d", tt.years, sum.TotalPeriods, tt.want)
		}
	}
}

func TestSummarize_InvalidInput(t *testing.T) {
	if _, err := Summarize(LoanTerms{Principal: 1000}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestSchedule_EstablishmentFeeOnFirstPayment(t *testing.T) {
	p, err := LoanTerms{Principal: 520, TermYears: 1, WeeklyFee: 1, EstablishmentFee: 50}.Schedule()
	if err != nil {
		t.Fatal(err)
	}
	if len(p) != 52 {
		t.Fatalf("len = %d, want 52", len(p))
	}
	if p[0] != 61 {
		t.Errorf("first payment = %v, want 61", p[0])
	}
	for i, v := range p[1:] {
		if v != 11 {
			t.Fatalf("payment %d = %v, want 11", i+2, v)
		}
	}
}
