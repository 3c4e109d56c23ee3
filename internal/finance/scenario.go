package finance

import (
	"fmt"
	"math"
	"strings"
)

// Frequency is how often a lender collects a repayment.
type Frequency string

const (
	Weekly      Frequency = "weekly"
	Fortnightly Frequency = "fortnightly"
	Monthly     Frequency = "monthly"
	Quarterly   Frequency = "quarterly"
	Annually    Frequency = "annually"
)

// Frequencies lists every supported frequency, shortest period first.
var Frequencies = []Frequency{Weekly, Fortnightly, Monthly, Quarterly, Annually}

// ParseFrequency maps a name to a Frequency. Unknown names fall back to
// Monthly.
func ParseFrequency(s string) Frequency {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if f.PeriodsPerYear() == 0 {
		return Monthly
	}
	return f
}

// PeriodsPerYear returns the number of repayments a year, or 0 if f is not a
// known frequency.
func (f Frequency) PeriodsPerYear() int {
	switch f {
	case Weekly:
		return 52
	case Fortnightly:
		return 26
	case Monthly:
		return 12
	case Quarterly:
		return 4
	case Annually:
		return 1
	}
	return 0
}

// FrequencyFor returns the Frequency with periodsPerYear repayments a year.
func FrequencyFor(periodsPerYear int) (Frequency, bool) {
	for _, f := range Frequencies {
		if f.PeriodsPerYear() == periodsPerYear {
			return f, true
		}
	}
	return "", false
}

// Label is the singular period name ("Week", "Month").
func (f Frequency) Label() string {
	switch f {
	case Weekly:
		return "Week"
	case Fortnightly:
		return "Fortnight"
	case Monthly:
		return "Month"
	case Quarterly:
		return "Quarter"
	case Annually:
		return "Year"
	}
	return "Period"
}

// Scenario is one lender's offer for the same purchase.
type Scenario struct {
	Name             string    `json:"name" yaml:"name"`
	Principal        float64   `json:"principal" yaml:"principal"`
	TermYears        float64   `json:"term_years" yaml:"term_years"`
	InterestRate     float64   `json:"interest_rate" yaml:"interest_rate"` // nominal annual %
	FeeAmount        float64   `json:"fee_amount" yaml:"fee_amount"`
	FeeFrequency     Frequency `json:"fee_frequency" yaml:"fee_frequency"`
	EstablishmentFee float64   `json:"establishment_fee" yaml:"establishment_fee"`
}

// Outcome is the evaluated cost of a Scenario.
type Outcome struct {
	Scenario         Scenario `json:"scenario"`
	EffectiveAPR     float64  `json:"effective_apr"`
	PaymentPerPeriod float64  `json:"payment_per_period"`
	TotalPayments    int      `json:"total_payments"`
	TotalInterest    float64  `json:"total_interest"`
	TotalFees        float64  `json:"total_fees"`
	TotalCost        float64  `json:"total_cost"` // interest + fees
	TotalRepaid      float64  `json:"total_repaid"`
	Converged        bool     `json:"converged"`
	Iterations       int      `json:"iterations"`
}

func (s Scenario) frequency() Frequency {
	return ParseFrequency(string(s.FeeFrequency))
}

// Validate reports an ErrInvalidInput-wrapped error for unusable offers.
func (s Scenario) Validate() error {
	if !(s.Principal > 0) || math.IsInf(s.Principal, 0) {
		return fmt.Errorf("%w: %s: principal must be positive, got %v", ErrInvalidInput, s.Name, s.Principal)
	}
	if !(s.TermYears > 0) || math.IsInf(s.TermYears, 0) {
		return fmt.Errorf("%w: %s: term must be positive, got %v years", ErrInvalidInput, s.Name, s.TermYears)
	}
	if !(s.InterestRate >= 0) || math.IsInf(s.InterestRate, 0) {
		return fmt.Errorf("%w: %s: interest rate must not be negative, got %v", ErrInvalidInput, s.Name, s.InterestRate)
	}
	if !(s.FeeAmount >= 0) || math.IsInf(s.FeeAmount, 0) {
		return fmt.Errorf("%w: %s: fee must not be negative, got %v", ErrInvalidInput, s.Name, s.FeeAmount)
	}
	if !(s.EstablishmentFee >= 0) || math.IsInf(s.EstablishmentFee, 0) {
		return fmt.Errorf("%w: %s: establishment fee must not be negative, got %v", ErrInvalidInput, s.Name, s.EstablishmentFee)
	}
	n := periodCount(s.TermYears, s.frequency().PeriodsPerYear())
	if n < 1 {
		return fmt.Errorf("%w: %s: %v years is shorter than one %s",
			ErrInvalidInput, s.Name, s.TermYears, strings.ToLower(s.frequency().Label()))
	}
	if n > MaxPeriods {
		return fmt.Errorf("%w: %s: %v years exceeds %d repayments", ErrInvalidInput, s.Name, s.TermYears, MaxPeriods)
	}
	return nil
}

// AnnuityPayment is the level payment that amortizes principal over n
// periods at periodic rate r.
func AnnuityPayment(principal, r float64, n int) float64 {
	if r == 0 {
		return principal / float64(n)
	}
	g := math.Pow(1+r, float64(n))
	return principal * r * g / (g - 1)
}

// Evaluate computes the repayment, total cost and effective APR of s.
//
// Fee-only offers repay principal straight-line plus the fee. Interest-bearing
// offers use the annuity payment, plus the fee when both apply. An offer with
// no interest, no periodic fee and no establishment fee costs nothing and is
// reported at 0% without solving.
func Evaluate(s Scenario) (Outcome, error) {
	if err := s.Validate(); err != nil {
		return Outcome{}, err
	}
	freq := s.frequency()
	s.FeeFrequency = freq
	ppy := freq.PeriodsPerYear()
	n := periodCount(s.TermYears, ppy)

	var base, interest float64
	if s.InterestRate > 0 {
		base = AnnuityPayment(s.Principal, s.InterestRate/100/float64(ppy), n)
		interest = base*float64(n) - s.Principal
	} else {
		base = s.Principal / float64(n)
	}
	payment := base + s.FeeAmount
	fees := s.FeeAmount*float64(n) + s.EstablishmentFee

	out := Outcome{
		Scenario:         s,
		PaymentPerPeriod: payment,
		TotalPayments:    n,
		TotalInterest:    interest,
		TotalFees:        fees,
		TotalCost:        interest + fees,
		TotalRepaid:      s.Principal + interest + fees,
	}

	if s.InterestRate == 0 && s.FeeAmount == 0 && s.EstablishmentFee == 0 {
		out.Converged = true
		return out, nil
	}

	payments := make([]float64, n)
	for i := range payments {
		payments[i] = payment
	}
	payments[0] += s.EstablishmentFee

	res, err := SolveSchedule(s.Principal, payments, ppy)
	if err != nil {
		return out, fmt.Errorf("solving %s: %w", s.Name, err)
	}
	out.EffectiveAPR = res.AnnualizedRatePercent
	out.Converged = res.Converged
	out.Iterations = res.Iterations
	return out, nil
}

// FlatFeeScenario expresses flat-fee loan terms as a lender scenario. Period
// counts with no matching Frequency are treated as weekly.
func FlatFeeScenario(name string, t LoanTerms) Scenario {
	freq, ok := FrequencyFor(t.periods())
	if !ok {
		freq = Weekly
	}
	return Scenario{
		Name:             name,
		Principal:        t.Principal,
		TermYears:        t.TermYears,
		FeeAmount:        t.WeeklyFee,
		FeeFrequency:     freq,
		EstablishmentFee: t.EstablishmentFee,
	}
}
