// Package finance computes the true cost of flat-fee installment loans.
//
// The repayment schedule uses straight-line principal amortization: every
// period repays principal/periods plus the flat fee, and the establishment
// fee is added to the first repayment. This is deliberately different from
// the equal-total-payment (annuity) tables most loan calculators print, so
// rates will not match those calculators for the same inputs.
package finance

import (
	"fmt"
	"math"
)

// DefaultPeriodsPerYear is the weekly repayment convention.
const DefaultPeriodsPerYear = 52

const (
	// MaxPeriodsPerYear is daily repayment.
	MaxPeriodsPerYear = 365
	// MaxPeriods caps a schedule at 100 years of daily repayments.
	MaxPeriods = 100 * MaxPeriodsPerYear
)

// LoanTerms describes a flat-fee installment loan.
type LoanTerms struct {
	Principal        float64 `json:"principal"`
	TermYears        float64 `json:"term_years"`
	WeeklyFee        float64 `json:"weekly_fee"` // flat fee charged every period
	EstablishmentFee float64 `json:"establishment_fee"`
	PeriodsPerYear   int     `json:"periods_per_year,omitempty"` // 0 means DefaultPeriodsPerYear
}

// periods returns PeriodsPerYear with the default applied.
func (t LoanTerms) periods() int {
	if t.PeriodsPerYear == 0 {
		return DefaultPeriodsPerYear
	}
	return t.PeriodsPerYear
}

// Validate reports an ErrInvalidInput-wrapped error when the terms cannot
// produce a repayment schedule.
func (t LoanTerms) Validate() error {
	if !(t.Principal > 0) || math.IsInf(t.Principal, 0) {
		return fmt.Errorf("%w: principal must be positive, got %v", ErrInvalidInput, t.Principal)
	}
	if !(t.TermYears > 0) || math.IsInf(t.TermYears, 0) {
		return fmt.Errorf("%w: term must be positive, got %v years", ErrInvalidInput, t.TermYears)
	}
	if t.PeriodsPerYear < 0 || t.PeriodsPerYear > MaxPeriodsPerYear {
		return fmt.Errorf("%w: periods per year must be between 1 and %d, got %d", ErrInvalidInput, MaxPeriodsPerYear, t.PeriodsPerYear)
	}
	if !(t.WeeklyFee >= 0) || math.IsInf(t.WeeklyFee, 0) {
		return fmt.Errorf("%w: periodic fee must not be negative, got %v", ErrInvalidInput, t.WeeklyFee)
	}
	if !(t.EstablishmentFee >= 0) || math.IsInf(t.EstablishmentFee, 0) {
		return fmt.Errorf("%w: establishment fee must not be negative, got %v", ErrInvalidInput, t.EstablishmentFee)
	}
	if n := periodCount(t.TermYears, t.periods()); n < 1 {
		return fmt.Errorf("%w: %v years at %d periods/year rounds to %d periods",
			ErrInvalidInput, t.TermYears, t.periods(), n)
	} else if n > MaxPeriods {
		return fmt.Errorf("%w: %v years at %d periods/year exceeds %d periods",
			ErrInvalidInput, t.TermYears, t.periods(), MaxPeriods)
	}
	return nil
}

// TotalPeriods is the number of repayments. A term that does not land on a
// whole period count is rounded to the nearest period (half away from zero),
// which shortens or lengthens the schedule by at most half a period.
func (t LoanTerms) TotalPeriods() int {
	return periodCount(t.TermYears, t.periods())
}

// PeriodicPrincipal is the straight-line principal slice repaid each period.
func (t LoanTerms) PeriodicPrincipal() float64 {
	n := t.TotalPeriods()
	if n < 1 {
		return 0
	}
	return t.Principal / float64(n)
}

// Schedule returns the repayment amounts for periods 1..n.
func (t LoanTerms) Schedule() ([]float64, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	n := t.TotalPeriods()
	payment := t.PeriodicPrincipal() + t.WeeklyFee

	payments := make([]float64, n)
	for i := range payments {
		payments[i] = payment
	}
	payments[0] += t.EstablishmentFee
	return payments, nil
}

// WithPrincipal returns a copy of t with a different principal.
func (t LoanTerms) WithPrincipal(p float64) LoanTerms {
	t.Principal = p
	return t
}

// WithTerm returns a copy of t with a different term.
func (t LoanTerms) WithTerm(years float64) LoanTerms {
	t.TermYears = years
	return t
}

// periodCount rounds years*perYear to a whole count. Counts above MaxPeriods,
// including infinities and NaN, come back as MaxPeriods+1.
func periodCount(years float64, perYear int) int {
	n := math.Round(years * float64(perYear))
	if n < 0 {
		return 0
	}
	if !(n <= MaxPeriods) {
		return MaxPeriods + 1
	}
	return int(n)
}
