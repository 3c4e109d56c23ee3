package finance

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidInput marks terms that cannot form a repayment schedule.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNumericDegeneracy marks a Newton step that left the valid domain.
	ErrNumericDegeneracy = errors.New("numeric degeneracy")
)

const (
	// DefaultMaxIterations bounds the Newton iteration.
	DefaultMaxIterations = 200
	// DefaultTolerance is the step size below which the rate is accepted.
	DefaultTolerance = 1e-12

	// seedRate over periodsPerYear is the first Newton guess for the
	// periodic rate.
	seedRate = 0.001
)

// Result is the outcome of an effective-rate solve.
type Result struct {
	PeriodicRate          float64 `json:"periodic_rate"`
	AnnualizedRatePercent float64 `json:"annualized_rate_percent"`
	Iterations            int     `json:"iterations"`
	Converged             bool    `json:"converged"`
}

// Solver finds the periodic rate that discounts a repayment schedule back to
// the principal. The zero value uses the package defaults.
type Solver struct {
	MaxIterations int
	Tolerance     float64
}

// DefaultSolver is the solver used by Solve and SolveSchedule.
var DefaultSolver = Solver{MaxIterations: DefaultMaxIterations, Tolerance: DefaultTolerance}

// Solve computes the effective annual rate of a flat-fee loan.
func Solve(t LoanTerms) (Result, error) {
	return DefaultSolver.Solve(t)
}

// SolveSchedule computes the effective annual rate of an arbitrary schedule
// where payments[i] falls due at the end of period i+1.
func SolveSchedule(principal float64, payments []float64, periodsPerYear int) (Result, error) {
	return DefaultSolver.SolveSchedule(principal, payments, periodsPerYear)
}

// Solve computes the effective annual rate of a flat-fee loan.
func (s Solver) Solve(t LoanTerms) (Result, error) {
	payments, err := t.Schedule()
	if err != nil {
		return Result{}, err
	}
	return s.SolveSchedule(t.Principal, payments, t.periods())
}

// SolveSchedule runs Newton's method on NPV(r) = sum(p_i/(1+r)^i) - principal.
// Running out of iterations is reported through Result.Converged, not as an
// error.
func (s Solver) SolveSchedule(principal float64, payments []float64, periodsPerYear int) (Result, error) {
	if !(principal > 0) || math.IsInf(principal, 0) {
		return Result{}, fmt.Errorf("%w: principal must be positive, got %v", ErrInvalidInput, principal)
	}
	if len(payments) == 0 {
		return Result{}, fmt.Errorf("%w: schedule has no payments", ErrInvalidInput)
	}
	if periodsPerYear <= 0 {
		return Result{}, fmt.Errorf("%w: periods per year must be positive, got %d", ErrInvalidInput, periodsPerYear)
	}
	for i, p := range payments {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return Result{}, fmt.Errorf("%w: payment %d is not finite", ErrInvalidInput, i+1)
		}
	}

	maxIter := s.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	tol := s.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}

	r := seedRate / float64(periodsPerYear)
	res := Result{}
	for iter := 1; iter <= maxIter; iter++ {
		res.Iterations = iter
		if 1+r <= 0 {
			return res, fmt.Errorf("%w: discount base 1+r = %v at iteration %d", ErrNumericDegeneracy, 1+r, iter)
		}
		f, df := npv(principal, payments, r)
		if df == 0 || math.IsNaN(df) || math.IsInf(df, 0) || math.IsNaN(f) || math.IsInf(f, 0) {
			return res, fmt.Errorf("%w: derivative %v at r = %v", ErrNumericDegeneracy, df, r)
		}

		next := r - f/df
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return res, fmt.Errorf("%w: iterate diverged at iteration %d", ErrNumericDegeneracy, iter)
		}
		step := math.Abs(next - r)
		r = next
		if step < tol {
			res.Converged = true
			break
		}
	}

	if 1+r <= 0 {
		return res, fmt.Errorf("%w: final rate %v leaves 1+r non-positive", ErrNumericDegeneracy, r)
	}
	res.PeriodicRate = r
	res.AnnualizedRatePercent = Annualize(r, periodsPerYear)
	if math.IsNaN(res.AnnualizedRatePercent) || math.IsInf(res.AnnualizedRatePercent, 0) {
		return res, fmt.Errorf("%w: annualized rate overflowed for r = %v", ErrNumericDegeneracy, r)
	}
	return res, nil
}

// Annualize compounds a periodic rate to an annual percentage.
func Annualize(periodicRate float64, periodsPerYear int) float64 {
	return (math.Pow(1+periodicRate, float64(periodsPerYear)) - 1) * 100
}

// NPV returns the net present value of the schedule at periodic rate r.
func NPV(principal float64, payments []float64, r float64) float64 {
	f, _ := npv(principal, payments, r)
	return f
}

// npv returns NPV(r) and its derivative in one pass.
func npv(principal float64, payments []float64, r float64) (float64, float64) {
	v := 1 / (1 + r)
	disc := 1.0 // v^i
	var f, d float64
	for i, p := range payments {
		disc *= v
		f += p * disc
		d -= float64(i+1) * p * disc * v
	}
	return f - principal, d
}
