package pipeline

import (
	"github.com/theirongolddev/feeburn/internal/finance"
	"github.com/theirongolddev/feeburn/internal/store"
)

// Tables holds the rate-by-amount and rate-by-term views of a loan.
type Tables struct {
	Amounts []finance.AmountRow `json:"amounts"`
	Terms   []finance.TermRow   `json:"terms"`
}

// BuildTables tabulates base over the default amounts and terms. Rows are
// answered from cache when it is non-nil.
func BuildTables(base finance.LoanTerms, cache store.ResultCache) (Tables, error) {
	if cache == nil {
		amounts, err := finance.RateByAmount(base, nil)
		if err != nil {
			return Tables{}, err
		}
		terms, err := finance.RateByTerm(base, nil)
		if err != nil {
			return Tables{}, err
		}
		return Tables{Amounts: amounts, Terms: terms}, nil
	}

	var tb Tables
	for _, amt := range finance.DefaultAmounts {
		c, err := SolveTerms(base.WithPrincipal(amt), cache)
		if err != nil {
			return Tables{}, err
		}
		tb.Amounts = append(tb.Amounts, finance.AmountRow{
			Amount:     amt,
			Result:     c.Result,
			TotalFees:  c.Summary.TotalFees,
			FeePercent: c.Summary.FeeSharePercent,
		})
	}
	for _, y := range finance.DefaultTerms {
		c, err := SolveTerms(base.WithTerm(y), cache)
		if err != nil {
			return Tables{}, err
		}
		tb.Terms = append(tb.Terms, finance.TermRow{
			TermYears:       y,
			Result:          c.Result,
			TotalFees:       c.Summary.TotalFees,
			PeriodicPayment: c.Summary.PeriodicPayment,
		})
	}
	return tb, nil
}
