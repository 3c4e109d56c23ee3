package finance

// DefaultAmounts are the principals tabulated by RateByAmount.
var DefaultAmounts = []float64{3000, 5000, 8000, 10000, 12000, 15000, 20000, 25000, 30000}

// DefaultTerms are the terms (years) tabulated by RateByTerm.
var DefaultTerms = []float64{1, 2, 3, 4, 5, 7, 10}

// AmountRow is one row of a rate-by-amount table.
type AmountRow struct {
	Amount     float64 `json:"amount"`
	Result     Result  `json:"result"`
	TotalFees  float64 `json:"total_fees"`
	FeePercent float64 `json:"fee_percent"`
}

// TermRow is one row of a rate-by-term table.
type TermRow struct {
	TermYears       float64 `json:"term_years"`
	Result          Result  `json:"result"`
	TotalFees       float64 `json:"total_fees"`
	PeriodicPayment float64 `json:"periodic_payment"`
}

// RateByAmount solves base at each principal, keeping its term and fees.
// A nil amounts slice uses DefaultAmounts.
func RateByAmount(base LoanTerms, amounts []float64) ([]AmountRow, error) {
	if amounts == nil {
		amounts = DefaultAmounts
	}
	rows := make([]AmountRow, 0, len(amounts))
	for _, amt := range amounts {
		t := base.WithPrincipal(amt)
		res, err := Solve(t)
		if err != nil {
			return nil, err
		}
		sum, err := Summarize(t)
		if err != nil {
			return nil, err
		}
		rows = append(rows, AmountRow{
			Amount:     amt,
			Result:     res,
			TotalFees:  sum.TotalFees,
			FeePercent: sum.FeeSharePercent,
		})
	}
	return rows, nil
}

// RateByTerm solves base at each term, keeping its principal and fees.
// A nil years slice uses DefaultTerms.
func RateByTerm(base LoanTerms, years []float64) ([]TermRow, error) {
	if years == nil {
		years = DefaultTerms
	}
	rows := make([]TermRow, 0, len(years))
	for _, y := range years {
		t := base.WithTerm(y)
		res, err := Solve(t)
		if err != nil {
			return nil, err
		}
		sum, err := Summarize(t)
		if err != nil {
			return nil, err
		}
		rows = append(rows, TermRow{
			TermYears:       y,
			Result:          res,
			TotalFees:       sum.TotalFees,
			PeriodicPayment: sum.PeriodicPayment,
		})
	}
	return rows, nil
}
