package finance

// CostSummary is the plain cash-flow view of a flat-fee loan. It does not
// depend on the solver.
type CostSummary struct {
	TotalFees       float64 `json:"total_fees"`
	PeriodicPayment float64 `json:"periodic_payment"` // steady state, excludes the establishment fee
	TotalPeriods    int     `json:"total_periods"`
	TotalRepaid     float64 `json:"total_repaid"`
	FeeSharePercent float64 `json:"fee_share_percent"` // fees as a percentage of principal
}

// Summarize totals the fees and payments implied by t.
func Summarize(t LoanTerms) (CostSummary, error) {
	if err := t.Validate(); err != nil {
		return CostSummary{}, err
	}
	n := t.TotalPeriods()
	fees := t.WeeklyFee*float64(n) + t.EstablishmentFee
	return CostSummary{
		TotalFees:       fees,
		PeriodicPayment: t.PeriodicPrincipal() + t.WeeklyFee,
		TotalPeriods:    n,
		TotalRepaid:     t.Principal + fees,
		FeeSharePercent: fees / t.Principal * 100,
	}, nil
}
