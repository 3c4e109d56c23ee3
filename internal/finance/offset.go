package finance

// OffsetCost estimates the extra mortgage interest paid by drawing principal
// from an offset account and paying it back linearly over termYears. The
// average drawn balance is principal/2.
func OffsetCost(principal, termYears, mortgageRatePercent float64) float64 {
	return principal / 2 * (mortgageRatePercent / 100) * termYears
}

// Verdict compares financing against drawing from an offset account.
type Verdict struct {
	FinancingCost    float64 `json:"financing_cost"`
	OffsetCost       float64 `json:"offset_cost"`
	FinancingCheaper bool    `json:"financing_cheaper"`
	Savings          float64 `json:"savings"` // always >= 0, in favor of the cheaper option
}

// Compare builds a Verdict. Ties go to the offset account.
func Compare(financingCost, offsetCost float64) Verdict {
	v := Verdict{
		FinancingCost:    financingCost,
		OffsetCost:       offsetCost,
		FinancingCheaper: financingCost < offsetCost,
	}
	if v.FinancingCheaper {
		v.Savings = offsetCost - financingCost
	} else {
		v.Savings = financingCost - offsetCost
	}
	return v
}
