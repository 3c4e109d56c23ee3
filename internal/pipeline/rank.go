package pipeline

import (
	"sort"

	"github.com/theirongolddev/feeburn/internal/finance"
)

// OffsetName is the display name of the mortgage offset pseudo-option.
const OffsetName = "Mortgage Offset"

// Option is one ranked way to fund a purchase.
type Option struct {
	Name         string           `json:"name"`
	TotalCost    float64          `json:"total_cost"`
	EffectiveAPR float64          `json:"effective_apr"`
	IsOffset     bool             `json:"is_offset"`
	Outcome      *finance.Outcome `json:"outcome,omitempty"`
}

// OffsetInput describes drawing the purchase from a mortgage offset account.
type OffsetInput struct {
	Principal    float64
	TermYears    float64
	MortgageRate float64
}

// OffsetFor returns the offset comparison for a set of outcomes: the first
// outcome's principal and term at mortgageRate. It returns nil when there are
// no outcomes.
func OffsetFor(outcomes []finance.Outcome, mortgageRate float64) *OffsetInput {
	if len(outcomes) == 0 {
		return nil
	}
	return &OffsetInput{
		Principal:    outcomes[0].Scenario.Principal,
		TermYears:    outcomes[0].Scenario.TermYears,
		MortgageRate: mortgageRate,
	}
}

// Ranking is the ordered list of options, cheapest first.
type Ranking struct {
	Options []Option `json:"options"`
}

// Best returns the cheapest option, or false for an empty ranking.
func (r Ranking) Best() (Option, bool) {
	if len(r.Options) == 0 {
		return Option{}, false
	}
	return r.Options[0], true
}

// Rank orders outcomes by total cost, adding the offset pseudo-option when
// offset is non-nil. Ties keep input order, with lenders ahead of the offset.
func Rank(outcomes []finance.Outcome, offset *OffsetInput) Ranking {
	opts := make([]Option, 0, len(outcomes)+1)
	for i := range outcomes {
		o := outcomes[i]
		opts = append(opts, Option{
			Name:         o.Scenario.Name,
			TotalCost:    o.TotalCost,
			EffectiveAPR: o.EffectiveAPR,
			Outcome:      &o,
		})
	}
	if offset != nil {
		opts = append(opts, Option{
			Name:         OffsetName,
			TotalCost:    finance.OffsetCost(offset.Principal, offset.TermYears, offset.MortgageRate),
			EffectiveAPR: offset.MortgageRate,
			IsOffset:     true,
		})
	}

	sort.SliceStable(opts, func(i, j int) bool {
		return opts[i].TotalCost < opts[j].TotalCost
	})
	return Ranking{Options: opts}
}
