package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/feeburn/internal/finance"

	"github.com/mitchellh/hashstructure/v2"
)

// Entry kinds.
const (
	KindTerms    = "terms"
	KindScenario = "scenario"
)

// ErrClosed is returned by operations on a closed cache.
var ErrClosed = errors.New("cache closed")

// Entry is a memoized solver result. Terms entries carry Result and Summary;
// scenario entries carry Outcome.
type Entry struct {
	Kind      string              `json:"kind"`
	Result    finance.Result      `json:"result"`
	Summary   finance.CostSummary `json:"summary"`
	Outcome   finance.Outcome     `json:"outcome"`
	CreatedAt time.Time           `json:"created_at"`
}

// ResultCache memoizes solver results by input tuple.
type ResultCache interface {
	Get(key string) (Entry, bool, error)
	Put(key string, e Entry) error
	Close() error
}

// Stats summarizes cache contents.
type Stats struct {
	Entries   int
	Terms     int
	Scenarios int
	Hits      int64
	Oldest    time.Time
	Newest    time.Time
}

type keyTuple struct {
	Kind             string
	Principal        float64
	TermYears        float64
	InterestRate     float64
	FeeAmount        float64
	FeeFrequency     string
	PeriodsPerYear   int
	EstablishmentFee float64
}

func hashKey(k keyTuple) (string, error) {
	h, err := hashstructure.Hash(k, hashstructure.FormatV2, nil)
	if err != nil {
		return "", fmt.Errorf("hashing cache key: %w", err)
	}
	return fmt.Sprintf("%s:%016x", k.Kind, h), nil
}

// TermsKey returns the cache key for a flat-fee solve.
func TermsKey(t finance.LoanTerms) (string, error) {
	ppy := t.PeriodsPerYear
	if ppy == 0 {
		ppy = finance.DefaultPeriodsPerYear
	}
	return hashKey(keyTuple{
		Kind:             KindTerms,
		Principal:        t.Principal,
		TermYears:        t.TermYears,
		FeeAmount:        t.WeeklyFee,
		PeriodsPerYear:   ppy,
		EstablishmentFee: t.EstablishmentFee,
	})
}

// ScenarioKey returns the cache key for a scenario evaluation. The scenario
// name is not part of the key.
func ScenarioKey(s finance.Scenario) (string, error) {
	freq := finance.ParseFrequency(string(s.FeeFrequency))
	return hashKey(keyTuple{
		Kind:             KindScenario,
		Principal:        s.Principal,
		TermYears:        s.TermYears,
		InterestRate:     s.InterestRate,
		FeeAmount:        s.FeeAmount,
		FeeFrequency:     string(freq),
		PeriodsPerYear:   freq.PeriodsPerYear(),
		EstablishmentFee: s.EstablishmentFee,
	})
}
