package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/feeburn/internal/config"
	"github.com/theirongolddev/feeburn/internal/finance"
	"github.com/theirongolddev/feeburn/internal/store"
)

// CachedEvalResult extends EvalResult with cache metadata.
type CachedEvalResult struct {
	EvalResult
	CacheHits   int
	CacheErrors int
}

// EvaluateWithCache answers scenarios from cache where possible, solves the
// rest on the worker pool and stores the new outcomes.
func EvaluateWithCache(scenarios []finance.Scenario, cache store.ResultCache, progressFn ProgressFunc) (*CachedEvalResult, error) {
	result := &CachedEvalResult{
		EvalResult: EvalResult{Results: make([]ScenarioResult, len(scenarios))},
	}
	if len(scenarios) == 0 {
		return result, nil
	}

	keys := make([]string, len(scenarios))
	var toSolve []int
	for i, s := range scenarios {
		key, err := store.ScenarioKey(s)
		if err != nil {
			return nil, err
		}
		keys[i] = key

		e, ok, err := cache.Get(key)
		if err != nil {
			result.CacheErrors++
		}
		if ok && e.Kind == store.KindScenario {
			o := e.Outcome
			o.Scenario.Name = s.Name
			result.Results[i] = ScenarioResult{Outcome: o, Cached: true}
			result.CacheHits++
			continue
		}
		toSolve = append(toSolve, i)
	}

	if progressFn != nil && result.CacheHits > 0 {
		progressFn(result.CacheHits, len(scenarios))
	}

	if len(toSolve) > 0 {
		evaluateInto(scenarios, toSolve, result.Results, result.CacheHits, len(scenarios), progressFn)

		for _, i := range toSolve {
			sr := result.Results[i]
			if sr.Err != nil {
				continue
			}
			if err := cache.Put(keys[i], store.Entry{Kind: store.KindScenario, Outcome: sr.Outcome}); err != nil {
				result.CacheErrors++
			}
		}
	}

	for _, sr := range result.Results {
		if sr.Err != nil {
			result.Failed++
		} else if !sr.Cached {
			result.Solved++
		}
	}
	return result, nil
}

// Calculation is a solved flat-fee loan with its cost summary.
type Calculation struct {
	Terms   finance.LoanTerms   `json:"terms"`
	Result  finance.Result      `json:"result"`
	Summary finance.CostSummary `json:"summary"`
	Cached  bool                `json:"cached"`
}

// SolveTerms solves t, consulting cache first when it is non-nil. Cache
// failures degrade to a direct solve.
func SolveTerms(t finance.LoanTerms, cache store.ResultCache) (Calculation, error) {
	var key string
	if cache != nil {
		k, err := store.TermsKey(t)
		if err == nil {
			key = k
			if e, ok, err := cache.Get(key); err == nil && ok && e.Kind == store.KindTerms {
				return Calculation{Terms: t, Result: e.Result, Summary: e.Summary, Cached: true}, nil
			}
		}
	}

	res, err := finance.Solve(t)
	if err != nil {
		return Calculation{}, err
	}
	sum, err := finance.Summarize(t)
	if err != nil {
		return Calculation{}, err
	}

	if key != "" {
		_ = cache.Put(key, store.Entry{Kind: store.KindTerms, Result: res, Summary: sum})
	}
	return Calculation{Terms: t, Result: res, Summary: sum}, nil
}

// CachePath returns the full path to the results database.
func CachePath() string {
	return store.DefaultPath(config.CacheDir())
}

// Cache backends reported by OpenCache.
const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// OpenCache opens the configured result cache: Redis when an address is
// configured, otherwise SQLite. A disabled cache, or one that cannot be
// opened, yields an in-memory cache; the open error is returned alongside it
// so callers can warn.
func OpenCache(ctx context.Context, cfg config.Config, disabled bool) (store.ResultCache, string, error) {
	if disabled || cfg.Cache.Disabled {
		return store.NewMemoryCache(), BackendMemory, nil
	}

	if addr := config.GetRedisAddr(cfg); addr != "" {
		ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour
		rc, err := store.NewRedisCache(ctx, addr, ttl)
		if err == nil {
			return rc, BackendRedis, nil
		}
		sc, serr := store.Open(CachePath())
		if serr != nil {
			return store.NewMemoryCache(), BackendMemory, fmt.Errorf("%w; sqlite: %v", err, serr)
		}
		return sc, BackendSQLite, err
	}

	sc, err := store.Open(CachePath())
	if err != nil {
		return store.NewMemoryCache(), BackendMemory, err
	}
	return sc, BackendSQLite, nil
}
