package pipeline

import (
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/feeburn/internal/finance"
)

// ScenarioResult pairs an evaluated outcome with its error, if any.
type ScenarioResult struct {
	Outcome finance.Outcome
	Err     error
	Cached  bool
}

// EvalResult holds the output of a batch evaluation, index-aligned with the
// input scenarios.
type EvalResult struct {
	Results []ScenarioResult
	Solved  int
	Failed  int
}

// Outcomes returns the successful outcomes in input order.
func (r *EvalResult) Outcomes() []finance.Outcome {
	out := make([]finance.Outcome, 0, len(r.Results))
	for _, sr := range r.Results {
		if sr.Err == nil {
			out = append(out, sr.Outcome)
		}
	}
	return out
}

// Evaluate solves every scenario on a bounded worker pool.
func Evaluate(scenarios []finance.Scenario, progressFn ProgressFunc) *EvalResult {
	result := &EvalResult{Results: make([]ScenarioResult, len(scenarios))}
	if len(scenarios) == 0 {
		return result
	}

	idx := make([]int, len(scenarios))
	for i := range idx {
		idx[i] = i
	}
	evaluateInto(scenarios, idx, result.Results, 0, len(scenarios), progressFn)

	for _, sr := range result.Results {
		if sr.Err != nil {
			result.Failed++
		} else {
			result.Solved++
		}
	}
	return result
}

// evaluateInto solves scenarios[i] for each i in todo, writing into out[i].
// Progress is reported offset by done out of total.
func evaluateInto(scenarios []finance.Scenario, todo []int, out []ScenarioResult, done, total int, progressFn ProgressFunc) {
	work := make(chan int, len(todo))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for _, i := range todo {
		work <- i
	}
	close(work)

	numWorkers := workerCount(len(todo))
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for i := range work {
				o, err := finance.Evaluate(scenarios[i])
				out[i] = ScenarioResult{Outcome: o, Err: err}
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n)+done, total)
				}
			}
		}()
	}

	wg.Wait()
}
