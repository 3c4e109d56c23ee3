package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/feeburn/internal/finance"
	"github.com/theirongolddev/feeburn/internal/source"
)

// LoadResult holds the scenarios read from scenario files.
type LoadResult struct {
	Scenarios    []finance.Scenario
	MortgageRate *float64 // first mortgage_rate found, if any
	TotalFiles   int
	ParsedFiles  int
	ParseErrors  int
	FileErrors   int
	Errors       []error
}

// ProgressFunc is called during loading and evaluation to report progress.
// current is the number of items processed so far, total is the total count.
type ProgressFunc func(current, total int)

func workerCount(n int) int {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > n {
		numWorkers = n
	}
	return numWorkers
}

// Load discovers and parses all scenario files under path.
// It uses a bounded worker pool for parallel parsing.
func Load(path string, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanPath(path)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}

	result := &LoadResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	work := make(chan int, len(files))
	results := make([]source.ParseResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	numWorkers := workerCount(len(files))
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx])
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(files))
				}
			}
		}()
	}

	wg.Wait()

	// Files are sorted by path, so scenario order is stable.
	for _, pr := range results {
		if pr.Err != nil {
			result.FileErrors++
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", pr.File.Path, pr.Err))
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += pr.ParseErrors
		if result.MortgageRate == nil && pr.MortgageRate != nil {
			result.MortgageRate = pr.MortgageRate
		}
		result.Scenarios = append(result.Scenarios, pr.Scenarios...)
	}

	return result, nil
}
