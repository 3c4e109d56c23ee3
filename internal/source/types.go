package source

import "github.com/theirongolddev/feeburn/internal/finance"

// File formats.
const (
	FormatYAML  = "yaml"
	FormatJSONL = "jsonl"
)

// DiscoveredFile is a scenario file found by ScanPath.
type DiscoveredFile struct {
	Path   string
	Name   string // base name without extension
	Format string
}

// ScenarioFile is the YAML document layout:
//
//	principal: 15000
//	mortgage_rate: 6.0
//	scenarios:
//	  - name: Brighte
//	    term_years: 5
//	    fee_amount: 2.30
//	    fee_frequency: weekly
//	    establishment_fee: 75
//
// A scenario without its own principal borrows the top-level one.
type ScenarioFile struct {
	Principal    float64            `yaml:"principal"`
	MortgageRate *float64           `yaml:"mortgage_rate"`
	Scenarios    []finance.Scenario `yaml:"scenarios"`
}

// ParseResult holds the output of parsing a single scenario file.
type ParseResult struct {
	File         DiscoveredFile
	Scenarios    []finance.Scenario
	MortgageRate *float64
	ParseErrors  int
	Err          error
}
