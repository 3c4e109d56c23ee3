// Package source discovers and parses lender scenario files (YAML and JSONL).
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/theirongolddev/feeburn/internal/finance"

	"gopkg.in/yaml.v3"
)

// ParseFile reads a scenario file. Malformed JSONL lines are counted in
// ParseErrors and skipped; a malformed YAML document fails the whole file.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{File: df, Err: err}
	}
	defer func() { _ = f.Close() }()

	var res ParseResult
	switch df.Format {
	case FormatYAML:
		res = parseYAML(f)
	case FormatJSONL:
		res = parseJSONL(f)
	default:
		res = ParseResult{Err: fmt.Errorf("unknown scenario format %q", df.Format)}
	}
	res.File = df

	for i := range res.Scenarios {
		s := &res.Scenarios[i]
		if s.Name == "" {
			s.Name = fmt.Sprintf("%s #%d", df.Name, i+1)
		}
		s.FeeFrequency = finance.ParseFrequency(string(s.FeeFrequency))
	}
	return res
}

func parseYAML(r io.Reader) ParseResult {
	var doc ScenarioFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return ParseResult{}
		}
		return ParseResult{Err: fmt.Errorf("parsing yaml: %w", err)}
	}

	for i := range doc.Scenarios {
		if doc.Scenarios[i].Principal == 0 {
			doc.Scenarios[i].Principal = doc.Principal
		}
	}
	return ParseResult{Scenarios: doc.Scenarios, MortgageRate: doc.MortgageRate}
}

func parseJSONL(r io.Reader) ParseResult {
	var res ParseResult

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		var s finance.Scenario
		if err := json.Unmarshal(line, &s); err != nil {
			res.ParseErrors++
			continue
		}
		res.Scenarios = append(res.Scenarios, s)
	}
	if err := scanner.Err(); err != nil {
		res.Err = fmt.Errorf("reading jsonl: %w", err)
	}
	return res
}
