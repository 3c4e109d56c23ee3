// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency formats a dollar amount rounded to cents with comma
// separators. e.g., 15673 -> "$15,673.00", -12.345 -> "-$12.35"
func FormatCurrency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	s := d.StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return sign + "$" + s
	}
	return sign + "$" + FormatNumber(n) + "." + frac
}

// FormatCost formats a dollar amount compactly for tables.
func FormatCost(cost float64) string {
	if cost >= 1000 {
		return "$" + FormatNumber(decimal.NewFromFloat(cost).Round(0).IntPart())
	}
	return FormatCurrency(cost)
}

// FormatCompact formats an amount with a K/M suffix.
// e.g., 15000 -> "$15K", 2500000 -> "$2.5M"
func FormatCompact(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("$%sM", trimZero(fmt.Sprintf("%.1f", v/1_000_000)))
	case abs >= 1_000:
		return fmt.Sprintf("$%sK", trimZero(fmt.Sprintf("%.1f", v/1_000)))
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatRate formats an annual percentage rate to two decimals.
func FormatRate(pct float64) string {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return "n/a"
	}
	return decimal.NewFromFloat(pct).Round(2).StringFixed(2) + "%"
}

// FormatPercent formats a value already expressed in percent to one decimal.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatDelta formats a cost delta with sign.
func FormatDelta(current, previous float64) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + FormatCurrency(delta)
	}
	return "-" + FormatCurrency(-delta)
}

// FormatYears formats a loan term. e.g., 1 -> "1 yr", 2.5 -> "2.5 yrs"
func FormatYears(years float64) string {
	s := strconv.FormatFloat(years, 'f', -1, 64)
	if years == 1 {
		return s + " yr"
	}
	return s + " yrs"
}
