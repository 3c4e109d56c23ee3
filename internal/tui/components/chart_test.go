package components

import (
	"strings"
	"testing"

	"github.com/theirongolddev/feeburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func TestChartTickStep(t *testing.T) {
	tests := []struct {
		max  float64
		want float64
	}{
		{10, 2},
		{50, 10},
		{120, 20},
		{0, 1},
	}
	for _, tt := range tests {
		if got := chartTickStep(tt.max); got != tt.want {
			t.Errorf("chartTickStep(%v) = %v, want %v", tt.max, got, tt.want)
		}
	}
}

func TestFormatChartLabel(t *testing.T) {
	tests := map[float64]string{
		2:    "2",
		0.5:  "0.5",
		12:   "12",
		2000: "2k",
		2500: "2.5k",
	}
	for v, want := range tests {
		if got := formatChartLabel(v); got != want {
			t.Errorf("formatChartLabel(%v) = %q, want %q", v, got, want)
		}
	}
}

func TestBarChartShape(t *testing.T) {
	theme.SetActive("flexoki-dark")

	vals := []float64{9.8, 4.2, 2.9, 2.3, 1.8, 1.4, 1.0}
	labels := []string{"1y", "2y", "3y", "4y", "5y", "7y", "10y"}
	out := BarChart(vals, labels, 60, 10)

	lines := strings.Split(out, "\n")
	if len(lines) < 4 {
		t.Fatalf("chart too short: %d lines", len(lines))
	}
	last := lines[len(lines)-1]
	if !strings.Contains(last, "1y") || !strings.Contains(last, "10y") {
		t.Errorf("label row = %q", last)
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w > 60 {
			t.Errorf("line %d width %d exceeds 60", i, w)
		}
	}
}

func TestBarChartFallsBackToSparkline(t *testing.T) {
	out := BarChart([]float64{1, 2, 3}, nil, 10, 2)
	if strings.Contains(out, "\n") {
		t.Errorf("narrow chart should be a single-line sparkline, got %q", out)
	}
	if BarChart(nil, nil, 80, 10) != "" {
		t.Error("empty values should render nothing")
	}
}
