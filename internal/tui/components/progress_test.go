package components

import (
	"strings"
	"testing"

	"github.com/theirongolddev/feeburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func TestSliderFraction(t *testing.T) {
	tests := []struct {
		name string
		s    Slider
		want float64
	}{
		{"min", Slider{Value: 1000, Min: 1000, Max: 55000}, 0},
		{"max", Slider{Value: 55000, Min: 1000, Max: 55000}, 1},
		{"middle", Slider{Value: 6.5, Min: 3, Max: 10}, 0.5},
		{"below", Slider{Value: 0, Min: 1, Max: 10}, 0},
		{"above", Slider{Value: 20, Min: 1, Max: 10}, 1},
		{"empty range", Slider{Value: 5, Min: 5, Max: 5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Fraction(); got != tt.want {
				t.Errorf("Fraction() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRenderSliderContainsLabelAndValue(t *testing.T) {
	theme.SetActive("flexoki-dark")

	row := RenderSlider(Slider{
		Label: "Principal", Value: 15000, Min: 1000, Max: 55000,
		Text: "$15,000.00", Keys: "-/+",
	}, 12, 20)

	if !strings.Contains(row, "Principal") || !strings.Contains(row, "$15,000.00") || !strings.Contains(row, "[-/+]") {
		t.Errorf("slider row missing parts: %q", row)
	}
}

func TestRateBarWidth(t *testing.T) {
	theme.SetActive("flexoki-dark")

	for _, pct := range []float64{0, 5, 10, 50} {
		if w := lipgloss.Width(RateBar(pct, 10, 24)); w != 24 {
			t.Errorf("RateBar(%v) width = %d, want 24", pct, w)
		}
	}
}
