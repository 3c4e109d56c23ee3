package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestRenderTableAlignsWideCells(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Amount", "Share"},
		Rows: [][]string{
			{"$3,000.00", RenderShareBar(25, 8)},
			{"$30,000.00", RenderShareBar(2.5, 8)},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	want := lipgloss.Width(lines[0])
	for i, line := range lines {
		if w := lipgloss.Width(line); w != want {
			t.Errorf("line %d width = %d, want %d", i, w, want)
		}
	}
}

func TestPadCell(t *testing.T) {
	if got := padCell("ab", 4, true); got != "ab  " {
		t.Errorf("left pad = %q", got)
	}
	if got := padCell("ab", 4, false); got != "  ab" {
		t.Errorf("right pad = %q", got)
	}
	if got := padCell("abcdef", 4, false); got != "abcdef" {
		t.Errorf("overflow = %q", got)
	}
}

func TestRenderRateWarnsWhenNotConverged(t *testing.T) {
	if out := RenderRate("APR", 1.79, true); strings.Contains(out, "did not converge") {
		t.Errorf("converged rate should not warn: %q", out)
	}
	out := RenderRate("APR", 1.79, false)
	if !strings.Contains(out, "did not converge") || !strings.Contains(out, "1.79%") {
		t.Errorf("unconverged rate = %q", out)
	}
}

func TestRenderShareBarClamps(t *testing.T) {
	if out := RenderShareBar(250, 10); !strings.Contains(out, strings.Repeat("█", 10)) {
		t.Errorf("over 100%% should fill the bar: %q", out)
	}
	if RenderShareBar(50, 0) != "" {
		t.Error("zero width should render nothing")
	}
}

func TestRenderHorizontalBarScalesToMax(t *testing.T) {
	full := RenderHorizontalBar("a", 10, 10, 20)
	half := RenderHorizontalBar("b", 5, 10, 20)
	if n := strings.Count(full, "█"); n != 20 {
		t.Errorf("full bar = %d blocks, want 20", n)
	}
	if n := strings.Count(half, "█"); n != 10 {
		t.Errorf("half bar = %d blocks, want 10", n)
	}
	if got := RenderHorizontalBar("c", 5, 0, 20); strings.Contains(got, "█") {
		t.Errorf("zero max should draw no bar, got %q", got)
	}
}
