package cmd

import (
	"fmt"

	"github.com/theirongolddev/feeburn/internal/tui"
	"github.com/theirongolddev/feeburn/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive rate dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	theme.SetActive(cfg.Appearance.Theme)
	terms, mortgageRate := resolveInputs(cmd, cfg)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(cfg, terms, mortgageRate, flagNoCache)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	final, err := p.Run()
	if fa, ok := final.(tui.App); ok {
		_ = fa.Close()
	}
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
