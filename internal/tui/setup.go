package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/feeburn/internal/config"
	"github.com/theirongolddev/feeburn/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the first-run answers as text, bound to the form fields.
type SetupValues struct {
	Principal        string
	TermYears        string
	WeeklyFee        string
	EstablishmentFee string
	MortgageRate     string
	Theme            string
}

// SetupValuesFrom seeds the form from an existing config.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		Principal:        formatInput(cfg.Fees.Principal),
		TermYears:        formatInput(cfg.Fees.TermYears),
		WeeklyFee:        formatInput(cfg.Fees.WeeklyFee),
		EstablishmentFee: formatInput(cfg.Fees.EstablishmentFee),
		MortgageRate:     formatInput(cfg.Offset.MortgageRate),
		Theme:            cfg.Appearance.Theme,
	}
}

func formatInput(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(strings.NewReplacer("$", "", ",", "").Replace(s))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return v, nil
}

func validatePositive(s string) error {
	v, err := parseAmount(s)
	if err != nil {
		return err
	}
	if v <= 0 {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}

func validateNonNegative(s string) error {
	v, err := parseAmount(s)
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("cannot be negative")
	}
	return nil
}

// NewSetupForm builds the first-run wizard bound to vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, th := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(th.Name, th.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to feeburn").
				Description("Work out what a flat weekly fee really costs as an annual rate.\nThese defaults can be changed later with `feeburn setup` or the Settings tab."),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Purchase amount").
				Description("The principal you would finance.").
				Value(&vals.Principal).
				Validate(validatePositive),
			huh.NewInput().
				Title("Term (years)").
				Value(&vals.TermYears).
				Validate(validatePositive),
			huh.NewInput().
				Title("Weekly account fee").
				Value(&vals.WeeklyFee).
				Validate(validateNonNegative),
			huh.NewInput().
				Title("Establishment fee").
				Value(&vals.EstablishmentFee).
				Validate(validateNonNegative),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Mortgage rate (%)").
				Description("Used to price drawing the money from an offset account instead.").
				Value(&vals.MortgageRate).
				Validate(validateNonNegative),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
		),
	).WithTheme(huh.ThemeCharm())
}

// Apply writes the answers into cfg. Unparseable values leave the existing
// setting in place.
func (v SetupValues) Apply(cfg *config.Config) {
	if p, err := parseAmount(v.Principal); err == nil && p > 0 {
		cfg.Fees.Principal = p
	}
	if y, err := parseAmount(v.TermYears); err == nil && y > 0 {
		cfg.Fees.TermYears = y
	}
	if f, err := parseAmount(v.WeeklyFee); err == nil && f >= 0 {
		cfg.Fees.WeeklyFee = f
	}
	if f, err := parseAmount(v.EstablishmentFee); err == nil && f >= 0 {
		cfg.Fees.EstablishmentFee = f
	}
	if r, err := parseAmount(v.MortgageRate); err == nil && r >= 0 {
		cfg.Offset.MortgageRate = r
	}
	if theme.Valid(v.Theme) {
		cfg.Appearance.Theme = v.Theme
	}
}

func (a *App) saveSetupConfig() error {
	cfg := loadConfigOrDefault()
	a.setupVals.Apply(&cfg)
	theme.SetActive(cfg.Appearance.Theme)
	a.cfg = cfg
	a.in = inputsFromConfig(cfg)
	return config.Save(cfg)
}
