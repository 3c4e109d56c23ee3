package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/feeburn/internal/cli"
	"github.com/theirongolddev/feeburn/internal/config"
	"github.com/theirongolddev/feeburn/internal/finance"
	"github.com/theirongolddev/feeburn/internal/tui/components"
	"github.com/theirongolddev/feeburn/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldTheme = iota
	settingsFieldPrincipal
	settingsFieldTerm
	settingsFieldWeeklyFee
	settingsFieldEstablishmentFee
	settingsFieldPeriods
	settingsFieldMortgageRate
	settingsFieldCompare
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool
	saveErr error
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 30
	return ti
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	cfg := loadConfigOrDefault()
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(cfg.Appearance.Theme)
	case settingsFieldPrincipal:
		ti.Placeholder = "15000"
		ti.SetValue(formatInput(cfg.Fees.Principal))
	case settingsFieldTerm:
		ti.Placeholder = "5 (years)"
		ti.SetValue(formatInput(cfg.Fees.TermYears))
	case settingsFieldWeeklyFee:
		ti.Placeholder = "2.30"
		ti.SetValue(formatInput(cfg.Fees.WeeklyFee))
	case settingsFieldEstablishmentFee:
		ti.Placeholder = "75"
		ti.SetValue(formatInput(cfg.Fees.EstablishmentFee))
	case settingsFieldPeriods:
		ti.Placeholder = "52 (weekly), 26, 12, 4 or 1"
		ti.SetValue(strconv.Itoa(cfg.General.PeriodsPerYear))
	case settingsFieldMortgageRate:
		ti.Placeholder = "6.0 (percent)"
		ti.SetValue(formatInput(cfg.Offset.MortgageRate))
	case settingsFieldCompare:
		ti.Placeholder = "true or false"
		ti.SetValue(strconv.FormatBool(cfg.Offset.Compare))
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		if a.settings.saved {
			return a, a.recalc()
		}
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave validates the edited value, persists it, and applies it to the
// live inputs. Invalid values set saveErr and leave the config untouched.
func (a *App) settingsSave() {
	cfg := loadConfigOrDefault()
	val := strings.TrimSpace(a.settings.input.Value())

	switch a.settings.cursor {
	case settingsFieldTheme:
		if !theme.Valid(val) {
			a.settings.saveErr = fmt.Errorf("unknown theme %q", val)
			return
		}
		cfg.Appearance.Theme = val
		theme.SetActive(val)
	case settingsFieldPrincipal, settingsFieldTerm:
		v, err := parseAmount(val)
		if err == nil && v <= 0 {
			err = fmt.Errorf("must be greater than zero")
		}
		if err != nil {
			a.settings.saveErr = err
			return
		}
		if a.settings.cursor == settingsFieldPrincipal {
			cfg.Fees.Principal = v
			a.in.terms.Principal = v
		} else {
			cfg.Fees.TermYears = v
			a.in.terms.TermYears = v
		}
	case settingsFieldWeeklyFee, settingsFieldEstablishmentFee:
		v, err := parseAmount(val)
		if err == nil && v < 0 {
			err = fmt.Errorf("cannot be negative")
		}
		if err != nil {
			a.settings.saveErr = err
			return
		}
		if a.settings.cursor == settingsFieldWeeklyFee {
			cfg.Fees.WeeklyFee = v
			a.in.terms.WeeklyFee = v
		} else {
			cfg.Fees.EstablishmentFee = v
			a.in.terms.EstablishmentFee = v
		}
	case settingsFieldPeriods:
		n, err := strconv.Atoi(val)
		if err != nil || n <= 0 || n > finance.MaxPeriodsPerYear {
			a.settings.saveErr = fmt.Errorf("periods per year must be a whole number from 1 to %d", finance.MaxPeriodsPerYear)
			return
		}
		cfg.General.PeriodsPerYear = n
		a.in.terms.PeriodsPerYear = n
	case settingsFieldMortgageRate:
		v, err := parseAmount(val)
		if err == nil && v < 0 {
			err = fmt.Errorf("cannot be negative")
		}
		if err != nil {
			a.settings.saveErr = err
			return
		}
		cfg.Offset.MortgageRate = v
		a.in.mortgageRate = v
	case settingsFieldCompare:
		cfg.Offset.Compare = val == "true" || val == "1" || val == "yes"
	}

	a.cfg = cfg
	a.settings.saveErr = config.Save(cfg)
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := loadConfigOrDefault()

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	periods := strconv.Itoa(cfg.General.PeriodsPerYear)
	if f, ok := finance.FrequencyFor(cfg.General.PeriodsPerYear); ok {
		periods += " (" + string(f) + ")"
	}

	fields := []struct{ label, value string }{
		{"Theme", cfg.Appearance.Theme},
		{"Default Principal", cli.FormatCurrency(cfg.Fees.Principal)},
		{"Default Term", cli.FormatYears(cfg.Fees.TermYears)},
		{"Periodic Fee", cli.FormatCost(cfg.Fees.WeeklyFee)},
		{"Establishment Fee", cli.FormatCurrency(cfg.Fees.EstablishmentFee)},
		{"Payments / Year", periods},
		{"Mortgage Rate", cli.FormatRate(cfg.Offset.MortgageRate)},
		{"Offset Compare", strconv.FormatBool(cfg.Offset.Compare)},
	}

	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-20s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-20s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker + label + value)
			used := lipgloss.Width(marker) + lipgloss.Width(label) + lipgloss.Width(value)
			if pad := components.CardInnerWidth(cw) - used; pad > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-20s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Not saved: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved!"))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	cacheInfo := a.cacheBackend
	if a.cacheErr != nil {
		cacheInfo += " (fallback: " + a.cacheErr.Error() + ")"
	}

	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Config file:   ") + valueStyle.Render(config.ConfigPath()) + "\n")
	infoBody.WriteString(labelStyle.Render("Result cache:  ") + valueStyle.Render(truncStr(cacheInfo, components.CardInnerWidth(cw)-15)) + "\n")
	infoBody.WriteString(labelStyle.Render("Lenders:       ") + valueStyle.Render(strings.Join(config.LenderKeys(cfg), ", ")))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", infoBody.String(), cw))
	return b.String()
}
