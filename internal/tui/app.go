// Package tui provides the interactive Bubble Tea dashboard for feeburn.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/theirongolddev/feeburn/internal/cli"
	"github.com/theirongolddev/feeburn/internal/config"
	"github.com/theirongolddev/feeburn/internal/finance"
	"github.com/theirongolddev/feeburn/internal/pipeline"
	"github.com/theirongolddev/feeburn/internal/store"
	"github.com/theirongolddev/feeburn/internal/tui/components"
	"github.com/theirongolddev/feeburn/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Slider bounds.
const (
	principalMin  = 1000.0
	principalMax  = 55000.0
	principalStep = 500.0

	termMin  = 1.0
	termMax  = 10.0
	termStep = 1.0

	rateMin  = 3.0
	rateMax  = 10.0
	rateStep = 0.1
)

// Tab indices, matching components.Tabs.
const (
	tabOverview = iota
	tabAmounts
	tabTerms
	tabLenders
	tabSettings
)

// CacheOpenedMsg is sent once the result cache is ready.
type CacheOpenedMsg struct {
	Cache   store.ResultCache
	Backend string
	Err     error
}

// CalculatedMsg is sent when a background calculation finishes.
type CalculatedMsg struct {
	Seq      int
	Snapshot Snapshot
	Err      error
	Elapsed  time.Duration
}

// Snapshot is everything the dashboard shows for one set of inputs.
type Snapshot struct {
	Calculation pipeline.Calculation
	Tables      pipeline.Tables
	Ranking     pipeline.Ranking
	Failed      []string // lender scenarios that could not be solved
}

// inputs are the user-adjustable values a Snapshot is computed from.
type inputs struct {
	terms        finance.LoanTerms
	mortgageRate float64
	showDisabled bool
}

func inputsFromConfig(cfg config.Config) inputs {
	return inputs{
		terms:        cfg.LoanTerms(),
		mortgageRate: cfg.Offset.MortgageRate,
	}
}

// App is the root Bubble Tea model.
type App struct {
	cfg config.Config
	in  inputs

	// Data
	snap     Snapshot
	calcErr  error
	loaded   bool
	loadTime time.Duration
	seq      int

	cache        store.ResultCache
	cacheBackend string
	cacheErr     error

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	lenders  lendersState
	settings settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals SetupValues
	needSetup bool

	spinner spinner.Model
	noCache bool
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 160
	minContentHeight = 5
)

// loadConfigOrDefault loads config, returning defaults on error.
// This ensures the TUI can always start even if config is corrupted.
func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// NewApp creates a new TUI app model. terms and mortgageRate override the
// configured defaults; noCache skips the persistent result cache.
func NewApp(cfg config.Config, terms finance.LoanTerms, mortgageRate float64, noCache bool) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		cfg:       cfg,
		in:        inputs{terms: terms, mortgageRate: mortgageRate},
		needSetup: !config.Exists(),
		spinner:   sp,
		noCache:   noCache,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		openCacheCmd(a.cfg, a.noCache),
		a.spinner.Tick,
	)
}

// Close releases the result cache.
func (a App) Close() error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Close()
}

// recalc bumps the sequence number and schedules a calculation for the
// current inputs. Results for older sequence numbers are discarded.
func (a *App) recalc() tea.Cmd {
	a.seq++
	return calculateCmd(a.seq, a.cfg, a.in, a.cache)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || (a.needSetup && a.setupForm != nil) {
			return a, nil
		}
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case CacheOpenedMsg:
		a.cache = msg.Cache
		a.cacheBackend = msg.Backend
		a.cacheErr = msg.Err
		return a, a.recalc()

	case CalculatedMsg:
		if msg.Seq != a.seq {
			return a, nil
		}
		first := !a.loaded
		a.loaded = true
		a.loadTime = msg.Elapsed
		a.calcErr = msg.Err
		if msg.Err == nil {
			a.snap = msg.Snapshot
			a.lenders.clamp(len(a.snap.Ranking.Options))
		}

		if first && a.needSetup {
			a.setupVals = SetupValuesFrom(a.cfg)
			a.setupForm = NewSetupForm(&a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if !a.loaded {
		return a, nil
	}

	// First-run setup wizard intercepts all keys
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	// Settings text input intercepts all keys while editing
	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch a.activeTab {
	case tabSettings:
		switch key {
		case "j", "down":
			if a.settings.cursor < settingsFieldCount-1 {
				a.settings.cursor++
			}
			return a, nil
		case "k", "up":
			if a.settings.cursor > 0 {
				a.settings.cursor--
			}
			return a, nil
		case "enter":
			return a.settingsStartEdit()
		}
	case tabLenders:
		switch key {
		case "j", "down":
			a.lenders.move(1, len(a.snap.Ranking.Options))
			return a, nil
		case "k", "up":
			a.lenders.move(-1, len(a.snap.Ranking.Options))
			return a, nil
		case "d":
			a.in.showDisabled = !a.in.showDisabled
			return a, a.recalc()
		}
	}

	if key == "q" {
		return a, tea.Quit
	}

	// Input adjustments work from every tab.
	if next, ok := adjustInputs(a.in, key); ok {
		if next == a.in {
			return a, nil
		}
		a.in = next
		return a, a.recalc()
	}

	switch key {
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}
	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

// adjustInputs applies a slider key to in. ok is false when key is not a
// slider key.
func adjustInputs(in inputs, key string) (inputs, bool) {
	switch key {
	case "+", "=":
		in.terms.Principal = clampStep(in.terms.Principal+principalStep, principalMin, principalMax, principalStep)
	case "-", "_":
		in.terms.Principal = clampStep(in.terms.Principal-principalStep, principalMin, principalMax, principalStep)
	case "]":
		in.terms.TermYears = clampStep(in.terms.TermYears+termStep, termMin, termMax, termStep)
	case "[":
		in.terms.TermYears = clampStep(in.terms.TermYears-termStep, termMin, termMax, termStep)
	case ">", ".":
		in.mortgageRate = clampStep(in.mortgageRate+rateStep, rateMin, rateMax, rateStep)
	case "<", ",":
		in.mortgageRate = clampStep(in.mortgageRate-rateStep, rateMin, rateMax, rateStep)
	default:
		return in, false
	}
	return in, true
}

// clampStep snaps v to the nearest multiple of step within [lo, hi].
func clampStep(v, lo, hi, step float64) float64 {
	v = math.Round(v/step) * step
	// Trim float noise from fractional steps (6.1 not 6.1000000000000005).
	v = math.Round(v*1e6) / 1e6
	return math.Max(lo, math.Min(hi, v))
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		_ = a.saveSetupConfig()
		a.needSetup = false
		a.setupForm = nil
		return a, a.recalc()
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}

	return a, cmd
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if !a.loaded {
		return a.viewLoading()
	}

	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  feeburn needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ feeburn"))
	b.WriteString(subtitleStyle.Render(" · Flat-Fee Loan Rates"))
	b.WriteString("\n\n")
	b.WriteString(spinnerStyle.Render(a.spinner.View()))
	if a.cache == nil {
		b.WriteString(subtitleStyle.Render(" Opening result cache..."))
	} else {
		b.WriteString(subtitleStyle.Render(" Solving effective rates..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"o a t l x", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move selection"},
		}},
		{"Inputs", []struct{ key, desc string }{
			{"- +", fmt.Sprintf("Principal ∓ %s", cli.FormatCompact(principalStep))},
			{"[ ]", "Term ∓ 1 year"},
			{"< >", "Mortgage rate ∓ 0.1%"},
			{"d", "Show disabled lenders (Lenders tab)"},
		}},
		{"Other", []struct{ key, desc string }{
			{"Enter", "Edit setting"},
			{"Esc", "Cancel edit"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	info := fmt.Sprintf("%s · %.0fms", a.cacheBackend, float64(a.loadTime.Microseconds())/1000)
	statusBar := components.RenderStatusBar(w, "[-/+] principal  [[/]] term  [</>] rate  [?]help  [q]uit", info)

	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	if a.calcErr != nil {
		content = components.ContentCard("Error", a.calcErr.Error(), cw)
	} else {
		switch a.activeTab {
		case tabOverview:
			content = a.renderOverviewTab(cw)
		case tabAmounts:
			content = a.renderAmountsTab(cw)
		case tabTerms:
			content = a.renderTermsTab(cw)
		case tabLenders:
			content = a.renderLendersTab(cw)
		case tabSettings:
			content = a.renderSettingsTab(cw)
		}
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

func openCacheCmd(cfg config.Config, noCache bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c, backend, err := pipeline.OpenCache(ctx, cfg, noCache)
		return CacheOpenedMsg{Cache: c, Backend: backend, Err: err}
	}
}

func calculateCmd(seq int, cfg config.Config, in inputs, cache store.ResultCache) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		snap, err := compute(cfg, in, cache)
		return CalculatedMsg{Seq: seq, Snapshot: snap, Err: err, Elapsed: time.Since(start)}
	}
}

// compute solves the loan, its tables, and every lender scenario.
func compute(cfg config.Config, in inputs, cache store.ResultCache) (Snapshot, error) {
	calc, err := pipeline.SolveTerms(in.terms, cache)
	if err != nil {
		return Snapshot{}, err
	}
	tables, err := pipeline.BuildTables(in.terms, cache)
	if err != nil {
		return Snapshot{}, err
	}

	scenarios := config.Scenarios(cfg, in.terms.Principal, time.Now(), in.showDisabled)
	var ev *pipeline.EvalResult
	if cache != nil {
		cr, cerr := pipeline.EvaluateWithCache(scenarios, cache, nil)
		if cerr == nil {
			ev = &cr.EvalResult
		}
	}
	if ev == nil {
		ev = pipeline.Evaluate(scenarios, nil)
	}

	var failed []string
	for i, r := range ev.Results {
		if r.Err != nil {
			failed = append(failed, scenarios[i].Name)
		}
	}

	outcomes := ev.Outcomes()
	return Snapshot{
		Calculation: calc,
		Tables:      tables,
		Ranking:     pipeline.Rank(outcomes, pipeline.OffsetFor(outcomes, in.mortgageRate)),
		Failed:      failed,
	}, nil
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
