// Package tui provides the interactive Bubble Tea dashboard for stipend.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/stipend/internal/cli"
	"github.com/theirongolddev/stipend/internal/ledger"
	"github.com/theirongolddev/stipend/internal/model"
	"github.com/theirongolddev/stipend/internal/paylink"
	"github.com/theirongolddev/stipend/internal/pipeline"
	"github.com/theirongolddev/stipend/internal/tui/components"
	"github.com/theirongolddev/stipend/internal/tui/theme"
)

// Tab indexes, matching components.Tabs.
const (
	tabDashboard = iota
	tabSpend
	tabPeople
	tabProfile
)

const (
	minTerminalWidth = 60
	maxContentWidth  = 140
	minContentHeight = 5
	formMaxWidth     = 72

	noticeTTL   = 3 * time.Second
	openTimeout = 10 * time.Second
)

// noticeExpiredMsg clears the status-line notice if no newer one replaced it.
type noticeExpiredMsg struct{ seq int }

// linkOpenedMsg reports the result of handing a payment link to the OS.
type linkOpenedMsg struct{ err error }

// Options configures the dashboard.
type Options struct {
	Ledger        *ledger.Ledger
	PaymentScheme string
	Days          int
	Now           func() time.Time
	Logger        *slog.Logger
	// OpenLink replaces paylink.Open, mainly for tests.
	OpenLink func(ctx context.Context, link string) error
}

// App is the root Bubble Tea model.
type App struct {
	ledger   *ledger.Ledger
	scheme   string
	days     int
	now      func() time.Time
	log      *slog.Logger
	openLink func(ctx context.Context, link string) error

	// Recomputed after every mutation
	profile   model.Profile
	onboarded bool
	txs       []model.Transaction       // newest first
	pts       []model.PersonTransaction // filtered, newest first
	summary   model.Summary
	daily     []model.DailyStats
	people    []model.PersonBalance

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	spendCursor  int
	peopleCursor int
	peopleFilter model.Direction // empty shows both directions

	// Active huh form, if any
	form     *huh.Form
	formKind formKind
	formVals *formValues

	notice    components.Notice
	noticeSeq int

	spinner spinner.Model
	opening bool
}

// NewApp builds the dashboard over an opened ledger. Without a profile the
// onboarding form is shown first.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	a := App{
		ledger:   opts.Ledger,
		scheme:   opts.PaymentScheme,
		days:     opts.Days,
		now:      opts.Now,
		log:      opts.Logger,
		openLink: opts.OpenLink,
		spinner:  sp,
	}
	if a.days <= 0 {
		a.days = 7
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.log == nil {
		a.log = slog.Default()
	}
	if a.openLink == nil {
		a.openLink = paylink.Open
	}

	a.recompute()
	if !a.onboarded {
		a.openForm(formOnboarding, nil)
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	if a.form != nil {
		return a.form.Init()
	}
	return nil
}

// recompute refreshes every derived view from the ledger.
func (a *App) recompute() {
	p, ok := a.ledger.Profile()
	a.profile, a.onboarded = p, ok

	txs := a.ledger.Transactions()
	pts := a.ledger.PersonTransactions()
	now := a.now()

	a.summary = pipeline.Summarize(p, txs, pts, now)
	a.daily = pipeline.AggregateDays(txs, now.AddDate(0, 0, -(a.days-1)), now)
	a.people = pipeline.AggregatePeople(pts)

	slices.Reverse(txs)
	a.txs = txs

	if a.peopleFilter != "" {
		pts = pipeline.FilterByDirection(pts, a.peopleFilter)
	}
	slices.Reverse(pts)
	a.pts = pts

	a.spendCursor = clampCursor(a.spendCursor, len(a.txs))
	a.peopleCursor = clampCursor(a.peopleCursor, len(a.pts))
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(min(msg.Width, formMaxWidth)).WithHeight(msg.Height)
		}
		return a, nil

	case noticeExpiredMsg:
		if msg.seq == a.noticeSeq {
			a.notice = components.Notice{}
		}
		return a, nil

	case linkOpenedMsg:
		a.opening = false
		if msg.err != nil {
			a.log.Warn("opening payment link failed", "err", msg.err)
			return a, a.flash("Could not open link: "+msg.err.Error(), true)
		}
		return a, a.flash("Payment link opened", false)

	case spinner.TickMsg:
		if !a.opening {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	// Everything else belongs to the form while one is open.
	if a.form != nil {
		return a.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && msg.Y == 0 {
			if idx := a.tabAtX(msg.X); idx >= 0 {
				a.activeTab = idx
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if a.showHelp {
		switch key {
		case "ctrl+c", "q":
			return a, tea.Quit
		}
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "ctrl+c", "q":
		return a, tea.Quit
	case "?":
		a.showHelp = true
	case "tab", "right", "l":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	case "shift+tab", "left", "h":
		a.activeTab = (a.activeTab + len(components.Tabs) - 1) % len(components.Tabs)
	case "j", "down":
		a.moveCursor(1)
	case "k", "up":
		a.moveCursor(-1)
	case "g", "home":
		a.moveCursor(-1 << 30)
	case "G", "end":
		a.moveCursor(1 << 30)
	case "a":
		if a.activeTab == tabPeople {
			return a, a.openForm(formPerson, nil)
		}
		return a, a.openForm(formTransaction, nil)
	case "e":
		return a, a.openForm(formProfile, nil)
	case "R":
		return a, a.openForm(formReset, nil)
	case "x", "delete":
		return a.deleteSelected()
	case "v":
		if a.activeTab == tabPeople {
			a.cycleFilter()
		}
	case "o":
		if a.activeTab == tabPeople {
			return a.openSelectedLink()
		}
	default:
		if len(msg.Runes) == 1 {
			if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

func (a *App) moveCursor(delta int) {
	switch a.activeTab {
	case tabSpend:
		a.spendCursor = clampCursor(a.spendCursor+delta, len(a.txs))
	case tabPeople:
		a.peopleCursor = clampCursor(a.peopleCursor+delta, len(a.pts))
	}
}

func (a *App) cycleFilter() {
	switch a.peopleFilter {
	case "":
		a.peopleFilter = model.DirectionGave
	case model.DirectionGave:
		a.peopleFilter = model.DirectionReceived
	default:
		a.peopleFilter = ""
	}
	a.peopleCursor = 0
	a.recompute()
}

// deleteSelected removes the highlighted row on the Spend or People tab.
func (a App) deleteSelected() (tea.Model, tea.Cmd) {
	switch a.activeTab {
	case tabSpend:
		if len(a.txs) == 0 {
			return a, nil
		}
		tx := a.txs[a.spendCursor]
		if _, err := a.ledger.RemoveTransaction(tx.ID); err != nil {
			return a, a.flash(err.Error(), true)
		}
		a.recompute()
		return a, a.flash(fmt.Sprintf("Deleted %s of %s", tx.Kind, cli.FormatMoney(tx.Amount)), false)

	case tabPeople:
		if len(a.pts) == 0 {
			return a, nil
		}
		pt := a.pts[a.peopleCursor]
		if _, err := a.ledger.RemovePersonTransaction(pt.ID); err != nil {
			return a, a.flash(err.Error(), true)
		}
		a.recompute()
		return a, a.flash(fmt.Sprintf("Deleted entry for %s", pt.PersonName), false)
	}
	return a, nil
}

// selectedLink builds the payment link for the highlighted person entry.
func (a App) selectedLink() (string, error) {
	if len(a.pts) == 0 {
		return "", nil
	}
	return paylink.Build(a.pts[a.peopleCursor], a.profile.PaymentID, paylink.WithScheme(a.scheme))
}

func (a App) openSelectedLink() (tea.Model, tea.Cmd) {
	if a.opening {
		return a, nil
	}
	link, err := a.selectedLink()
	switch {
	case errors.Is(err, paylink.ErrPaymentIDMissing):
		return a, a.flash("No payment id: press e to add one", true)
	case err != nil:
		return a, a.flash(err.Error(), true)
	case link == "":
		return a, nil
	}

	a.opening = true
	open := a.openLink
	return a, tea.Batch(a.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
		defer cancel()
		return linkOpenedMsg{err: open(ctx, link)}
	})
}

// flash shows a transient notice in the status bar.
func (a *App) flash(text string, isErr bool) tea.Cmd {
	a.noticeSeq++
	a.notice = components.Notice{Text: text, Error: isErr}
	seq := a.noticeSeq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.form != nil {
		return a.viewForm()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  stipend needs at least %d columns.\n",
		a.width, minTerminalWidth)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewForm() string {
	t := theme.Active
	title := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true).Render(a.formKind.title())

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	b.WriteString(a.form.View())
	if a.notice.Text != "" {
		color := t.Positive
		if a.notice.Error {
			color = t.Negative
		}
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(color).Render(a.notice.Text))
	}

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2).
		Render(b.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

func (a App) viewHelp() string {
	t := theme.Active
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	bindings := []struct{ key, desc string }{
		{"d s p f", "Jump to tab"},
		{"← → / tab", "Previous / next tab"},
		{"j k", "Move selection"},
		{"a", "Add entry (person entry on People)"},
		{"x", "Delete selected entry"},
		{"v", "Filter People: all / gave / received"},
		{"o", "Open payment link for selected person entry"},
		{"e", "Edit profile"},
		{"R", "Reset all data"},
		{"q", "Quit"},
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true).Render("Keyboard shortcuts"))
	b.WriteString("\n\n")
	for _, kb := range bindings {
		b.WriteString(keyStyle.Render(fmt.Sprintf("%-11s", kb.key)))
		b.WriteString(descStyle.Render(kb.desc))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Render("Press any key to close"))

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3).
		Render(b.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, w)

	hints := a.hints()
	if a.opening {
		hints = a.spinner.View() + " opening link…  " + hints
	}
	statusBar := components.RenderStatusBar(w, hints, a.notice)

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabDashboard:
		content = a.renderDashboardTab(cw)
	case tabSpend:
		content = a.renderSpendTab(cw, contentH)
	case tabPeople:
		content = a.renderPeopleTab(cw, contentH)
	case tabProfile:
		content = a.renderProfileTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (a App) hints() string {
	switch a.activeTab {
	case tabSpend:
		return "a add · x delete · j/k move · ? help · q quit"
	case tabPeople:
		return "a add · x delete · v filter · o pay link · ? help · q quit"
	case tabProfile:
		return "e edit · R reset · ? help · q quit"
	default:
		return "a add · d s p f tabs · ? help · q quit"
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func clampCursor(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
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

// visibleWindow returns the [start, end) slice of n rows that keeps cursor on screen.
func visibleWindow(cursor, n, rows int) (int, int) {
	if rows <= 0 || n <= rows {
		return 0, n
	}
	start := max(cursor-rows/2, 0)
	start = min(start, n-rows)
	return start, start + rows
}

// chartDateLabels labels daily bars oldest first, using weekday initials
// for a week or less and day-of-month otherwise.
func chartDateLabels(days []model.DailyStats) []string {
	labels := make([]string, len(days))
	for i, d := range days {
		if len(days) <= 7 {
			labels[i] = d.Date.Format("Mon")[:2]
		} else {
			labels[i] = d.Date.Format("02")
		}
	}
	return labels
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes must agree with RenderTabBar, which puts one column between tabs.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1
	}
	return -1
}
