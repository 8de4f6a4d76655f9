package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/stipend/internal/ledger"
	"github.com/theirongolddev/stipend/internal/logging"
	"github.com/theirongolddev/stipend/internal/model"
	"github.com/theirongolddev/stipend/internal/store"
	"github.com/theirongolddev/stipend/internal/tui/components"
)

var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.Local)

func newTestLedger(t *testing.T, onboarded bool) *ledger.Ledger {
	t.Helper()
	n := 0
	l, err := ledger.Open(store.NewMemory(),
		ledger.WithClock(func() time.Time { return testNow }),
		ledger.WithIDFunc(func() string { n++; return fmt.Sprintf("id-%d", n) }),
		ledger.WithLogger(logging.Discard()),
	)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	if onboarded {
		if _, err := l.SetProfile(model.ProfileDraft{Name: "Asha", MonthlyBudget: "1000", School: "IIT"}); err != nil {
			t.Fatalf("SetProfile: %v", err)
		}
	}
	return l
}

func newTestApp(t *testing.T, l *ledger.Ledger) App {
	t.Helper()
	return NewApp(Options{
		Ledger: l,
		Now:    func() time.Time { return testNow },
		Logger: logging.Discard(),
		OpenLink: func(context.Context, string) error {
			t.Fatal("OpenLink called unexpectedly")
			return nil
		},
	})
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(t *testing.T, a App, keys ...string) (App, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var m tea.Model
		m, cmd = a.Update(keyMsg(k))
		a = m.(App)
	}
	return a, cmd
}

func TestNewApp_RoutesByProfile(t *testing.T) {
	a := newTestApp(t, newTestLedger(t, false))
	if a.form == nil || a.formKind != formOnboarding {
		t.Fatalf("first run should open onboarding, got kind=%v", a.formKind)
	}

	a = newTestApp(t, newTestLedger(t, true))
	if a.form != nil {
		t.Fatalf("onboarded user should land on the dashboard, got form kind=%v", a.formKind)
	}
}

func TestTabKeys(t *testing.T) {
	a := newTestApp(t, newTestLedger(t, true))
	tests := []struct {
		key  string
		want int
	}{
		{key: "s", want: tabSpend},
		{key: "p", want: tabPeople},
		{key: "f", want: tabProfile},
		{key: "d", want: tabDashboard},
		{key: "tab", want: tabSpend},
	}
	for _, tt := range tests {
		a, _ = press(t, a, tt.key)
		if a.activeTab != tt.want {
			t.Errorf("after %q activeTab = %d, want %d", tt.key, a.activeTab, tt.want)
		}
	}
}

func TestDeleteSelectedTransaction(t *testing.T) {
	l := newTestLedger(t, true)
	for _, amt := range []string{"10", "20", "30"} {
		if _, err := l.AddTransaction(model.TransactionDraft{Kind: model.KindSpend, Amount: amt, Category: model.CategoryFood}); err != nil {
			t.Fatal(err)
		}
	}
	a := newTestApp(t, l)

	// Rows are newest first: id-3 (30), id-2 (20), id-1 (10).
	a, _ = press(t, a, "s", "down", "x")

	got := l.Transactions()
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, tx := range got {
		if tx.ID == "id-2" {
			t.Fatal("selected entry id-2 was not removed")
		}
	}
	if !strings.Contains(a.notice.Text, "Deleted") || a.notice.Error {
		t.Errorf("notice = %+v", a.notice)
	}
	if a.spendCursor != 1 {
		t.Errorf("cursor = %d, want 1", a.spendCursor)
	}
}

func TestDeleteSelected_EmptyListIsNoop(t *testing.T) {
	a := newTestApp(t, newTestLedger(t, true))
	a, cmd := press(t, a, "s", "x")
	if cmd != nil || a.notice.Text != "" {
		t.Errorf("expected no-op, got notice %+v", a.notice)
	}
}

func TestApplyForm(t *testing.T) {
	tests := []struct {
		name    string
		kind    formKind
		vals    formValues
		wantErr bool
		check   func(t *testing.T, l *ledger.Ledger)
	}{
		{
			name: "spend",
			kind: formTransaction,
			vals: formValues{Tx: model.TransactionDraft{Kind: model.KindSpend, Amount: "200", Category: model.CategoryFood}},
			check: func(t *testing.T, l *ledger.Ledger) {
				if n := len(l.Transactions()); n != 1 {
					t.Errorf("transactions = %d, want 1", n)
				}
			},
		},
		{
			name:    "zero amount rejected",
			kind:    formTransaction,
			vals:    formValues{Tx: model.TransactionDraft{Kind: model.KindSpend, Amount: "0", Category: model.CategoryFood}},
			wantErr: true,
			check: func(t *testing.T, l *ledger.Ledger) {
				if n := len(l.Transactions()); n != 0 {
					t.Errorf("transactions = %d, want 0", n)
				}
			},
		},
		{
			name: "person",
			kind: formPerson,
			vals: formValues{Person: model.PersonDraft{PersonName: "Ravi", Direction: model.DirectionGave, Amount: "300"}},
			check: func(t *testing.T, l *ledger.Ledger) {
				if n := len(l.PersonTransactions()); n != 1 {
					t.Errorf("person transactions = %d, want 1", n)
				}
			},
		},
		{
			name:    "person without name",
			kind:    formPerson,
			vals:    formValues{Person: model.PersonDraft{Direction: model.DirectionGave, Amount: "300"}},
			wantErr: true,
		},
		{
			name: "profile edit",
			kind: formProfile,
			vals: formValues{Profile: model.ProfileDraft{Name: "Asha K", MonthlyBudget: "1500", School: "IIT", PaymentID: "asha@bank"}},
			check: func(t *testing.T, l *ledger.Ledger) {
				p, _ := l.Profile()
				if p.PaymentID != "asha@bank" || p.MonthlyBudget.String() != "1500" {
					t.Errorf("profile = %+v", p)
				}
			},
		},
		{
			name: "reset declined",
			kind: formReset,
			vals: formValues{Confirm: false},
			check: func(t *testing.T, l *ledger.Ledger) {
				if !l.Onboarded() {
					t.Error("declined reset must keep the profile")
				}
			},
		},
		{
			name: "reset confirmed",
			kind: formReset,
			vals: formValues{Confirm: true},
			check: func(t *testing.T, l *ledger.Ledger) {
				if l.Onboarded() {
					t.Error("reset should clear the profile")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLedger(t, true)
			vals := tt.vals
			text, err := applyForm(l, tt.kind, &vals)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && text == "" {
				t.Error("expected a notice text")
			}
			if err != nil && !ledger.IsValidation(err) {
				t.Errorf("err = %v, want ValidationError", err)
			}
			if tt.check != nil {
				tt.check(t, l)
			}
		})
	}
}

func TestSubmitForm_RejectedKeepsInput(t *testing.T) {
	a := newTestApp(t, newTestLedger(t, true))
	vals := defaultFormValues(a.profile)
	vals.Tx.Amount = "abc"
	vals.Tx.Notes = "chai"

	m, _ := a.submitForm(formTransaction, vals)
	a = m.(App)

	if a.form == nil || a.formKind != formTransaction {
		t.Fatal("rejected submission should reopen the form")
	}
	if a.formVals.Tx.Notes != "chai" {
		t.Errorf("notes = %q, want input preserved", a.formVals.Tx.Notes)
	}
	if !a.notice.Error {
		t.Errorf("notice = %+v, want error", a.notice)
	}
}

func TestSubmitForm_ResetReturnsToOnboarding(t *testing.T) {
	a := newTestApp(t, newTestLedger(t, true))
	a.activeTab = tabProfile

	m, _ := a.submitForm(formReset, &formValues{Confirm: true})
	a = m.(App)

	if a.onboarded {
		t.Fatal("profile should be gone after reset")
	}
	if a.formKind != formOnboarding {
		t.Errorf("formKind = %v, want onboarding", a.formKind)
	}
	if a.activeTab != tabDashboard {
		t.Errorf("activeTab = %d, want dashboard", a.activeTab)
	}
}

func TestSubmitForm_Onboarding(t *testing.T) {
	a := newTestApp(t, newTestLedger(t, false))
	m, _ := a.submitForm(formOnboarding, &formValues{
		Profile: model.ProfileDraft{Name: "Asha", MonthlyBudget: "1000", School: "IIT"},
	})
	a = m.(App)
	if !a.onboarded || a.form != nil {
		t.Fatalf("onboarded=%v form=%v", a.onboarded, a.form != nil)
	}
	if a.summary.Balance.String() != "1000" {
		t.Errorf("balance = %s, want 1000", a.summary.Balance)
	}
}

func TestEscCancelsForm(t *testing.T) {
	a := newTestApp(t, newTestLedger(t, true))
	a, _ = press(t, a, "a")
	if a.formKind != formTransaction {
		t.Fatalf("formKind = %v, want transaction", a.formKind)
	}
	a, _ = press(t, a, "esc")
	if a.form != nil {
		t.Fatal("esc should close the form")
	}
	if a.notice.Text != "Cancelled" {
		t.Errorf("notice = %q", a.notice.Text)
	}
}

func TestPayLink_MissingPaymentID(t *testing.T) {
	l := newTestLedger(t, true)
	if _, err := l.AddPersonTransaction(model.PersonDraft{PersonName: "Ravi", Direction: model.DirectionGave, Amount: "300"}); err != nil {
		t.Fatal(err)
	}
	a := newTestApp(t, l)
	a, _ = press(t, a, "p", "o")

	if a.opening {
		t.Error("nothing should be opened without a payment id")
	}
	if !a.notice.Error || !strings.Contains(a.notice.Text, "payment id") {
		t.Errorf("notice = %+v", a.notice)
	}
}

func TestPayLink_Opens(t *testing.T) {
	l := newTestLedger(t, false)
	if _, err := l.SetProfile(model.ProfileDraft{Name: "Asha", MonthlyBudget: "1000", School: "IIT", PaymentID: "asha@bank"}); err != nil {
		t.Fatal(err)
	}
	if _, err := l.AddPersonTransaction(model.PersonDraft{PersonName: "Ravi", Direction: model.DirectionReceived, Amount: "250.5", Notes: "lunch"}); err != nil {
		t.Fatal(err)
	}

	var opened string
	a := NewApp(Options{
		Ledger: l,
		Now:    func() time.Time { return testNow },
		Logger: logging.Discard(),
		OpenLink: func(_ context.Context, link string) error {
			opened = link
			return nil
		},
	})

	a, cmd := press(t, a, "p", "o")
	if !a.opening || cmd == nil {
		t.Fatal("expected an open command")
	}

	var done *linkOpenedMsg
	for _, msg := range runCmd(cmd) {
		if m, ok := msg.(linkOpenedMsg); ok {
			done = &m
		}
	}
	if done == nil {
		t.Fatal("no linkOpenedMsg produced")
	}
	if want := "upi://pay?pa=asha%40bank&am=250.5&tn=lunch"; opened != want {
		t.Errorf("opened %q, want %q", opened, want)
	}

	m, _ := a.Update(*done)
	a = m.(App)
	if a.opening || a.notice.Error {
		t.Errorf("opening=%v notice=%+v", a.opening, a.notice)
	}
}

// runCmd executes cmd and any batched commands it expands to.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestPeopleFilterCycle(t *testing.T) {
	l := newTestLedger(t, true)
	for _, d := range []model.PersonDraft{
		{PersonName: "Ravi", Direction: model.DirectionGave, Amount: "300"},
		{PersonName: "Meera", Direction: model.DirectionReceived, Amount: "500"},
		{PersonName: "Ravi", Direction: model.DirectionGave, Amount: "50"},
	} {
		if _, err := l.AddPersonTransaction(d); err != nil {
			t.Fatal(err)
		}
	}
	a := newTestApp(t, l)
	a, _ = press(t, a, "p")

	wants := []struct {
		filter model.Direction
		rows   int
	}{
		{filter: model.DirectionGave, rows: 2},
		{filter: model.DirectionReceived, rows: 1},
		{filter: "", rows: 3},
	}
	for _, w := range wants {
		a, _ = press(t, a, "v")
		if a.peopleFilter != w.filter || len(a.pts) != w.rows {
			t.Errorf("filter=%q rows=%d, want %q/%d", a.peopleFilter, len(a.pts), w.filter, w.rows)
		}
	}
}

func TestNoticeExpiry(t *testing.T) {
	a := newTestApp(t, newTestLedger(t, true))
	a.flash("first", false)
	stale := a.noticeSeq
	a.flash("second", false)

	m, _ := a.Update(noticeExpiredMsg{seq: stale})
	a = m.(App)
	if a.notice.Text != "second" {
		t.Fatalf("stale expiry cleared a newer notice: %+v", a.notice)
	}

	m, _ = a.Update(noticeExpiredMsg{seq: a.noticeSeq})
	a = m.(App)
	if a.notice.Text != "" {
		t.Errorf("notice = %+v, want cleared", a.notice)
	}
}

func TestView_RendersEveryTab(t *testing.T) {
	l := newTestLedger(t, true)
	if _, err := l.AddTransaction(model.TransactionDraft{Kind: model.KindSpend, Amount: "200", Category: model.CategoryFood}); err != nil {
		t.Fatal(err)
	}
	if _, err := l.AddPersonTransaction(model.PersonDraft{PersonName: "Ravi", Direction: model.DirectionGave, Amount: "300"}); err != nil {
		t.Fatal(err)
	}
	a := newTestApp(t, l)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	a = m.(App)

	tests := []struct {
		key  string
		want string
	}{
		{key: "d", want: "Balance"},
		{key: "s", want: "Transactions (1)"},
		{key: "p", want: "Ravi"},
		{key: "f", want: "Monthly budget"},
	}
	for _, tt := range tests {
		a, _ = press(t, a, tt.key)
		if view := a.View(); !strings.Contains(view, tt.want) {
			t.Errorf("tab %q view missing %q", tt.key, tt.want)
		}
	}
}

func TestView_TooNarrow(t *testing.T) {
	a := newTestApp(t, newTestLedger(t, true))
	m, _ := a.Update(tea.WindowSizeMsg{Width: 40, Height: 20})
	if view := m.(App).View(); !strings.Contains(view, "too narrow") {
		t.Errorf("view = %q", view)
	}
}

func TestVisibleWindow(t *testing.T) {
	tests := []struct {
		cursor, n, rows int
		start, end      int
	}{
		{cursor: 0, n: 5, rows: 10, start: 0, end: 5},
		{cursor: 0, n: 20, rows: 5, start: 0, end: 5},
		{cursor: 10, n: 20, rows: 5, start: 8, end: 13},
		{cursor: 19, n: 20, rows: 5, start: 15, end: 20},
	}
	for _, tt := range tests {
		start, end := visibleWindow(tt.cursor, tt.n, tt.rows)
		if start != tt.start || end != tt.end {
			t.Errorf("visibleWindow(%d, %d, %d) = [%d,%d), want [%d,%d)",
				tt.cursor, tt.n, tt.rows, start, end, tt.start, tt.end)
		}
	}
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := range components.Tabs {
		a := App{activeTab: active}
		pos := 0
		for i, tab := range components.Tabs {
			w := len(tab.Name) + 2 // horizontal padding in tab renderer
			if got := a.tabAtX(pos + w/2); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, pos+w/2, got, i)
			}
			pos += w + 1
		}
		if got := a.tabAtX(pos + 50); got != -1 {
			t.Errorf("x past the last tab = %d, want -1", got)
		}
	}
}
