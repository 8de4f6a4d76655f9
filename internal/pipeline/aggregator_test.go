package pipeline

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/stipend/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func spend(amount string, cat model.Category, at time.Time) model.Transaction {
	return model.Transaction{Kind: model.KindSpend, Amount: dec(amount), Category: cat, OccurredAt: at}
}

func credit(amount string, at time.Time) model.Transaction {
	return model.Transaction{Kind: model.KindCredit, Amount: dec(amount), Category: model.CategoryOther, OccurredAt: at}
}

func person(name string, dir model.Direction, amount string) model.PersonTransaction {
	return model.PersonTransaction{PersonName: name, Direction: dir, Amount: dec(amount)}
}

func TestSummarize_WorkedExample(t *testing.T) {
	now := time.Date(2026, 3, 14, 18, 0, 0, 0, time.Local)
	txs := []model.Transaction{
		spend("200", model.CategoryFood, now.Add(-2*time.Hour)),
		credit("50", now.Add(-time.Hour)),
		spend("100", model.CategoryTransport, now.AddDate(0, 0, -1)),
	}
	p := model.Profile{Name: "Asha", MonthlyBudget: dec("1000"), School: "IIT"}

	s := Summarize(p, txs, nil, now)

	if !s.TotalSpend.Equal(dec("300")) {
		t.Errorf("TotalSpend = %s, want 300", s.TotalSpend)
	}
	if !s.TotalCredit.Equal(dec("50")) {
		t.Errorf("TotalCredit = %s, want 50", s.TotalCredit)
	}
	if !s.Balance.Equal(dec("750")) {
		t.Errorf("Balance = %s, want 750", s.Balance)
	}
	if s.BudgetPercent == nil || *s.BudgetPercent != 75 {
		t.Errorf("BudgetPercent = %v, want 75", s.BudgetPercent)
	}
	if !s.DailySpend.Equal(dec("200")) {
		t.Errorf("DailySpend = %s, want 200 (yesterday's 100 excluded)", s.DailySpend)
	}
	if len(s.Categories) != 2 {
		t.Fatalf("Categories = %+v, want Food and Transport", s.Categories)
	}
	if s.Categories[0].Category != model.CategoryFood || !s.Categories[0].Amount.Equal(dec("200")) {
		t.Errorf("Categories[0] = %+v", s.Categories[0])
	}
	if s.Categories[1].Category != model.CategoryTransport || !s.Categories[1].Amount.Equal(dec("100")) {
		t.Errorf("Categories[1] = %+v", s.Categories[1])
	}
	if s.Repayment != nil {
		t.Errorf("Repayment = %v, want nil with nothing received", *s.Repayment)
	}
	if s.TransactionCount != 3 {
		t.Errorf("TransactionCount = %d", s.TransactionCount)
	}
}

func TestPersonTotals_WorkedExample(t *testing.T) {
	pts := []model.PersonTransaction{
		person("Ravi", model.DirectionGave, "300"),
		person("Meera", model.DirectionReceived, "500"),
	}
	totals := PersonTotals(pts)
	if !totals.Given.Equal(dec("300")) || !totals.Received.Equal(dec("500")) || !totals.Net.Equal(dec("200")) {
		t.Fatalf("PersonTotals = %+v, want 300/500/200", totals)
	}
	pct, ok := RepaymentProgress(totals)
	if !ok || pct != 60 {
		t.Fatalf("RepaymentProgress = %v, %v, want 60, true", pct, ok)
	}
}

func TestRepaymentProgress_HiddenWithoutReceipts(t *testing.T) {
	totals := PersonTotals([]model.PersonTransaction{person("Ravi", model.DirectionGave, "300")})
	if _, ok := RepaymentProgress(totals); ok {
		t.Fatal("RepaymentProgress ok with zero received")
	}
}

func TestBudgetPercentage_ZeroBudget(t *testing.T) {
	if _, ok := BudgetPercentage(decimal.Zero, nil); ok {
		t.Fatal("BudgetPercentage ok with zero budget")
	}
	s := Summarize(model.Profile{}, nil, nil, time.Now())
	if s.BudgetPercent != nil {
		t.Fatal("Summary.BudgetPercent set with zero budget")
	}
}

func TestTotals_PartitionByKind(t *testing.T) {
	now := time.Now()
	txs := []model.Transaction{
		spend("10.25", model.CategoryFood, now),
		credit("4.75", now),
		spend("3", model.CategoryBooks, now),
		credit("1", now),
	}
	all := decimal.Zero
	for _, tx := range txs {
		all = all.Add(tx.Amount)
	}
	if got := TotalSpend(txs).Add(TotalCredit(txs)); !got.Equal(all) {
		t.Fatalf("spend + credit = %s, want %s", got, all)
	}
}

func TestCurrentBalance_MovesByAmount(t *testing.T) {
	budget := dec("1000")
	base := []model.Transaction{spend("100", model.CategoryFood, time.Now())}
	before := CurrentBalance(budget, base)

	withSpend := append(append([]model.Transaction{}, base...), spend("40", model.CategoryFood, time.Now()))
	if d := before.Sub(CurrentBalance(budget, withSpend)); !d.Equal(dec("40")) {
		t.Errorf("spend moved balance by %s, want -40", d)
	}
	withCredit := append(append([]model.Transaction{}, base...), credit("40", time.Now()))
	if d := CurrentBalance(budget, withCredit).Sub(before); !d.Equal(dec("40")) {
		t.Errorf("credit moved balance by %s, want +40", d)
	}
}

func TestCategoryTotals_OmitsZeroAndCredits(t *testing.T) {
	now := time.Now()
	txs := []model.Transaction{
		spend("50", model.CategoryBooks, now),
		spend("-50", model.CategoryBooks, now),
		spend("20", model.CategoryEntertainment, now),
		spend("20", model.CategoryBooks, now),
		credit("500", now),
	}
	got := CategoryTotals(txs)
	if len(got) != 2 {
		t.Fatalf("CategoryTotals = %+v", got)
	}
	// equal amounts tie-break by name
	if got[0].Category != model.CategoryBooks || got[1].Category != model.CategoryEntertainment {
		t.Fatalf("order = %s, %s", got[0].Category, got[1].Category)
	}
	for _, ct := range got {
		if !ct.Amount.IsPositive() {
			t.Errorf("%s total %s not positive", ct.Category, ct.Amount)
		}
		if ct.SharePercent != 50 {
			t.Errorf("%s share = %v, want 50", ct.Category, ct.SharePercent)
		}
	}
}

func TestDailySpend_UsesCalendarDay(t *testing.T) {
	now := time.Date(2026, 3, 14, 0, 30, 0, 0, time.Local)
	txs := []model.Transaction{
		spend("10", model.CategoryFood, time.Date(2026, 3, 13, 23, 59, 0, 0, time.Local)),
		spend("15", model.CategoryFood, time.Date(2026, 3, 14, 0, 1, 0, 0, time.Local)),
		credit("99", now),
		{Kind: model.KindSpend, Amount: dec("5"), Category: model.CategoryFood},
	}
	if got := DailySpend(txs, now); !got.Equal(dec("15")) {
		t.Fatalf("DailySpend = %s, want 15", got)
	}
}

func TestAggregateDays_ZeroFillsNewestFirst(t *testing.T) {
	until := time.Date(2026, 3, 14, 12, 0, 0, 0, time.Local)
	since := until.AddDate(0, 0, -3)
	txs := []model.Transaction{
		spend("10", model.CategoryFood, until),
		credit("5", until),
		spend("7", model.CategoryFood, since.Add(time.Hour)),
		spend("1000", model.CategoryFood, since.AddDate(0, 0, -5)),
	}

	days := AggregateDays(txs, since, until)
	if len(days) != 4 {
		t.Fatalf("got %d days, want 4", len(days))
	}
	for i := 1; i < len(days); i++ {
		if !days[i-1].Date.After(days[i].Date) {
			t.Fatalf("days not newest first at %d", i)
		}
	}
	if !days[0].Spend.Equal(dec("10")) || !days[0].Credit.Equal(dec("5")) || days[0].Transactions != 2 {
		t.Errorf("today = %+v", days[0])
	}
	if !days[1].Spend.IsZero() || days[1].Transactions != 0 {
		t.Errorf("gap day = %+v", days[1])
	}
	if !days[3].Spend.Equal(dec("7")) {
		t.Errorf("first day = %+v", days[3])
	}
}

func TestAggregatePeople(t *testing.T) {
	pts := []model.PersonTransaction{
		person("Ravi", model.DirectionGave, "100"),
		person("meera", model.DirectionReceived, "40"),
		person("ravi", model.DirectionReceived, "400"),
		person("Meera", model.DirectionGave, "10"),
	}
	got := AggregatePeople(pts)
	if len(got) != 2 {
		t.Fatalf("AggregatePeople = %+v", got)
	}
	if got[0].Person != "Ravi" || !got[0].Net.Equal(dec("300")) || got[0].Entries != 2 {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Person != "meera" || !got[1].Net.Equal(dec("30")) {
		t.Errorf("got[1] = %+v", got[1])
	}
}

func TestFilters(t *testing.T) {
	now := time.Now()
	txs := []model.Transaction{
		spend("1", model.CategoryFood, now),
		credit("2", now),
		spend("3", model.CategoryBooks, now),
	}
	if got := FilterByKind(txs, model.KindSpend); len(got) != 2 {
		t.Errorf("FilterByKind(spend) = %d entries", len(got))
	}
	if got := FilterByKind(txs, ""); len(got) != 3 {
		t.Errorf("FilterByKind(all) = %d entries", len(got))
	}
	if got := FilterByCategory(txs, model.CategoryBooks); len(got) != 1 || !got[0].Amount.Equal(dec("3")) {
		t.Errorf("FilterByCategory(Books) = %+v", got)
	}

	pts := []model.PersonTransaction{
		person("Ravi Kumar", model.DirectionGave, "1"),
		person("Meera", model.DirectionReceived, "2"),
	}
	if got := FilterByDirection(pts, model.DirectionReceived); len(got) != 1 || got[0].PersonName != "Meera" {
		t.Errorf("FilterByDirection = %+v", got)
	}
	if got := FilterByPerson(pts, "kumar"); len(got) != 1 || got[0].PersonName != "Ravi Kumar" {
		t.Errorf("FilterByPerson = %+v", got)
	}
}

func TestLoad(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		res, err := Load(MemoryPath, nil)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		defer res.Close()
		if res.Ledger.Onboarded() {
			t.Fatal("memory ledger onboarded")
		}
	})

	t.Run("sqlite persists", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ledger.db")
		res, err := Load(path, nil)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if _, err := res.Ledger.SetProfile(model.ProfileDraft{Name: "A", MonthlyBudget: "10", School: "S"}); err != nil {
			t.Fatal(err)
		}
		rev, _ := res.Backend.Revision()
		if rev == 0 {
			t.Error("revision not bumped by SetProfile")
		}
		_ = res.Close()

		res, err = Load(path, nil)
		if err != nil {
			t.Fatal(err)
		}
		defer res.Close()
		if !res.Ledger.Onboarded() {
			t.Fatal("profile lost across Load")
		}
	})
}

func TestDataPath_XDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg")
	if got, want := DataPath(), filepath.Join("/xdg", "stipend", "ledger.db"); got != want {
		t.Fatalf("DataPath = %q, want %q", got, want)
	}
}
