// Package pipeline loads a ledger from disk and derives every metric shown to the user.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/stipend/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Summarize computes the full dashboard for one ledger snapshot.
func Summarize(p model.Profile, txs []model.Transaction, pts []model.PersonTransaction, now time.Time) model.Summary {
	s := model.Summary{
		MonthlyBudget:          p.MonthlyBudget,
		TotalSpend:             TotalSpend(txs),
		TotalCredit:            TotalCredit(txs),
		DailySpend:             DailySpend(txs, now),
		Categories:             CategoryTotals(txs),
		People:                 PersonTotals(pts),
		TransactionCount:       len(txs),
		PersonTransactionCount: len(pts),
	}
	s.Balance = p.MonthlyBudget.Add(s.TotalCredit).Sub(s.TotalSpend)

	if pct, ok := BudgetPercentage(p.MonthlyBudget, txs); ok {
		s.BudgetPercent = &pct
	}
	if pct, ok := RepaymentProgress(s.People); ok {
		s.Repayment = &pct
	}
	return s
}

// TotalSpend sums the amounts of spend entries.
func TotalSpend(txs []model.Transaction) decimal.Decimal {
	return sumKind(txs, model.KindSpend)
}

// TotalCredit sums the amounts of credit entries.
func TotalCredit(txs []model.Transaction) decimal.Decimal {
	return sumKind(txs, model.KindCredit)
}

func sumKind(txs []model.Transaction, kind model.Kind) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Kind == kind {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// CurrentBalance is budget + credits - spends.
func CurrentBalance(budget decimal.Decimal, txs []model.Transaction) decimal.Decimal {
	return budget.Add(TotalCredit(txs)).Sub(TotalSpend(txs))
}

// BudgetPercentage returns the balance as a percentage of the monthly budget.
// ok is false when the budget is zero and the ratio is meaningless.
func BudgetPercentage(budget decimal.Decimal, txs []model.Transaction) (pct float64, ok bool) {
	if budget.IsZero() {
		return 0, false
	}
	return CurrentBalance(budget, txs).Div(budget).Mul(hundred).InexactFloat64(), true
}

// DailySpend sums spend entries dated on now's calendar day, in now's location.
func DailySpend(txs []model.Transaction, now time.Time) decimal.Decimal {
	y, m, d := now.Date()
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Kind != model.KindSpend || tx.OccurredAt.IsZero() {
			continue
		}
		ty, tm, td := tx.OccurredAt.In(now.Location()).Date()
		if ty == y && tm == m && td == d {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// CategoryTotals folds spend entries by category. Categories whose total is
// zero are left out. Sorted by amount, largest first.
func CategoryTotals(txs []model.Transaction) []model.CategoryTotal {
	sums := make(map[model.Category]decimal.Decimal)
	spend := decimal.Zero
	for _, tx := range txs {
		if tx.Kind != model.KindSpend {
			continue
		}
		sums[tx.Category] = sums[tx.Category].Add(tx.Amount)
		spend = spend.Add(tx.Amount)
	}

	totals := make([]model.CategoryTotal, 0, len(sums))
	for cat, amt := range sums {
		if amt.IsZero() {
			continue
		}
		ct := model.CategoryTotal{Category: cat, Amount: amt}
		if spend.IsPositive() {
			ct.SharePercent = amt.Div(spend).Mul(hundred).InexactFloat64()
		}
		totals = append(totals, ct)
	}
	sort.Slice(totals, func(i, j int) bool {
		if c := totals[i].Amount.Cmp(totals[j].Amount); c != 0 {
			return c > 0
		}
		return totals[i].Category < totals[j].Category
	})
	return totals
}

// PersonTotals sums the person ledger by direction.
func PersonTotals(pts []model.PersonTransaction) model.PersonTotals {
	var t model.PersonTotals
	for _, pt := range pts {
		switch pt.Direction {
		case model.DirectionGave:
			t.Given = t.Given.Add(pt.Amount)
		case model.DirectionReceived:
			t.Received = t.Received.Add(pt.Amount)
		}
	}
	t.Net = t.Received.Sub(t.Given)
	return t
}

// RepaymentProgress is given / received as a percentage.
// ok is false until something has been received.
func RepaymentProgress(t model.PersonTotals) (pct float64, ok bool) {
	if t.Received.IsZero() {
		return 0, false
	}
	return t.Given.Div(t.Received).Mul(hundred).InexactFloat64(), true
}

// AggregateDays computes per-day spend and credit for entries in [since, until].
// Every day in the range is present so charts show gaps as zeros.
func AggregateDays(txs []model.Transaction, since, until time.Time) []model.DailyStats {
	dayMap := make(map[string]*model.DailyStats)
	start := startOfDay(since)
	end := startOfDay(until)

	for _, tx := range txs {
		if tx.OccurredAt.IsZero() {
			continue
		}
		local := tx.OccurredAt.Local()
		day := startOfDay(local)
		if day.Before(start) || day.After(end) {
			continue
		}
		key := day.Format("2006-01-02")
		ds, ok := dayMap[key]
		if !ok {
			ds = &model.DailyStats{Date: day}
			dayMap[key] = ds
		}
		ds.Transactions++
		switch tx.Kind {
		case model.KindSpend:
			ds.Spend = ds.Spend.Add(tx.Amount)
		case model.KindCredit:
			ds.Credit = ds.Credit.Add(tx.Amount)
		}
	}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		if _, ok := dayMap[key]; !ok {
			dayMap[key] = &model.DailyStats{Date: day}
		}
	}

	days := make([]model.DailyStats, 0, len(dayMap))
	for _, ds := range dayMap {
		days = append(days, *ds)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.After(days[j].Date)
	})
	return days
}

func startOfDay(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// AggregatePeople groups the person ledger by counterparty. Names match
// case-insensitively; the first spelling seen is kept. Largest net first.
func AggregatePeople(pts []model.PersonTransaction) []model.PersonBalance {
	byName := make(map[string]*model.PersonBalance)
	var order []string
	for _, pt := range pts {
		key := strings.ToLower(pt.PersonName)
		pb, ok := byName[key]
		if !ok {
			pb = &model.PersonBalance{Person: pt.PersonName}
			byName[key] = pb
			order = append(order, key)
		}
		pb.Entries++
		switch pt.Direction {
		case model.DirectionGave:
			pb.Given = pb.Given.Add(pt.Amount)
		case model.DirectionReceived:
			pb.Received = pb.Received.Add(pt.Amount)
		}
	}

	people := make([]model.PersonBalance, 0, len(order))
	for _, key := range order {
		pb := byName[key]
		pb.Net = pb.Received.Sub(pb.Given)
		people = append(people, *pb)
	}
	sort.SliceStable(people, func(i, j int) bool {
		return people[i].Net.Abs().Cmp(people[j].Net.Abs()) > 0
	})
	return people
}

// FilterByKind returns entries of the given kind. An empty kind keeps everything.
func FilterByKind(txs []model.Transaction, kind model.Kind) []model.Transaction {
	if kind == "" {
		return txs
	}
	var result []model.Transaction
	for _, tx := range txs {
		if tx.Kind == kind {
			result = append(result, tx)
		}
	}
	return result
}

// FilterByCategory returns entries in the given category. An empty category keeps everything.
func FilterByCategory(txs []model.Transaction, cat model.Category) []model.Transaction {
	if cat == "" {
		return txs
	}
	var result []model.Transaction
	for _, tx := range txs {
		if tx.Category == cat {
			result = append(result, tx)
		}
	}
	return result
}

// FilterByDirection returns person entries in the given direction. An empty direction keeps everything.
func FilterByDirection(pts []model.PersonTransaction, dir model.Direction) []model.PersonTransaction {
	if dir == "" {
		return pts
	}
	var result []model.PersonTransaction
	for _, pt := range pts {
		if pt.Direction == dir {
			result = append(result, pt)
		}
	}
	return result
}

// FilterByPerson returns person entries whose name contains the substring.
func FilterByPerson(pts []model.PersonTransaction, person string) []model.PersonTransaction {
	if person == "" {
		return pts
	}
	var result []model.PersonTransaction
	for _, pt := range pts {
		if containsIgnoreCase(pt.PersonName, person) {
			result = append(result, pt)
		}
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
