package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary holds every derived metric shown on the dashboard.
type Summary struct {
	MonthlyBudget decimal.Decimal `json:"monthly_budget"`
	TotalSpend    decimal.Decimal `json:"total_spend"`
	TotalCredit   decimal.Decimal `json:"total_credit"`
	Balance       decimal.Decimal `json:"balance"`
	// BudgetPercent is nil when the monthly budget is zero.
	BudgetPercent *float64        `json:"budget_percent,omitempty"`
	DailySpend    decimal.Decimal `json:"daily_spend"`

	Categories []CategoryTotal `json:"categories"`
	People     PersonTotals    `json:"people"`
	// Repayment is nil until something has been received.
	Repayment *float64 `json:"repayment_percent,omitempty"`

	TransactionCount       int `json:"transaction_count"`
	PersonTransactionCount int `json:"person_transaction_count"`
}

// CategoryTotal is the summed spend for one category.
type CategoryTotal struct {
	Category     Category        `json:"category"`
	Amount       decimal.Decimal `json:"amount"`
	SharePercent float64         `json:"share_percent"`
}

// PersonTotals sums the person ledger by direction.
type PersonTotals struct {
	Given    decimal.Decimal `json:"given"`
	Received decimal.Decimal `json:"received"`
	Net      decimal.Decimal `json:"net"` // Received - Given
}

// PersonBalance is the per-counterparty view of the person ledger.
type PersonBalance struct {
	Person   string          `json:"person"`
	Given    decimal.Decimal `json:"given"`
	Received decimal.Decimal `json:"received"`
	Net      decimal.Decimal `json:"net"`
	Entries  int             `json:"entries"`
}

// DailyStats holds ledger activity for a single calendar day.
type DailyStats struct {
	Date         time.Time       `json:"date"`
	Spend        decimal.Decimal `json:"spend"`
	Credit       decimal.Decimal `json:"credit"`
	Transactions int             `json:"transactions"`
}
