package model

import "github.com/shopspring/decimal"

// Profile is the single user of a stipend ledger.
type Profile struct {
	Name          string          `json:"name"`
	MonthlyBudget decimal.Decimal `json:"monthlyBudget"`
	School        string          `json:"school"`
	PaymentID     string          `json:"upiId,omitempty"`
}

// ProfileDraft is the onboarding / profile edit input.
type ProfileDraft struct {
	Name          string
	MonthlyBudget string
	School        string
	PaymentID     string
}
