// Package model defines domain types for stipend ledgers and summaries.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrInvalidAmount is returned when an amount string is not a decimal number.
var ErrInvalidAmount = errors.New("invalid amount")

var titleCaser = cases.Title(language.English)

// Kind is the direction of a budget ledger entry.
type Kind string

// Budget ledger entry kinds.
const (
	KindSpend  Kind = "spend"
	KindCredit Kind = "credit"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindSpend || k == KindCredit
}

// ParseKind parses a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown kind %q (want spend or credit)", s)
	}
	return k, nil
}

// Category groups spend entries for the breakdown view.
type Category string

// The fixed category set.
const (
	CategoryFood          Category = "Food"
	CategoryBooks         Category = "Books"
	CategoryTransport     Category = "Transport"
	CategoryEntertainment Category = "Entertainment"
	CategoryOther         Category = "Other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryFood,
	CategoryBooks,
	CategoryTransport,
	CategoryEntertainment,
	CategoryOther,
}

// Valid reports whether c belongs to the fixed category set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory accepts any casing ("food", "FOOD") and returns the canonical category.
func ParseCategory(s string) (Category, error) {
	c := Category(titleCaser.String(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// ParseAmount parses a user-entered amount. "1,000.50" and "1,000" use commas
// as thousands separators; a single comma not followed by exactly three
// digits is a decimal comma ("12,50"). Anything ambiguous is rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s, ok := normalizeSeparators(s)
	if !ok {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

func normalizeSeparators(s string) (string, bool) {
	if !strings.Contains(s, ",") {
		return s, true
	}

	intPart, frac := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, frac = s[:dot], s[dot:]
		if strings.Contains(frac, ",") {
			return "", false
		}
	}

	groups := strings.Split(intPart, ",")
	if frac == "" && len(groups) == 2 && len(groups[1]) != 3 {
		return groups[0] + "." + groups[1], true
	}

	lead := strings.TrimLeft(groups[0], "+-")
	if len(lead) < 1 || len(lead) > 3 {
		return "", false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return "", false
		}
	}
	return strings.Join(groups, "") + frac, true
}

// Transaction is one budget ledger entry. Entries are never mutated after creation.
type Transaction struct {
	ID         string          `json:"id"`
	Kind       Kind            `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	Category   Category        `json:"category"`
	Notes      string          `json:"notes,omitempty"`
	OccurredAt time.Time       `json:"date"`
}

// TransactionDraft is the user input for a new Transaction.
// Amount is kept as entered so validation can tell absent from malformed.
type TransactionDraft struct {
	Kind     Kind
	Amount   string
	Category Category
	Notes    string
}
