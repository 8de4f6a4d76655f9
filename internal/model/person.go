package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the flow of money in a person-to-person entry.
type Direction string

// Person ledger directions.
const (
	DirectionGave     Direction = "gave"
	DirectionReceived Direction = "received"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionGave || d == DirectionReceived
}

// ParseDirection parses a direction name case-insensitively.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown direction %q (want gave or received)", s)
	}
	return d, nil
}

// PersonTransaction records money given to or received from another person.
type PersonTransaction struct {
	ID         string          `json:"id"`
	PersonName string          `json:"personName"`
	Direction  Direction       `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	Notes      string          `json:"notes,omitempty"`
	// PayerPaymentID is the owner's payment id at the time the entry was created.
	PayerPaymentID string    `json:"upiId,omitempty"`
	CreatedAt      time.Time `json:"createdAt,omitzero"`
}

// PersonDraft is the user input for a new PersonTransaction.
type PersonDraft struct {
	PersonName string
	Direction  Direction
	Amount     string
	Notes      string
}
