package model

// Snapshot is the full content of a ledger at one point in time.
type Snapshot struct {
	Profile            *Profile
	Transactions       []Transaction
	PersonTransactions []PersonTransaction
}

// Empty reports whether the snapshot carries nothing at all.
func (s Snapshot) Empty() bool {
	return s.Profile == nil && len(s.Transactions) == 0 && len(s.PersonTransactions) == 0
}
