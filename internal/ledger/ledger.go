// Package ledger owns the profile and both transaction lists and mirrors
// every mutation to a key-value store.
package ledger

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/stipend/internal/model"
)

// Store keys. The names match what the web version kept in localStorage.
const (
	KeyProfile            = "userData"
	KeyTransactions       = "transactions"
	KeyPersonTransactions = "personTransactions"
)

// KV is the persistence the ledger writes through to.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(keys ...string) error
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDFunc overrides the id generator.
func WithIDFunc(fn func() string) Option {
	return func(l *Ledger) { l.newID = fn }
}

// WithLogger sets the logger used for mutation events.
func WithLogger(log *slog.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// Ledger is the in-memory copy of one user's data. It is not safe for
// concurrent use; every method runs to completion before returning.
type Ledger struct {
	kv    KV
	now   func() time.Time
	newID func() string
	log   *slog.Logger

	profile *model.Profile
	txs     []model.Transaction
	pts     []model.PersonTransaction
}

// Open loads the three records from kv. Missing records mean a first run.
func Open(kv KV, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		kv:    kv,
		now:   time.Now,
		newID: uuid.NewString,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}

	var p model.Profile
	ok, err := l.load(KeyProfile, &p)
	if err != nil {
		return nil, err
	}
	if ok {
		l.profile = &p
	}
	if _, err := l.load(KeyTransactions, &l.txs); err != nil {
		return nil, err
	}
	if _, err := l.load(KeyPersonTransactions, &l.pts); err != nil {
		return nil, err
	}

	l.log.Debug("ledger loaded",
		"onboarded", l.profile != nil,
		"transactions", len(l.txs),
		"person_transactions", len(l.pts))
	return l, nil
}

func (l *Ledger) load(key string, dst any) (bool, error) {
	raw, ok, err := l.kv.Get(key)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", key, err)
	}
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

func (l *Ledger) save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := l.kv.Set(key, string(data)); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Onboarded reports whether a profile exists.
func (l *Ledger) Onboarded() bool {
	return l.profile != nil
}

// Profile returns the stored profile.
func (l *Ledger) Profile() (model.Profile, bool) {
	if l.profile == nil {
		return model.Profile{}, false
	}
	return *l.profile, true
}

// Transactions returns a copy of the budget ledger in insertion order.
func (l *Ledger) Transactions() []model.Transaction {
	return slices.Clone(l.txs)
}

// PersonTransactions returns a copy of the person ledger in insertion order.
func (l *Ledger) PersonTransactions() []model.PersonTransaction {
	return slices.Clone(l.pts)
}

// SetProfile validates d and replaces the whole profile.
func (l *Ledger) SetProfile(d model.ProfileDraft) (model.Profile, error) {
	p := model.Profile{
		Name:      strings.TrimSpace(d.Name),
		School:    strings.TrimSpace(d.School),
		PaymentID: strings.TrimSpace(d.PaymentID),
	}
	if p.Name == "" {
		return model.Profile{}, invalid("name", "is required")
	}
	budget, err := requiredAmount("monthly budget", d.MonthlyBudget)
	if err != nil {
		return model.Profile{}, err
	}
	p.MonthlyBudget = budget
	if p.School == "" {
		return model.Profile{}, invalid("school", "is required")
	}

	if err := l.save(KeyProfile, p); err != nil {
		return model.Profile{}, err
	}
	l.profile = &p
	l.log.Debug("profile saved", "name", p.Name, "budget", p.MonthlyBudget.String())
	return p, nil
}

// AddTransaction validates d, stamps it with a fresh id and the current time,
// and appends it to the budget ledger.
func (l *Ledger) AddTransaction(d model.TransactionDraft) (model.Transaction, error) {
	amount, err := requiredAmount("amount", d.Amount)
	if err != nil {
		return model.Transaction{}, err
	}
	if !d.Kind.Valid() {
		return model.Transaction{}, invalid("kind", fmt.Sprintf("%q is not spend or credit", d.Kind))
	}
	if !d.Category.Valid() {
		return model.Transaction{}, invalid("category", fmt.Sprintf("%q is not a known category", d.Category))
	}

	tx := model.Transaction{
		ID:         l.newID(),
		Kind:       d.Kind,
		Amount:     amount,
		Category:   d.Category,
		Notes:      strings.TrimSpace(d.Notes),
		OccurredAt: l.now(),
	}

	next := append(slices.Clone(l.txs), tx)
	if err := l.save(KeyTransactions, next); err != nil {
		return model.Transaction{}, err
	}
	l.txs = next
	l.log.Debug("transaction added", "id", tx.ID, "kind", tx.Kind, "amount", tx.Amount.String())
	return tx, nil
}

// RemoveTransaction deletes the entry with the given id. An unknown id is not an error.
// It reports whether an entry was removed.
func (l *Ledger) RemoveTransaction(id string) (bool, error) {
	next := slices.DeleteFunc(slices.Clone(l.txs), func(tx model.Transaction) bool {
		return tx.ID == id
	})
	if err := l.save(KeyTransactions, next); err != nil {
		return false, err
	}
	removed := len(next) != len(l.txs)
	l.txs = next
	l.log.Debug("transaction remove", "id", id, "removed", removed)
	return removed, nil
}

// AddPersonTransaction validates d and appends it to the person ledger.
// The owner's current payment id is copied onto the entry.
func (l *Ledger) AddPersonTransaction(d model.PersonDraft) (model.PersonTransaction, error) {
	name := strings.TrimSpace(d.PersonName)
	if name == "" {
		return model.PersonTransaction{}, invalid("person name", "is required")
	}
	amount, err := requiredAmount("amount", d.Amount)
	if err != nil {
		return model.PersonTransaction{}, err
	}
	if !d.Direction.Valid() {
		return model.PersonTransaction{}, invalid("direction", fmt.Sprintf("%q is not gave or received", d.Direction))
	}

	pt := model.PersonTransaction{
		ID:         l.newID(),
		PersonName: name,
		Direction:  d.Direction,
		Amount:     amount,
		Notes:      strings.TrimSpace(d.Notes),
		CreatedAt:  l.now(),
	}
	if l.profile != nil {
		pt.PayerPaymentID = l.profile.PaymentID
	}

	next := append(slices.Clone(l.pts), pt)
	if err := l.save(KeyPersonTransactions, next); err != nil {
		return model.PersonTransaction{}, err
	}
	l.pts = next
	l.log.Debug("person transaction added", "id", pt.ID, "direction", pt.Direction, "amount", pt.Amount.String())
	return pt, nil
}

// RemovePersonTransaction deletes the person entry with the given id. An unknown id is not an error.
func (l *Ledger) RemovePersonTransaction(id string) (bool, error) {
	next := slices.DeleteFunc(slices.Clone(l.pts), func(pt model.PersonTransaction) bool {
		return pt.ID == id
	})
	if err := l.save(KeyPersonTransactions, next); err != nil {
		return false, err
	}
	removed := len(next) != len(l.pts)
	l.pts = next
	l.log.Debug("person transaction remove", "id", id, "removed", removed)
	return removed, nil
}

// FindPersonTransaction looks up a person entry by id.
func (l *Ledger) FindPersonTransaction(id string) (model.PersonTransaction, bool) {
	i := slices.IndexFunc(l.pts, func(pt model.PersonTransaction) bool { return pt.ID == id })
	if i < 0 {
		return model.PersonTransaction{}, false
	}
	return l.pts[i], true
}

// Snapshot returns a copy of the profile and both lists.
func (l *Ledger) Snapshot() model.Snapshot {
	snap := model.Snapshot{
		Transactions:       l.Transactions(),
		PersonTransactions: l.PersonTransactions(),
	}
	if l.profile != nil {
		p := *l.profile
		snap.Profile = &p
	}
	return snap
}

// Restore replaces the whole ledger with snap. Entries keep their ids and
// timestamps. Nothing is written unless every entry is valid, and stores
// implementing Replacer swap all three records in one transaction.
func (l *Ledger) Restore(snap model.Snapshot) error {
	if snap.Profile != nil {
		if err := checkProfile(*snap.Profile); err != nil {
			return err
		}
	}
	for _, tx := range snap.Transactions {
		if err := checkTransaction(tx); err != nil {
			return err
		}
	}
	for _, pt := range snap.PersonTransactions {
		if err := checkPersonTransaction(pt); err != nil {
			return err
		}
	}

	txs := nonNil(slices.Clone(snap.Transactions))
	pts := nonNil(slices.Clone(snap.PersonTransactions))
	set := make(map[string]string, 3)
	var remove []string
	if snap.Profile == nil {
		remove = append(remove, KeyProfile)
	} else if err := encodeInto(set, KeyProfile, snap.Profile); err != nil {
		return err
	}
	if err := encodeInto(set, KeyTransactions, txs); err != nil {
		return err
	}
	if err := encodeInto(set, KeyPersonTransactions, pts); err != nil {
		return err
	}
	if err := l.replace(set, remove); err != nil {
		return err
	}

	l.profile = nil
	if snap.Profile != nil {
		p := *snap.Profile
		l.profile = &p
	}
	l.txs = txs
	l.pts = pts
	l.log.Info("ledger restored",
		"onboarded", l.profile != nil,
		"transactions", len(txs),
		"person_transactions", len(pts))
	return nil
}

// Replacer is implemented by stores that can write several keys atomically.
type Replacer interface {
	Replace(set map[string]string, remove ...string) error
}

// replace writes set and remove atomically when the store supports it.
// Otherwise the keys are written one by one and a failure part way through
// leaves the earlier keys written.
func (l *Ledger) replace(set map[string]string, remove []string) error {
	if r, ok := l.kv.(Replacer); ok {
		if err := r.Replace(set, remove...); err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
		return nil
	}
	for _, key := range []string{KeyProfile, KeyTransactions, KeyPersonTransactions} {
		if v, ok := set[key]; ok {
			if err := l.kv.Set(key, v); err != nil {
				return fmt.Errorf("writing %s: %w", key, err)
			}
		}
	}
	if len(remove) > 0 {
		if err := l.kv.Remove(remove...); err != nil {
			return fmt.Errorf("clearing %v: %w", remove, err)
		}
	}
	return nil
}

func encodeInto(set map[string]string, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	set[key] = string(data)
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func checkProfile(p model.Profile) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return invalid("name", "is required")
	case p.MonthlyBudget.IsZero():
		return invalid("monthly budget", "must not be zero")
	case strings.TrimSpace(p.School) == "":
		return invalid("school", "is required")
	}
	return nil
}

func checkTransaction(tx model.Transaction) error {
	switch {
	case tx.ID == "":
		return invalid("id", "is required")
	case tx.Amount.IsZero():
		return invalid("amount", fmt.Sprintf("entry %s has a zero amount", tx.ID))
	case !tx.Kind.Valid():
		return invalid("kind", fmt.Sprintf("entry %s has kind %q", tx.ID, tx.Kind))
	case !tx.Category.Valid():
		return invalid("category", fmt.Sprintf("entry %s has category %q", tx.ID, tx.Category))
	}
	return nil
}

func checkPersonTransaction(pt model.PersonTransaction) error {
	switch {
	case pt.ID == "":
		return invalid("id", "is required")
	case strings.TrimSpace(pt.PersonName) == "":
		return invalid("person name", fmt.Sprintf("entry %s has no person", pt.ID))
	case pt.Amount.IsZero():
		return invalid("amount", fmt.Sprintf("entry %s has a zero amount", pt.ID))
	case !pt.Direction.Valid():
		return invalid("direction", fmt.Sprintf("entry %s has direction %q", pt.ID, pt.Direction))
	}
	return nil
}

// ResetAll removes the profile and both lists from the store and from memory.
// It cannot be undone; callers confirm with the user first.
func (l *Ledger) ResetAll() error {
	if err := l.kv.Remove(KeyProfile, KeyTransactions, KeyPersonTransactions); err != nil {
		return fmt.Errorf("clearing store: %w", err)
	}
	l.profile = nil
	l.txs = nil
	l.pts = nil
	l.log.Info("ledger reset")
	return nil
}

func requiredAmount(field, raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, invalid(field, "is required")
	}
	d, err := model.ParseAmount(raw)
	if err != nil {
		return decimal.Zero, invalid(field, fmt.Sprintf("%q is not a number", raw))
	}
	if d.IsZero() {
		return decimal.Zero, invalid(field, "must not be zero")
	}
	return d, nil
}
