package token

import (
	"errors"
	"sync"
	"time"
)

// ErrInsufficientBalance is returned when a debit would overdraw the ledger.
var ErrInsufficientBalance = errors.New("insufficient token balance")

// EntryType represents the accounting side of a ledger entry.
type EntryType string

const (
	EntryDebit  EntryType = "DEBIT"
	EntryCredit EntryType = "CREDIT"
)

// Entry is a single recorded ledger movement with the resulting balance.
type Entry struct {
	Type      EntryType `json:"type"`
	Amount    int       `json:"amount"`
	Reason    string    `json:"reason,omitempty"`
	Balance   int       `json:"balance"`
	Timestamp time.Time `json:"timestamp"`
}

// Ledger holds the process-local token balance. The balance is never
// negative: a debit that would overdraw is rejected before any mutation.
// Not persisted across restarts.
type Ledger struct {
	mu      sync.Mutex
	balance int
	entries []Entry
}

// NewLedger creates a ledger seeded with the given balance.
func NewLedger(initial int) *Ledger {
	if initial < 0 {
		initial = 0
	}
	return &Ledger{balance: initial}
}

// Balance returns the current balance.
func (l *Ledger) Balance() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// CanAfford reports whether a debit of cost would succeed. A cost of 0 is
// always affordable.
func (l *Ledger) CanAfford(cost int) bool {
	if cost < 0 {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return cost <= l.balance
}

// Debit atomically decrements the balance by cost. Fails with
// ErrInsufficientBalance and leaves the balance unchanged when cost
// exceeds the balance. No partial debits.
func (l *Ledger) Debit(cost int, reason string) error {
	if cost < 0 {
		return ErrInsufficientBalance
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if cost > l.balance {
		return ErrInsufficientBalance
	}
	l.balance -= cost
	l.entries = append(l.entries, Entry{
		Type:      EntryDebit,
		Amount:    cost,
		Reason:    reason,
		Balance:   l.balance,
		Timestamp: time.Now(),
	})
	return nil
}

// Credit increases the balance. Non-positive amounts are ignored.
func (l *Ledger) Credit(amount int, reason string) {
	if amount <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.balance += amount
	l.entries = append(l.entries, Entry{
		Type:      EntryCredit,
		Amount:    amount,
		Reason:    reason,
		Balance:   l.balance,
		Timestamp: time.Now(),
	})
}

// History returns a copy of all recorded entries, oldest first.
func (l *Ledger) History() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
