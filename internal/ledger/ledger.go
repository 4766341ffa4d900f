package ledger

import (
	"errors"
	"sync"
)

var (
	// ErrInsufficientFunds occurs when a debit would drive the balance
	// below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAmount indicates a zero or negative amount was supplied.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// Ledger holds the single wallet balance and acts as the local source of
// truth for withdrawals. The read-check-decrement sequence in Debit is
// guarded by the mutex; the lock is never held across a network call.
type Ledger struct {
	mu       sync.Mutex
	balance  int64
	currency string
}

// New seeds a ledger with the opening balance and currency code. The
// balance is mutated only through Debit and Credit for the lifetime of
// the process.
func New(seed int64, currency string) *Ledger {
	if seed < 0 {
		seed = 0
	}
	return &Ledger{balance: seed, currency: currency}
}

// Debit atomically checks and decreases the balance, returning the new
// balance. A debit that would overdraw the wallet is rejected before any
// mutation.
func (l *Ledger) Debit(amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if amount > l.balance {
		return 0, ErrInsufficientFunds
	}
	l.balance -= amount
	return l.balance, nil
}

// Credit increases the balance and returns the new value. It exists to
// reverse an optimistic debit after a failed payout, so no upper bound is
// enforced.
func (l *Ledger) Credit(amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.balance += amount
	return l.balance, nil
}

// Balance returns a snapshot of the current balance and currency.
func (l *Ledger) Balance() (int64, string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance, l.currency
}
