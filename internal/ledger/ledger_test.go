package ledger

import (
	"sync"
	"testing"
)

func TestDebitAndCredit(t *testing.T) {
	l := New(10_000, "XAF")

	bal, err := l.Debit(1_500)
	if err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	if bal != 8_500 {
		t.Fatalf("expected balance 8500, got %d", bal)
	}

	bal, err = l.Credit(1_500)
	if err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if bal != 10_000 {
		t.Fatalf("expected balance 10000 after credit, got %d", bal)
	}

	amount, currency := l.Balance()
	if amount != 10_000 || currency != "XAF" {
		t.Fatalf("unexpected snapshot: %d %s", amount, currency)
	}
}

func TestDebitRejectsInvalidAmounts(t *testing.T) {
	l := New(1_000, "XAF")

	if _, err := l.Debit(0); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
	}
	if _, err := l.Debit(-50); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount for negative, got %v", err)
	}
	if _, err := l.Credit(0); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount for zero credit, got %v", err)
	}

	if bal, _ := l.Balance(); bal != 1_000 {
		t.Fatalf("rejected operations must not mutate balance, got %d", bal)
	}
}

func TestDebitRejectsOverdraw(t *testing.T) {
	l := New(1_000, "XAF")

	if _, err := l.Debit(1_001); err != ErrInsufficientFunds {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if bal, _ := l.Balance(); bal != 1_000 {
		t.Fatalf("failed debit must leave balance untouched, got %d", bal)
	}
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	const workers = 10
	const amount = int64(10_000)
	l := New(amount*workers, "XAF")

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Debit(amount); err != nil {
				t.Errorf("debit failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if bal, _ := l.Balance(); bal != 0 {
		t.Fatalf("expected fully drained ledger, got %d", bal)
	}
}

func TestConcurrentDebitsAdmitExactlyAvailableFunds(t *testing.T) {
	// Ten workers race for a balance that covers only one of them.
	const workers = 10
	l := New(10_000, "XAF")

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Debit(10_000); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one successful debit, got %d", successes)
	}
	if bal, _ := l.Balance(); bal != 0 {
		t.Fatalf("expected zero balance, got %d", bal)
	}
}
