// Package ledger tracks the fictitious balance used in simulation mode.
package ledger

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// Ledger is a fiat balance that bets are debited from.
type Ledger interface {
	Balance(ctx context.Context) (decimal.Decimal, error)
	Debit(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error)
}

// Select returns simulated when simulation is on and a Nop ledger otherwise.
func Select(simulation bool, simulated Ledger) Ledger {
	if simulation && simulated != nil {
		return simulated
	}
	return Nop{}
}

// Nop is the real-mode ledger: the wallet balance lives on chain.
type Nop struct{}

func (Nop) Balance(context.Context) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (Nop) Debit(context.Context, decimal.Decimal) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

// Memory is a process-local simulated balance.
type Memory struct {
	mu      sync.Mutex
	balance decimal.Decimal
}

func NewMemory(initial decimal.Decimal) *Memory {
	return &Memory{balance: initial}
}

func (m *Memory) Balance(context.Context) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance, nil
}

// Debit subtracts amount under the lock so concurrent bets cannot lose updates.
func (m *Memory) Debit(_ context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balance = m.balance.Sub(amount)
	return m.balance, nil
}
