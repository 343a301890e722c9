package strategy

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"predictionBot/internal/ledger"
	"predictionBot/internal/model"
)

var errBoom = errors.New("boom")

type fixedConverter struct {
	price decimal.Decimal
}

func (c fixedConverter) ToCrypto(fiat decimal.Decimal) decimal.Decimal {
	return fiat.DivRound(c.price, 18)
}

func (c fixedConverter) FeeToFiat(crypto decimal.Decimal) decimal.Decimal {
	return crypto.Mul(c.price)
}

type fakeContract struct {
	mu sync.Mutex

	receipt      model.Receipt
	betErr       error
	claimable    bool
	claimableErr error
	claimOut     model.ClaimOutcome
	claimErr     error

	bets           []placedBet
	claimableCalls int
	claims         [][]model.Epoch
}

type placedBet struct {
	dir    model.Direction
	amount decimal.Decimal
	epoch  model.Epoch
}

func (c *fakeContract) PlaceBet(_ context.Context, dir model.Direction, amount decimal.Decimal, epoch model.Epoch) (model.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bets = append(c.bets, placedBet{dir: dir, amount: amount, epoch: epoch})
	return c.receipt, c.betErr
}

func (c *fakeContract) IsClaimable(context.Context, model.Epoch) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.claimableCalls++
	return c.claimable, c.claimableErr
}

func (c *fakeContract) Claim(_ context.Context, epochs []model.Epoch) (model.ClaimOutcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.claims = append(c.claims, epochs)
	return c.claimOut, c.claimErr
}

type fakeHistory struct {
	mu      sync.Mutex
	err     error
	appends [][]model.BetRecord
}

func (h *fakeHistory) Append(_ context.Context, records []model.BetRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.appends = append(h.appends, records)
	return h.err
}

// orderLedger records whether history had been written when Debit ran.
type orderLedger struct {
	*ledger.Memory
	history        *fakeHistory
	appendsAtDebit int
	err            error
}

func (l *orderLedger) Debit(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	l.history.mu.Lock()
	l.appendsAtDebit = len(l.history.appends)
	l.history.mu.Unlock()
	if l.err != nil {
		return decimal.Zero, l.err
	}
	return l.Memory.Debit(ctx, amount)
}

type fakeMetrics struct {
	bets    int
	claims  int
	skipped int
	lastFee decimal.Decimal
}

func (m *fakeMetrics) ObserveBet(_ model.Direction, _ bool, fee decimal.Decimal) {
	m.bets++
	m.lastFee = fee
}

func (m *fakeMetrics) ObserveClaim(_ model.ClaimOutcome, attempted bool) {
	if attempted {
		m.claims++
		return
	}
	m.skipped++
}
