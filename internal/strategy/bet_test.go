package strategy

import (
	"context"
	"math/big"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"predictionBot/internal/ledger"
	"predictionBot/internal/model"
	"predictionBot/internal/storage"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func successReceipt() model.Receipt {
	return model.Receipt{
		Status:            1,
		GasUsed:           big.NewInt(21000),
		EffectiveGasPrice: big.NewInt(5_000_000_000),
		TxHash:            "0xabc",
	}
}

type betFixture struct {
	contract *fakeContract
	history  *fakeHistory
	ledger   *orderLedger
	metrics  *fakeMetrics
}

func newBetFixture(rcpt model.Receipt) *betFixture {
	h := &fakeHistory{}
	return &betFixture{
		contract: &fakeContract{receipt: rcpt},
		history:  h,
		ledger:   &orderLedger{Memory: ledger.NewMemory(d("1000")), history: h},
		metrics:  &fakeMetrics{},
	}
}

func (f *betFixture) strategy(t *testing.T, dir model.Direction) *BetStrategy {
	t.Helper()
	s, err := NewBetStrategy(dir, BetDeps{
		Converter: fixedConverter{price: d("500")},
		Contract:  f.contract,
		History:   f.history,
		Ledger:    f.ledger,
		Metrics:   f.metrics,
	}, nil)
	require.NoError(t, err)
	return s
}

func TestBetDownSuccess(t *testing.T) {
	f := newBetFixture(successReceipt())
	s := f.strategy(t, model.DirectionDown)

	executed, err := s.Execute(context.Background(), Settings{BetAmount: d("5")}, model.NewEpoch(1234))
	require.NoError(t, err)
	assert.True(t, executed)

	require.Len(t, f.contract.bets, 1)
	bet := f.contract.bets[0]
	assert.Equal(t, model.DirectionDown, bet.dir)
	assert.True(t, bet.amount.Equal(d("0.01")))
	assert.Equal(t, "1234", bet.epoch.String())

	require.Len(t, f.history.appends, 1)
	require.Len(t, f.history.appends[0], 1)
	rec := f.history.appends[0][0]
	assert.Equal(t, "1234", rec.Round)
	assert.Equal(t, model.DirectionDown, rec.Bet)
	assert.True(t, rec.BetExecuted)
	assert.True(t, rec.BetAmount.Equal(d("0.01")))
	assert.True(t, rec.TxGasFee.Equal(d("0.000105")))
	assert.Equal(t, "0xabc", rec.TxHash)
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.RecordedAt.IsZero())

	// 1000 - 5 - 0.000105*500
	balance, err := f.ledger.Balance(context.Background())
	require.NoError(t, err)
	assert.True(t, balance.Equal(d("994.9475")), balance.String())
	assert.Equal(t, 0, f.ledger.appendsAtDebit)
	assert.Equal(t, 1, f.metrics.bets)
}

func TestBetUpRecordsDirection(t *testing.T) {
	f := newBetFixture(successReceipt())
	s := f.strategy(t, model.DirectionUp)

	_, err := s.Execute(context.Background(), Settings{BetAmount: d("5")}, model.NewEpoch(9))
	require.NoError(t, err)
	require.Len(t, f.history.appends, 1)
	assert.Equal(t, model.DirectionUp, f.history.appends[0][0].Bet)
	assert.Equal(t, model.DirectionUp, f.contract.bets[0].dir)
}

func TestBetRevertStillDebitsAndRecords(t *testing.T) {
	rcpt := model.Receipt{
		Status:            0,
		GasUsed:           big.NewInt(54321),
		EffectiveGasPrice: big.NewInt(3_000_000_000),
	}
	f := newBetFixture(rcpt)
	s := f.strategy(t, model.DirectionUp)

	executed, err := s.Execute(context.Background(), Settings{BetAmount: d("5")}, model.NewEpoch(10))
	require.NoError(t, err)
	assert.False(t, executed)

	rec := f.history.appends[0][0]
	assert.False(t, rec.BetExecuted)
	assert.True(t, rec.TxGasFee.Equal(d("0.000162963")))

	balance, _ := f.ledger.Balance(context.Background())
	assert.True(t, balance.Equal(d("1000").Sub(d("5")).Sub(d("0.000162963").Mul(d("500")))), balance.String())
}

func TestBetExceptionZeroFee(t *testing.T) {
	f := newBetFixture(model.Receipt{TransactionException: true, Err: "send tx: nonce too low"})
	s := f.strategy(t, model.DirectionDown)

	executed, err := s.Execute(context.Background(), Settings{BetAmount: d("5")}, model.NewEpoch(11))
	require.NoError(t, err)
	assert.False(t, executed)

	rec := f.history.appends[0][0]
	assert.False(t, rec.BetExecuted)
	assert.True(t, rec.TxGasFee.IsZero())

	balance, _ := f.ledger.Balance(context.Background())
	assert.True(t, balance.Equal(d("995")), balance.String())
}

func TestBetRealModeLeavesNoBalance(t *testing.T) {
	h := &fakeHistory{}
	s, err := NewBetStrategy(model.DirectionDown, BetDeps{
		Converter: fixedConverter{price: d("500")},
		Contract:  &fakeContract{receipt: successReceipt()},
		History:   h,
		Ledger:    ledger.Select(false, ledger.NewMemory(d("1000"))),
	}, nil)
	require.NoError(t, err)

	executed, err := s.Execute(context.Background(), Settings{BetAmount: d("5")}, model.NewEpoch(1))
	require.NoError(t, err)
	assert.True(t, executed)
	assert.Len(t, h.appends, 1)
}

func TestBetContractErrorPropagates(t *testing.T) {
	f := newBetFixture(model.Receipt{})
	f.contract.betErr = errBoom
	s := f.strategy(t, model.DirectionDown)

	_, err := s.Execute(context.Background(), Settings{BetAmount: d("5")}, model.NewEpoch(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContract)
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, f.history.appends)

	balance, _ := f.ledger.Balance(context.Background())
	assert.True(t, balance.Equal(d("1000")))
}

func TestBetLedgerErrorPropagates(t *testing.T) {
	f := newBetFixture(successReceipt())
	f.ledger.err = errBoom
	s := f.strategy(t, model.DirectionDown)

	_, err := s.Execute(context.Background(), Settings{BetAmount: d("5")}, model.NewEpoch(1))
	assert.ErrorIs(t, err, ErrLedger)
	assert.Empty(t, f.history.appends)
}

func TestBetHistoryFailureKeepsDebit(t *testing.T) {
	f := newBetFixture(successReceipt())
	f.history.err = errBoom
	s := f.strategy(t, model.DirectionDown)

	executed, err := s.Execute(context.Background(), Settings{BetAmount: d("5")}, model.NewEpoch(1))
	require.Error(t, err)
	assert.False(t, executed)
	assert.ErrorIs(t, err, ErrHistory)
	assert.ErrorIs(t, err, errBoom)
	assert.Len(t, f.history.appends, 1)

	balance, _ := f.ledger.Balance(context.Background())
	assert.True(t, balance.Equal(d("994.9475")), balance.String())
}

func TestBetMirrorFailureKeepsResult(t *testing.T) {
	primary := storage.NewJsonlStorage(filepath.Join(t.TempDir(), "history.jsonl"))
	mirror := &fakeHistory{err: errBoom}
	mem := ledger.NewMemory(d("1000"))
	s, err := NewBetStrategy(model.DirectionUp, BetDeps{
		Converter: fixedConverter{price: d("500")},
		Contract:  &fakeContract{receipt: successReceipt()},
		History:   storage.NewTee(primary, nil, mirror),
		Ledger:    mem,
	}, nil)
	require.NoError(t, err)

	executed, err := s.Execute(context.Background(), Settings{BetAmount: d("5")}, model.NewEpoch(7))
	require.NoError(t, err)
	assert.True(t, executed)
	assert.Len(t, mirror.appends, 1)

	saved, err := primary.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "7", saved[0].Round)
	assert.True(t, saved[0].BetExecuted)
}

func TestBetUsesSettingsPerCall(t *testing.T) {
	f := newBetFixture(model.Receipt{TransactionException: true})
	s := f.strategy(t, model.DirectionUp)

	_, err := s.Execute(context.Background(), Settings{BetAmount: d("5")}, model.NewEpoch(1))
	require.NoError(t, err)
	_, err = s.Execute(context.Background(), Settings{BetAmount: d("10")}, model.NewEpoch(2))
	require.NoError(t, err)

	assert.True(t, f.contract.bets[0].amount.Equal(d("0.01")))
	assert.True(t, f.contract.bets[1].amount.Equal(d("0.02")))
	balance, _ := f.ledger.Balance(context.Background())
	assert.True(t, balance.Equal(d("985")))
}

func TestBetConcurrentDebits(t *testing.T) {
	f := newBetFixture(successReceipt())
	s := f.strategy(t, model.DirectionDown)
	s.deps.Metrics = nil

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Execute(context.Background(), Settings{BetAmount: d("5")}, model.NewEpoch(uint64(i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	balance, _ := f.ledger.Balance(context.Background())
	assert.True(t, balance.Equal(d("1000").Sub(d("5.0525").Mul(d("50")))), balance.String())
	assert.Len(t, f.history.appends, 50)
}

func TestNewBetStrategyValidation(t *testing.T) {
	_, err := NewBetStrategy(model.Direction("SIDEWAYS"), BetDeps{}, nil)
	assert.Error(t, err)
	_, err = NewBetStrategy(model.DirectionUp, BetDeps{}, nil)
	assert.Error(t, err)
}
