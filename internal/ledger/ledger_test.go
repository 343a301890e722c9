package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect(t *testing.T) {
	mem := NewMemory(decimal.NewFromInt(10))
	assert.Same(t, mem, Select(true, mem))
	assert.IsType(t, Nop{}, Select(false, mem))
	assert.IsType(t, Nop{}, Select(true, nil))
}

func TestNopIgnoresDebits(t *testing.T) {
	ctx := context.Background()
	var l Nop
	_, err := l.Debit(ctx, decimal.NewFromInt(5))
	require.NoError(t, err)
	bal, err := l.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, bal.IsZero())
}

func TestMemoryDebit(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(decimal.NewFromInt(100))

	bal, err := m.Debit(ctx, decimal.RequireFromString("5.0315"))
	require.NoError(t, err)
	assert.True(t, bal.Equal(decimal.RequireFromString("94.9685")))

	bal, err = m.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, bal.Equal(decimal.RequireFromString("94.9685")))
}

func TestMemoryConcurrentDebits(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(decimal.NewFromInt(1000))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Debit(ctx, decimal.RequireFromString("1.5"))
		}()
	}
	wg.Wait()

	bal, err := m.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, bal.Equal(decimal.NewFromInt(850)), bal.String())
}
