package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"predictionBot/internal/model"
)

func newClaim(t *testing.T, c *fakeContract, m *fakeMetrics) *ClaimStrategy {
	t.Helper()
	var metrics Metrics
	if m != nil {
		metrics = m
	}
	s, err := NewClaimStrategy(c, metrics, nil)
	require.NoError(t, err)
	return s
}

func TestClaimDisabledSkipsClaimable(t *testing.T) {
	c := &fakeContract{claimable: true}
	m := &fakeMetrics{}
	s := newClaim(t, c, m)

	out, err := s.Execute(context.Background(), Settings{ClaimRewards: false}, model.NewEpoch(5))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), out.Status)
	assert.True(t, out.TxGasFee.IsZero())
	assert.False(t, out.TransactionException)
	assert.Equal(t, 0, c.claimableCalls)
	assert.Empty(t, c.claims)
	assert.Equal(t, 1, m.skipped)
}

func TestClaimNotClaimable(t *testing.T) {
	c := &fakeContract{claimable: false}
	s := newClaim(t, c, nil)

	out, err := s.Execute(context.Background(), Settings{ClaimRewards: true}, model.NewEpoch(5))
	require.NoError(t, err)
	assert.Equal(t, model.NoClaim().Status, out.Status)
	assert.True(t, out.TxGasFee.IsZero())
	assert.Equal(t, 1, c.claimableCalls)
	assert.Empty(t, c.claims)
}

func TestClaimReturnsContractOutcome(t *testing.T) {
	want := model.ClaimOutcome{
		Status:   1,
		TxGasFee: d("0.0004"),
		TxHash:   "0xdef",
	}
	c := &fakeContract{claimable: true, claimOut: want}
	m := &fakeMetrics{}
	s := newClaim(t, c, m)

	out, err := s.Execute(context.Background(), Settings{ClaimRewards: true}, model.NewEpoch(88))
	require.NoError(t, err)
	assert.Equal(t, want, out)

	require.Len(t, c.claims, 1)
	require.Len(t, c.claims[0], 1)
	assert.Equal(t, "88", c.claims[0][0].String())
	assert.Equal(t, 1, m.claims)
}

func TestClaimExceptionPassedThrough(t *testing.T) {
	want := model.ClaimOutcome{TransactionException: true, TxGasFee: d("0")}
	c := &fakeContract{claimable: true, claimOut: want}
	s := newClaim(t, c, nil)

	out, err := s.Execute(context.Background(), Settings{ClaimRewards: true}, model.NewEpoch(1))
	require.NoError(t, err)
	assert.True(t, out.TransactionException)
}

func TestClaimErrorsPropagate(t *testing.T) {
	c := &fakeContract{claimableErr: errBoom}
	s := newClaim(t, c, nil)
	_, err := s.Execute(context.Background(), Settings{ClaimRewards: true}, model.NewEpoch(1))
	assert.ErrorIs(t, err, ErrContract)
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, c.claims)

	c = &fakeContract{claimable: true, claimErr: errBoom}
	s = newClaim(t, c, nil)
	_, err = s.Execute(context.Background(), Settings{ClaimRewards: true}, model.NewEpoch(1))
	assert.ErrorIs(t, err, errBoom)
}
