package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"predictionBot/internal/model"
)

func TestObserveBet(t *testing.T) {
	r := NewRecorder()
	r.ObserveBet(model.DirectionUp, true, decimal.RequireFromString("0.000105"))
	r.ObserveBet(model.DirectionUp, false, decimal.Zero)
	r.ObserveBet(model.DirectionDown, true, decimal.RequireFromString("0.0002"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.bets.WithLabelValues("BET_UP", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.bets.WithLabelValues("BET_UP", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.bets.WithLabelValues("BET_DOWN", "true")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.betFees))
}

func TestObserveClaim(t *testing.T) {
	r := NewRecorder()
	r.ObserveClaim(model.NoClaim(), false)
	r.ObserveClaim(model.ClaimOutcome{Status: 1, TxGasFee: decimal.RequireFromString("0.0004")}, true)
	r.ObserveClaim(model.ClaimOutcome{TransactionException: true, TxGasFee: decimal.Zero}, true)
	r.ObserveClaim(model.ClaimOutcome{Status: 0, TxGasFee: decimal.RequireFromString("0.0001")}, true)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.claims.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.claims.WithLabelValues("claimed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.claims.WithLabelValues("exception")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.claims.WithLabelValues("reverted")))
	assert.InDelta(t, 0.0005, testutil.ToFloat64(r.claimFees), 1e-12)
}

func TestHandler(t *testing.T) {
	r := NewRecorder()
	r.ObserveBet(model.DirectionDown, true, decimal.Zero)

	var healthy atomic.Bool
	healthy.Store(true)
	srv := httptest.NewServer(NewHandler(r.Registry(), func(context.Context) error {
		if !healthy.Load() {
			return errors.New("rpc down")
		}
		return nil
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `prediction_bets_total{direction="BET_DOWN",executed="true"} 1`))

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	healthy.Store(false)
	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), "rpc down")
}
