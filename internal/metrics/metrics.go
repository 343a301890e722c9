// Package metrics exposes bet and claim results to Prometheus.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"predictionBot/internal/model"
)

// Recorder implements strategy.Metrics on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	bets      *prometheus.CounterVec
	betFees   prometheus.Histogram
	claims    *prometheus.CounterVec
	claimFees prometheus.Counter
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		bets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prediction_bets_total",
			Help: "bets submitted by direction and on-chain result",
		}, []string{"direction", "executed"}),
		betFees: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_bet_gas_fee_native",
			Help:    "gas fee paid per bet in native token",
			Buckets: []float64{0.00005, 0.0001, 0.0002, 0.0005, 0.001, 0.005},
		}),
		claims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prediction_claims_total",
			Help: "claim attempts by result",
		}, []string{"result"}),
		claimFees: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prediction_claim_gas_fee_native_total",
			Help: "gas fee paid for claims in native token",
		}),
	}
	r.registry.MustRegister(r.bets, r.betFees, r.claims, r.claimFees)
	return r
}

// Registry returns the registry the recorder writes to.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) ObserveBet(dir model.Direction, executed bool, fee decimal.Decimal) {
	r.bets.WithLabelValues(string(dir), strconv.FormatBool(executed)).Inc()
	r.betFees.Observe(fee.InexactFloat64())
}

func (r *Recorder) ObserveClaim(outcome model.ClaimOutcome, attempted bool) {
	r.claims.WithLabelValues(claimResult(outcome, attempted)).Inc()
	if attempted {
		r.claimFees.Add(outcome.TxGasFee.InexactFloat64())
	}
}

func claimResult(outcome model.ClaimOutcome, attempted bool) string {
	switch {
	case !attempted:
		return "skipped"
	case outcome.TransactionException:
		return "exception"
	case outcome.Succeeded():
		return "claimed"
	default:
		return "reverted"
	}
}
