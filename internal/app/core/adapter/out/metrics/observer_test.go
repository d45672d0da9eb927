package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
)

func TestObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewObserver(reg)

	deposit := domain.Transaction{Type: domain.TransactionTypeDeposit, Client: 1, Tx: 1}
	withdrawal := domain.Transaction{Type: domain.TransactionTypeWithdrawal, Client: 1, Tx: 2}
	resolve := domain.Transaction{Type: domain.TransactionTypeResolve, Client: 1, Tx: 3}

	o.Observe(deposit, domain.OutcomeApplied)
	o.Observe(deposit, domain.OutcomeApplied)
	o.Observe(withdrawal, domain.OutcomeInsufficientFunds)
	o.Observe(resolve, domain.OutcomeNotDisputed)
	o.Observe(deposit, domain.OutcomeFrozenAccount)

	assert.Equal(t, 2.0, testutil.ToFloat64(o.processed.WithLabelValues("deposit", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.processed.WithLabelValues("withdrawal", "insufficient_funds")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.ignored.WithLabelValues("not_disputed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.ignored.WithLabelValues("frozen_account")))
	assert.Equal(t, 3, testutil.CollectAndCount(o.ignored))
}

func TestObserver_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewObserver(reg)
	assert.Panics(t, func() { NewObserver(reg) })
}
