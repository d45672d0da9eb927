package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
	"github.com/JoeShih716/go-payments-engine/internal/app/core/usecase"
)

// Observer 以 Prometheus counter 記錄交易處理結果
type Observer struct {
	processed *prometheus.CounterVec
	ignored   *prometheus.CounterVec
}

// NewObserver 建立 Observer 並註冊到 reg
func NewObserver(reg prometheus.Registerer) *Observer {
	o := &Observer{
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "transactions_processed_total",
			Help:      "Transactions processed, by type and outcome.",
		}, []string{"type", "outcome"}),
		ignored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "transactions_ignored_total",
			Help:      "Transactions ignored because of a business rule, by reason.",
		}, []string{"reason"}),
	}
	reg.MustRegister(o.processed, o.ignored)
	return o
}

// Observe implements usecase.Observer.
func (o *Observer) Observe(tran domain.Transaction, outcome domain.Outcome) {
	o.processed.WithLabelValues(tran.Type.String(), outcome.String()).Inc()
	if !outcome.Applied() {
		o.ignored.WithLabelValues(outcome.String()).Inc()
	}
}

var _ usecase.Observer = (*Observer)(nil)
