package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_monitor_cycles_total",
		Help: "Количество циклов сверки платежей по результату.",
	}, []string{"result"})

	activationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_monitor_activations_total",
		Help: "Количество активаций подписок по входящим платежам.",
	})

	skippedTransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_monitor_skipped_transactions_total",
		Help: "Количество пропущенных транзакций по причине.",
	}, []string{"reason"})
)
