package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoansCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loan_engine_loans_created_total",
		Help: "Loans originated",
	}, []string{"currency"})

	RepaymentsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loan_engine_repayments_total",
		Help: "Received repayments recorded",
	}, []string{"currency"})

	AmountAllocated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loan_engine_allocated_minor_units_total",
		Help: "Minor units applied to scheduled repayments",
	}, []string{"currency"})

	AmountUnallocated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loan_engine_unallocated_minor_units_total",
		Help: "Minor units received beyond the due schedule and left unapplied",
	}, []string{"currency"})

	LoansRepaid = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loan_engine_loans_repaid_total",
		Help: "Loans whose outstanding amount reached zero",
	}, []string{"currency"})

	ReconcileCorrections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loan_engine_reconcile_corrections_total",
		Help: "Loans whose stored outstanding amount disagreed with their schedule",
	})

	DebitCardsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loan_engine_debit_cards_issued_total",
		Help: "Debit cards created",
	})

	DebitCardTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loan_engine_debit_card_transactions_total",
		Help: "Transactions recorded on debit cards",
	}, []string{"currency"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loan_engine_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "loan_engine_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"method", "route"})
)
