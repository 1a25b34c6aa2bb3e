package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segyhp/repayment-engine/pkg/response"
)

// NewRouter wires every HTTP route of the engine. health and cards may be nil.
func NewRouter(loans *LoanHandler, cards *DebitCardHandler, health *HealthHandler, logger *slog.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(logger), MetricsMiddleware, response.CORSMiddleware)

	// Health check
	if health != nil {
		router.HandleFunc("/health", health.Health).Methods(http.MethodGet)
		router.HandleFunc("/health/ready", health.Ready).Methods(http.MethodGet)
	}
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// API routes, each also answers the CORS preflight
	api := router.PathPrefix("/api/v1").Subrouter()

	route(api, http.MethodPost, "/loans", loans.CreateLoan)
	route(api, http.MethodGet, "/loans/{loanId}", loans.GetLoan)
	route(api, http.MethodGet, "/loans/{loanId}/schedule", loans.GetSchedule)
	route(api, http.MethodGet, "/loans/{loanId}/outstanding", loans.GetOutstanding)
	route(api, http.MethodPost, "/loans/{loanId}/repayments", loans.RepayLoan)
	route(api, http.MethodGet, "/loans/{loanId}/repayments", loans.GetRepayments)

	if cards != nil {
		owned := api.NewRoute().Subrouter()
		owned.Use(UserMiddleware)

		route(owned, http.MethodGet, "/debit-cards", cards.ListCards)
		route(owned, http.MethodPost, "/debit-cards", cards.CreateCard)
		route(owned, http.MethodGet, "/debit-cards/{debitCardId}", cards.GetCard)
		route(owned, http.MethodPut, "/debit-cards/{debitCardId}", cards.UpdateCard)
		route(owned, http.MethodDelete, "/debit-cards/{debitCardId}", cards.DeleteCard)
		route(owned, http.MethodGet, "/debit-card-transactions", cards.ListTransactions)
		route(owned, http.MethodPost, "/debit-card-transactions", cards.CreateTransaction)
		route(owned, http.MethodGet, "/debit-card-transactions/{transactionId}", cards.GetTransaction)
	}

	return router
}

func route(r *mux.Router, method, path string, h http.HandlerFunc) {
	r.HandleFunc(path, h).Methods(method, http.MethodOptions)
}
