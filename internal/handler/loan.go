package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/segyhp/repayment-engine/internal/domain"
	"github.com/segyhp/repayment-engine/pkg/response"
	"github.com/segyhp/repayment-engine/pkg/utils"
)

// LoanService is the part of service.LoanService the HTTP layer drives
type LoanService interface {
	CreateLoan(ctx context.Context, userID int64, amount int64, currencyCode string, terms int, processedAt time.Time) (*domain.Loan, error)
	RepayLoan(ctx context.Context, loanID uuid.UUID, amount int64, currencyCode string, receivedAt time.Time) (*domain.ReceivedRepayment, error)
	GetLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error)
	GetSchedule(ctx context.Context, loanID uuid.UUID) ([]*domain.ScheduledRepayment, error)
	GetRepayments(ctx context.Context, loanID uuid.UUID) ([]*domain.ReceivedRepayment, error)
	GetOutstanding(ctx context.Context, loanID uuid.UUID) (*domain.LoanSummary, error)
}

type LoanHandler struct {
	service   LoanService
	validator *validator.Validate
	logger    *slog.Logger
}

func NewLoanHandler(service LoanService, logger *slog.Logger) *LoanHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoanHandler{
		service:   service,
		validator: validator.New(),
		logger:    logger,
	}
}

// CreateLoan handles POST /api/v1/loans
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLoanRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	// validated as YYYY-MM-DD above
	processedAt, _ := utils.ParseDate(req.ProcessedAt)

	loan, err := h.service.CreateLoan(r.Context(), req.UserID, req.Amount, req.CurrencyCode, req.Terms, processedAt)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Created(w, domain.NewLoanResponse(loan))
}

// GetLoan handles GET /api/v1/loans/{loanId}
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, ok := loanIDFrom(w, r)
	if !ok {
		return
	}

	loan, err := h.service.GetLoan(r.Context(), loanID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, domain.NewLoanResponse(loan))
}

// GetSchedule handles GET /api/v1/loans/{loanId}/schedule
func (h *LoanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	loanID, ok := loanIDFrom(w, r)
	if !ok {
		return
	}

	schedules, err := h.service.GetSchedule(r.Context(), loanID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, domain.NewScheduleResponses(schedules))
}

// GetOutstanding handles GET /api/v1/loans/{loanId}/outstanding
func (h *LoanHandler) GetOutstanding(w http.ResponseWriter, r *http.Request) {
	loanID, ok := loanIDFrom(w, r)
	if !ok {
		return
	}

	summary, err := h.service.GetOutstanding(r.Context(), loanID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, domain.NewOutstandingResponse(summary))
}

// RepayLoan handles POST /api/v1/loans/{loanId}/repayments
func (h *LoanHandler) RepayLoan(w http.ResponseWriter, r *http.Request) {
	loanID, ok := loanIDFrom(w, r)
	if !ok {
		return
	}

	var req domain.RepayLoanRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	receivedAt, _ := utils.ParseDate(req.ReceivedAt)

	repayment, err := h.service.RepayLoan(r.Context(), loanID, req.Amount, req.CurrencyCode, receivedAt)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Created(w, domain.NewRepaymentResponse(repayment))
}

// GetRepayments handles GET /api/v1/loans/{loanId}/repayments
func (h *LoanHandler) GetRepayments(w http.ResponseWriter, r *http.Request) {
	loanID, ok := loanIDFrom(w, r)
	if !ok {
		return
	}

	repayments, err := h.service.GetRepayments(r.Context(), loanID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	out := make([]*domain.RepaymentResponse, 0, len(repayments))
	for _, repayment := range repayments {
		out = append(out, domain.NewRepaymentResponse(repayment))
	}
	response.Success(w, out)
}

func loanIDFrom(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	return pathUUID(w, r, "loanId", "INVALID_LOAN_ID", "Invalid loan ID")
}
