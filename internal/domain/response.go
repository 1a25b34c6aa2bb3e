package domain

import (
	"time"

	"github.com/segyhp/repayment-engine/pkg/money"
)

func NewLoanResponse(loan *Loan) *LoanResponse {
	resp := &LoanResponse{
		ID:                   loan.ID,
		UserID:               loan.UserID,
		Amount:               loan.Amount,
		AmountFormatted:      money.Format(loan.Amount, loan.CurrencyCode),
		CurrencyCode:         loan.CurrencyCode,
		Terms:                loan.Terms,
		OutstandingAmount:    loan.OutstandingAmount,
		OutstandingFormatted: money.Format(loan.OutstandingAmount, loan.CurrencyCode),
		Status:               loan.Status,
		ProcessedAt:          loan.ProcessedAt.Format(time.DateOnly),
	}
	if len(loan.ScheduledRepayments) > 0 {
		resp.ScheduledRepayments = NewScheduleResponses(loan.ScheduledRepayments)
	}
	return resp
}

func NewScheduleResponses(schedules []*ScheduledRepayment) []*ScheduleResponse {
	out := make([]*ScheduleResponse, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, &ScheduleResponse{
			ID:                   s.ID,
			Amount:               s.Amount,
			OutstandingAmount:    s.OutstandingAmount,
			OutstandingFormatted: money.Format(s.OutstandingAmount, s.CurrencyCode),
			CurrencyCode:         s.CurrencyCode,
			DueDate:              s.DueDate.Format(time.DateOnly),
			Status:               s.Status,
		})
	}
	return out
}

func NewRepaymentResponse(r *ReceivedRepayment) *RepaymentResponse {
	return &RepaymentResponse{
		ID:              r.ID,
		LoanID:          r.LoanID,
		Amount:          r.Amount,
		AmountFormatted: money.Format(r.Amount, r.CurrencyCode),
		CurrencyCode:    r.CurrencyCode,
		ReceivedAt:      r.ReceivedAt.Format(time.DateOnly),
	}
}

func NewOutstandingResponse(s *LoanSummary) *OutstandingResponse {
	return &OutstandingResponse{
		LoanID:               s.LoanID,
		OutstandingAmount:    s.OutstandingAmount,
		OutstandingFormatted: money.Format(s.OutstandingAmount, s.CurrencyCode),
		CurrencyCode:         s.CurrencyCode,
		Status:               s.Status,
	}
}
