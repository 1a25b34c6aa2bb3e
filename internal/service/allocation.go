package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/repayment-engine/internal/domain"
	"github.com/segyhp/repayment-engine/pkg/utils"
)

// Allocation is the outcome of applying one repayment to a loan's due schedule
type Allocation struct {
	// Updated holds copies of the schedules the repayment touched, in due-date order
	Updated   []*domain.ScheduledRepayment
	Allocated int64
	// Surplus is the part of the repayment no due schedule could absorb
	Surplus int64
}

// Allocate applies amount to due schedules earliest first until it is exhausted.
// due must be ordered by due date ascending. The inputs are not modified.
func Allocate(due []*domain.ScheduledRepayment, amount int64) Allocation {
	remaining := amount
	updated := make([]*domain.ScheduledRepayment, 0, len(due))

	for _, schedule := range due {
		if remaining <= 0 {
			break
		}

		next := *schedule
		applied := min(remaining, next.OutstandingAmount)
		next.OutstandingAmount -= applied
		next.Status = domain.ScheduleStatusFor(next.Amount, next.OutstandingAmount)
		remaining -= applied
		updated = append(updated, &next)
	}

	return Allocation{
		Updated:   updated,
		Allocated: amount - remaining,
		Surplus:   remaining,
	}
}

// BuildSchedule lays out terms monthly installments for loan, the n-th due n months after processedAt
func BuildSchedule(loan *domain.Loan, now time.Time) []*domain.ScheduledRepayment {
	amounts := utils.SplitPrincipal(loan.Amount, loan.Terms)
	schedules := make([]*domain.ScheduledRepayment, 0, len(amounts))

	for i, amount := range amounts {
		schedules = append(schedules, &domain.ScheduledRepayment{
			ID:                uuid.New(),
			LoanID:            loan.ID,
			Amount:            amount,
			OutstandingAmount: amount,
			CurrencyCode:      loan.CurrencyCode,
			DueDate:           utils.CalculateDueDate(loan.ProcessedAt, i+1),
			Status:            domain.ScheduleStatusDue,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}

	return schedules
}
