package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/repayment-engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dueSchedules(outstanding ...int64) []*domain.ScheduledRepayment {
	loanID := uuid.New()
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	schedules := make([]*domain.ScheduledRepayment, 0, len(outstanding))
	for i, amount := range outstanding {
		schedules = append(schedules, &domain.ScheduledRepayment{
			ID:                uuid.New(),
			LoanID:            loanID,
			Amount:            amount,
			OutstandingAmount: amount,
			CurrencyCode:      "VND",
			DueDate:           start.AddDate(0, i+1, 0),
			Status:            domain.ScheduleStatusDue,
		})
	}
	return schedules
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name        string
		due         []int64
		amount      int64
		outstanding []int64
		statuses    []domain.ScheduleStatus
		allocated   int64
		surplus     int64
	}{
		{
			name:        "exact first installment",
			due:         []int64{100000, 100000, 100000},
			amount:      100000,
			outstanding: []int64{0},
			statuses:    []domain.ScheduleStatus{domain.ScheduleStatusRepaid},
			allocated:   100000,
		},
		{
			name:        "partial first installment",
			due:         []int64{100000, 100000, 100000},
			amount:      50000,
			outstanding: []int64{50000},
			statuses:    []domain.ScheduleStatus{domain.ScheduleStatusPartial},
			allocated:   50000,
		},
		{
			name:        "spills into second installment",
			due:         []int64{100000, 100000, 100000},
			amount:      150000,
			outstanding: []int64{0, 50000},
			statuses:    []domain.ScheduleStatus{domain.ScheduleStatusRepaid, domain.ScheduleStatusPartial},
			allocated:   150000,
		},
		{
			name:        "pays everything with surplus",
			due:         []int64{33, 33, 34},
			amount:      150,
			outstanding: []int64{0, 0, 0},
			statuses:    []domain.ScheduleStatus{domain.ScheduleStatusRepaid, domain.ScheduleStatusRepaid, domain.ScheduleStatusRepaid},
			allocated:   100,
			surplus:     50,
		},
		{
			name:        "nothing due",
			amount:      500,
			outstanding: []int64{},
			statuses:    []domain.ScheduleStatus{},
			surplus:     500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due := dueSchedules(tt.due...)

			result := Allocate(due, tt.amount)

			require.Len(t, result.Updated, len(tt.outstanding))
			for i, schedule := range result.Updated {
				assert.Equal(t, due[i].ID, schedule.ID)
				assert.Equal(t, tt.outstanding[i], schedule.OutstandingAmount)
				assert.Equal(t, tt.statuses[i], schedule.Status)
			}
			assert.Equal(t, tt.allocated, result.Allocated)
			assert.Equal(t, tt.surplus, result.Surplus)
			assert.Equal(t, tt.amount, result.Allocated+result.Surplus)
		})
	}
}

func TestAllocate_DoesNotModifyInput(t *testing.T) {
	due := dueSchedules(100, 100)

	result := Allocate(due, 150)

	require.Len(t, result.Updated, 2)
	for _, schedule := range due {
		assert.Equal(t, int64(100), schedule.OutstandingAmount)
		assert.Equal(t, domain.ScheduleStatusDue, schedule.Status)
	}
	assert.NotSame(t, due[0], result.Updated[0])
}

func TestAllocate_PartialInstallmentIsReduced(t *testing.T) {
	due := dueSchedules(100)
	due[0].OutstandingAmount = 40
	due[0].Status = domain.ScheduleStatusPartial

	result := Allocate(due, 40)

	require.Len(t, result.Updated, 1)
	assert.Equal(t, int64(0), result.Updated[0].OutstandingAmount)
	assert.Equal(t, domain.ScheduleStatusRepaid, result.Updated[0].Status)
	assert.Equal(t, int64(100), result.Updated[0].Amount)
}

func TestAllocate_PartialInstallmentStaysPartial(t *testing.T) {
	due := dueSchedules(100, 100)
	due[0].OutstandingAmount = 60
	due[0].Status = domain.ScheduleStatusPartial

	result := Allocate(due, 20)

	require.Len(t, result.Updated, 1)
	assert.Equal(t, int64(40), result.Updated[0].OutstandingAmount)
	assert.Equal(t, domain.ScheduleStatusPartial, result.Updated[0].Status)
	assert.True(t, due[0].Status.CanTransitionTo(result.Updated[0].Status) || due[0].Status == result.Updated[0].Status)
}

func TestAllocate_StatusFollowsBalance(t *testing.T) {
	for _, amount := range []int64{1, 33, 99, 100, 101, 167, 250, 400} {
		result := Allocate(dueSchedules(100, 67, 100), amount)

		for _, schedule := range result.Updated {
			assert.Equal(t, domain.ScheduleStatusFor(schedule.Amount, schedule.OutstandingAmount), schedule.Status,
				"amount %d schedule %s", amount, schedule.ID)
		}
	}
}

func TestBuildSchedule(t *testing.T) {
	now := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	loan := &domain.Loan{
		ID:           uuid.New(),
		Amount:       100,
		CurrencyCode: "VND",
		Terms:        3,
		ProcessedAt:  time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	schedules := BuildSchedule(loan, now)

	require.Len(t, schedules, 3)

	wantAmounts := []int64{33, 33, 34}
	wantDates := []string{"2024-02-29", "2024-03-31", "2024-04-30"}
	var total int64
	for i, schedule := range schedules {
		assert.Equal(t, loan.ID, schedule.LoanID)
		assert.Equal(t, wantAmounts[i], schedule.Amount)
		assert.Equal(t, schedule.Amount, schedule.OutstandingAmount)
		assert.Equal(t, "VND", schedule.CurrencyCode)
		assert.Equal(t, domain.ScheduleStatusDue, schedule.Status)
		assert.Equal(t, wantDates[i], schedule.DueDate.Format(time.DateOnly))
		assert.Equal(t, now, schedule.CreatedAt)
		total += schedule.Amount
	}
	assert.Equal(t, loan.Amount, total)
}
