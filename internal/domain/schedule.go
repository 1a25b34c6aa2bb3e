package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ScheduleStatus of a single installment. Due -> Partial -> Repaid, or Due -> Repaid.
type ScheduleStatus string

const (
	ScheduleStatusDue     ScheduleStatus = "due"
	ScheduleStatusPartial ScheduleStatus = "partial"
	ScheduleStatusRepaid  ScheduleStatus = "repaid"
)

func (s ScheduleStatus) Valid() bool {
	switch s {
	case ScheduleStatusDue, ScheduleStatusPartial, ScheduleStatusRepaid:
		return true
	}
	return false
}

// Scan rejects values outside the closed status set
func (s *ScheduleStatus) Scan(src any) error {
	v, err := scanString(src)
	if err != nil {
		return err
	}
	status := ScheduleStatus(v)
	if !status.Valid() {
		return fmt.Errorf("invalid schedule status %q", v)
	}
	*s = status
	return nil
}

// CanTransitionTo reports whether moving from s to next is allowed. Repaid is terminal.
func (s ScheduleStatus) CanTransitionTo(next ScheduleStatus) bool {
	switch s {
	case ScheduleStatusDue:
		return next == ScheduleStatusPartial || next == ScheduleStatusRepaid
	case ScheduleStatusPartial:
		return next == ScheduleStatusRepaid
	}
	return false
}

// ScheduleStatusFor derives an installment's status from its amount and outstanding balance
func ScheduleStatusFor(amount, outstanding int64) ScheduleStatus {
	switch {
	case outstanding == 0:
		return ScheduleStatusRepaid
	case outstanding < amount:
		return ScheduleStatusPartial
	default:
		return ScheduleStatusDue
	}
}

// ScheduledRepayment represents one installment of a loan's repayment schedule
type ScheduledRepayment struct {
	ID                uuid.UUID      `json:"id" db:"id"`
	LoanID            uuid.UUID      `json:"loan_id" db:"loan_id"`
	Amount            int64          `json:"amount" db:"amount"`
	OutstandingAmount int64          `json:"outstanding_amount" db:"outstanding_amount"`
	CurrencyCode      string         `json:"currency_code" db:"currency_code"`
	DueDate           time.Time      `json:"due_date" db:"due_date"`
	Status            ScheduleStatus `json:"status" db:"status"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at" db:"updated_at"`
}

type ScheduleResponse struct {
	ID                   uuid.UUID      `json:"id"`
	Amount               int64          `json:"amount"`
	OutstandingAmount    int64          `json:"outstanding_amount"`
	OutstandingFormatted string         `json:"outstanding_formatted"`
	CurrencyCode         string         `json:"currency_code"`
	DueDate              string         `json:"due_date"`
	Status               ScheduleStatus `json:"status"`
}

func scanString(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("cannot scan %T into status", src)
	}
}
