package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LoanStatus is derived from the loan's aggregate outstanding amount
type LoanStatus string

const (
	LoanStatusDue    LoanStatus = "due"
	LoanStatusRepaid LoanStatus = "repaid"
)

func (s LoanStatus) Valid() bool {
	return s == LoanStatusDue || s == LoanStatusRepaid
}

// Scan rejects values outside the closed status set
func (s *LoanStatus) Scan(src any) error {
	v, err := scanString(src)
	if err != nil {
		return err
	}
	status := LoanStatus(v)
	if !status.Valid() {
		return fmt.Errorf("invalid loan status %q", v)
	}
	*s = status
	return nil
}

// LoanStatusFor derives the loan status from its outstanding amount
func LoanStatusFor(outstanding int64) LoanStatus {
	if outstanding == 0 {
		return LoanStatusRepaid
	}
	return LoanStatusDue
}

// Loan represents a loan entity. Amounts are in minor currency units.
type Loan struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	UserID            int64      `json:"user_id" db:"user_id"`
	Amount            int64      `json:"amount" db:"amount"`
	CurrencyCode      string     `json:"currency_code" db:"currency_code"`
	Terms             int        `json:"terms" db:"terms"`
	OutstandingAmount int64      `json:"outstanding_amount" db:"outstanding_amount"`
	Status            LoanStatus `json:"status" db:"status"`
	ProcessedAt       time.Time  `json:"processed_at" db:"processed_at"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`

	ScheduledRepayments []*ScheduledRepayment `json:"scheduled_repayments,omitempty" db:"-"`
}

// LoanSummary is the cached view of a loan's balance
type LoanSummary struct {
	LoanID            uuid.UUID  `json:"loan_id"`
	CurrencyCode      string     `json:"currency_code"`
	OutstandingAmount int64      `json:"outstanding_amount"`
	Status            LoanStatus `json:"status"`
	// UpdatedAt orders summaries of the same loan, the cache never replaces a newer one
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *Loan) Summary() *LoanSummary {
	return &LoanSummary{
		LoanID:            l.ID,
		CurrencyCode:      l.CurrencyCode,
		OutstandingAmount: l.OutstandingAmount,
		Status:            l.Status,
		UpdatedAt:         l.UpdatedAt,
	}
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	UserID       int64  `json:"user_id" validate:"required,gt=0"`
	Amount       int64  `json:"amount" validate:"required,gt=0"`
	CurrencyCode string `json:"currency_code" validate:"required,iso4217"`
	Terms        int    `json:"terms" validate:"required,gt=0"`
	ProcessedAt  string `json:"processed_at" validate:"required,datetime=2006-01-02"`
}

type LoanResponse struct {
	ID                   uuid.UUID           `json:"id"`
	UserID               int64               `json:"user_id"`
	Amount               int64               `json:"amount"`
	AmountFormatted      string              `json:"amount_formatted"`
	CurrencyCode         string              `json:"currency_code"`
	Terms                int                 `json:"terms"`
	OutstandingAmount    int64               `json:"outstanding_amount"`
	OutstandingFormatted string              `json:"outstanding_formatted"`
	Status               LoanStatus          `json:"status"`
	ProcessedAt          string              `json:"processed_at"`
	ScheduledRepayments  []*ScheduleResponse `json:"scheduled_repayments,omitempty"`
}

type OutstandingResponse struct {
	LoanID               uuid.UUID  `json:"loan_id"`
	OutstandingAmount    int64      `json:"outstanding_amount"`
	OutstandingFormatted string     `json:"outstanding_formatted"`
	CurrencyCode         string     `json:"currency_code"`
	Status               LoanStatus `json:"status"`
}
