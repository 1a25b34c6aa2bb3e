package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReceivedRepayment records one incoming payment against a loan. It is never updated.
type ReceivedRepayment struct {
	ID           uuid.UUID `json:"id" db:"id"`
	LoanID       uuid.UUID `json:"loan_id" db:"loan_id"`
	Amount       int64     `json:"amount" db:"amount"`
	CurrencyCode string    `json:"currency_code" db:"currency_code"`
	ReceivedAt   time.Time `json:"received_at" db:"received_at"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type RepayLoanRequest struct {
	Amount       int64  `json:"amount" validate:"required,gt=0"`
	CurrencyCode string `json:"currency_code" validate:"required,iso4217"`
	ReceivedAt   string `json:"received_at" validate:"required,datetime=2006-01-02"`
}

type RepaymentResponse struct {
	ID              uuid.UUID `json:"id"`
	LoanID          uuid.UUID `json:"loan_id"`
	Amount          int64     `json:"amount"`
	AmountFormatted string    `json:"amount_formatted"`
	CurrencyCode    string    `json:"currency_code"`
	ReceivedAt      string    `json:"received_at"`
}
