package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/repayment-engine/pkg/money"
)

// DebitCard is a card issued to a user. A card is active while DisabledAt is nil
// and hidden from every query once DeletedAt is set.
type DebitCard struct {
	ID             uuid.UUID  `db:"id"`
	UserID         int64      `db:"user_id"`
	Number         string     `db:"number"`
	Type           string     `db:"type"`
	ExpirationDate time.Time  `db:"expiration_date"`
	DisabledAt     *time.Time `db:"disabled_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
	DeletedAt      *time.Time `db:"deleted_at"`
}

func (c *DebitCard) IsActive() bool {
	return c.DisabledAt == nil
}

func (c *DebitCard) OwnedBy(userID int64) bool {
	return c.UserID == userID
}

// DebitCardTransaction is a spend recorded against a debit card. It is never updated.
type DebitCardTransaction struct {
	ID           uuid.UUID `db:"id"`
	DebitCardID  uuid.UUID `db:"debit_card_id"`
	Amount       int64     `db:"amount"`
	CurrencyCode string    `db:"currency_code"`
	CreatedAt    time.Time `db:"created_at"`
}

type CreateDebitCardRequest struct {
	Type string `json:"type" validate:"required,max=50"`
}

type UpdateDebitCardRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type CreateDebitCardTransactionRequest struct {
	DebitCardID  string `json:"debit_card_id" validate:"required,uuid"`
	Amount       int64  `json:"amount" validate:"required,gt=0"`
	CurrencyCode string `json:"currency_code" validate:"required,iso4217"`
}

// DebitCardResponse leaves out the owner
type DebitCardResponse struct {
	ID             uuid.UUID `json:"id"`
	Number         string    `json:"number"`
	Type           string    `json:"type"`
	ExpirationDate string    `json:"expiration_date"`
	IsActive       bool      `json:"is_active"`
}

type DebitCardTransactionResponse struct {
	ID              uuid.UUID `json:"id"`
	DebitCardID     uuid.UUID `json:"debit_card_id"`
	Amount          int64     `json:"amount"`
	AmountFormatted string    `json:"amount_formatted"`
	CurrencyCode    string    `json:"currency_code"`
	CreatedAt       time.Time `json:"created_at"`
}

func NewDebitCardResponse(card *DebitCard) *DebitCardResponse {
	return &DebitCardResponse{
		ID:             card.ID,
		Number:         card.Number,
		Type:           card.Type,
		ExpirationDate: card.ExpirationDate.Format(time.DateOnly),
		IsActive:       card.IsActive(),
	}
}

func NewDebitCardResponses(cards []*DebitCard) []*DebitCardResponse {
	out := make([]*DebitCardResponse, 0, len(cards))
	for _, card := range cards {
		out = append(out, NewDebitCardResponse(card))
	}
	return out
}

func NewDebitCardTransactionResponse(txn *DebitCardTransaction) *DebitCardTransactionResponse {
	return &DebitCardTransactionResponse{
		ID:              txn.ID,
		DebitCardID:     txn.DebitCardID,
		Amount:          txn.Amount,
		AmountFormatted: money.Format(txn.Amount, txn.CurrencyCode),
		CurrencyCode:    txn.CurrencyCode,
		CreatedAt:       txn.CreatedAt,
	}
}

func NewDebitCardTransactionResponses(txns []*DebitCardTransaction) []*DebitCardTransactionResponse {
	out := make([]*DebitCardTransactionResponse, 0, len(txns))
	for _, txn := range txns {
		out = append(out, NewDebitCardTransactionResponse(txn))
	}
	return out
}
