package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/segyhp/repayment-engine/internal/domain"
	customError "github.com/segyhp/repayment-engine/pkg/errors"
	"github.com/segyhp/repayment-engine/pkg/response"
)

// DebitCardService is the part of service.DebitCardService the HTTP layer drives
type DebitCardService interface {
	ListCards(ctx context.Context, userID int64) ([]*domain.DebitCard, error)
	CreateCard(ctx context.Context, userID int64, cardType string) (*domain.DebitCard, error)
	GetCard(ctx context.Context, userID int64, cardID uuid.UUID) (*domain.DebitCard, error)
	SetCardActive(ctx context.Context, userID int64, cardID uuid.UUID, active bool) (*domain.DebitCard, error)
	DeleteCard(ctx context.Context, userID int64, cardID uuid.UUID) error
	ListTransactions(ctx context.Context, userID int64, cardID uuid.UUID) ([]*domain.DebitCardTransaction, error)
	CreateTransaction(ctx context.Context, userID int64, cardID uuid.UUID, amount int64, currencyCode string) (*domain.DebitCardTransaction, error)
	GetTransaction(ctx context.Context, userID int64, transactionID uuid.UUID) (*domain.DebitCardTransaction, error)
}

// DebitCardHandler serves the debit card routes. They all sit behind UserMiddleware.
type DebitCardHandler struct {
	service   DebitCardService
	validator *validator.Validate
	logger    *slog.Logger
}

func NewDebitCardHandler(service DebitCardService, logger *slog.Logger) *DebitCardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DebitCardHandler{
		service:   service,
		validator: validator.New(),
		logger:    logger,
	}
}

// ListCards handles GET /api/v1/debit-cards
func (h *DebitCardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserFromContext(r.Context())

	cards, err := h.service.ListCards(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, domain.NewDebitCardResponses(cards))
}

// CreateCard handles POST /api/v1/debit-cards
func (h *DebitCardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserFromContext(r.Context())

	var req domain.CreateDebitCardRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	card, err := h.service.CreateCard(r.Context(), userID, req.Type)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Created(w, domain.NewDebitCardResponse(card))
}

// GetCard handles GET /api/v1/debit-cards/{debitCardId}
func (h *DebitCardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserFromContext(r.Context())
	cardID, ok := cardIDFrom(w, r)
	if !ok {
		return
	}

	card, err := h.service.GetCard(r.Context(), userID, cardID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, domain.NewDebitCardResponse(card))
}

// UpdateCard handles PUT /api/v1/debit-cards/{debitCardId}
func (h *DebitCardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserFromContext(r.Context())
	cardID, ok := cardIDFrom(w, r)
	if !ok {
		return
	}

	var req domain.UpdateDebitCardRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	card, err := h.service.SetCardActive(r.Context(), userID, cardID, *req.IsActive)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, domain.NewDebitCardResponse(card))
}

// DeleteCard handles DELETE /api/v1/debit-cards/{debitCardId}
func (h *DebitCardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserFromContext(r.Context())
	cardID, ok := cardIDFrom(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteCard(r.Context(), userID, cardID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.NoContent(w)
}

// ListTransactions handles GET /api/v1/debit-card-transactions?debit_card_id=
func (h *DebitCardHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserFromContext(r.Context())

	cardID, err := uuid.Parse(r.URL.Query().Get("debit_card_id"))
	if err != nil {
		writeError(w, r, h.logger, customError.WrapValidation("debit_card_id query parameter must be a card ID"))
		return
	}

	txns, err := h.service.ListTransactions(r.Context(), userID, cardID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, domain.NewDebitCardTransactionResponses(txns))
}

// CreateTransaction handles POST /api/v1/debit-card-transactions
func (h *DebitCardHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserFromContext(r.Context())

	var req domain.CreateDebitCardTransactionRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	// validated as a UUID above
	cardID := uuid.MustParse(req.DebitCardID)

	txn, err := h.service.CreateTransaction(r.Context(), userID, cardID, req.Amount, req.CurrencyCode)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Created(w, domain.NewDebitCardTransactionResponse(txn))
}

// GetTransaction handles GET /api/v1/debit-card-transactions/{transactionId}
func (h *DebitCardHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserFromContext(r.Context())
	transactionID, ok := pathUUID(w, r, "transactionId", "INVALID_TRANSACTION_ID", "Invalid transaction ID")
	if !ok {
		return
	}

	txn, err := h.service.GetTransaction(r.Context(), userID, transactionID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, domain.NewDebitCardTransactionResponse(txn))
}

func cardIDFrom(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	return pathUUID(w, r, "debitCardId", "INVALID_DEBIT_CARD_ID", "Invalid debit card ID")
}
