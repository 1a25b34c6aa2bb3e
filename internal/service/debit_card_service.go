package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/repayment-engine/internal/domain"
	"github.com/segyhp/repayment-engine/internal/metrics"
	"github.com/segyhp/repayment-engine/internal/repository"
	customError "github.com/segyhp/repayment-engine/pkg/errors"
	"github.com/segyhp/repayment-engine/pkg/money"
	"github.com/segyhp/repayment-engine/pkg/utils"
)

const (
	cardValidityYears = 3
	// attempts at drawing a card number nobody holds yet
	maxNumberAttempts = 5
)

// DebitCardService manages a user's debit cards and the transactions recorded on them.
// Every operation is scoped to the calling user; touching another user's card is forbidden.
type DebitCardService struct {
	repo   repository.DebitCardRepository
	tx     repository.Transactor
	logger *slog.Logger
	now    func() time.Time
	number func(cardType string) (string, error)
}

func NewDebitCardService(repo repository.DebitCardRepository, tx repository.Transactor, logger *slog.Logger) *DebitCardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DebitCardService{
		repo:   repo,
		tx:     tx,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		number: func(cardType string) (string, error) {
			return utils.GenerateCardNumber(utils.IssuerPrefix(cardType))
		},
	}
}

// ListCards returns the user's cards, oldest first
func (s *DebitCardService) ListCards(ctx context.Context, userID int64) ([]*domain.DebitCard, error) {
	cards, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, translate(err)
	}
	return cards, nil
}

// CreateCard issues an active card of cardType to the user
func (s *DebitCardService) CreateCard(ctx context.Context, userID int64, cardType string) (*domain.DebitCard, error) {
	cardType = strings.TrimSpace(cardType)
	switch {
	case userID <= 0:
		return nil, customError.WrapValidation("user_id must be greater than 0")
	case cardType == "":
		return nil, customError.WrapValidation("type is required")
	case len(cardType) > 50:
		return nil, customError.WrapValidation("type must be at most 50 characters")
	}

	now := s.now()
	card := &domain.DebitCard{
		ID:             uuid.New(),
		UserID:         userID,
		Type:           cardType,
		ExpirationDate: now.AddDate(cardValidityYears, 0, 0),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var err error
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		if card.Number, err = s.number(cardType); err != nil {
			break
		}

		err = s.repo.Create(ctx, card)
		if !repository.IsUniqueViolation(err) {
			break
		}
		s.logger.WarnContext(ctx, "card number already issued, drawing another", "attempt", attempt)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "create debit card failed", "user_id", userID, "error", err)
		return nil, translate(err)
	}

	metrics.DebitCardsIssued.Inc()
	s.logger.InfoContext(ctx, "debit card created",
		"card_id", card.ID, "user_id", userID, "type", cardType, "number", utils.MaskCardNumber(card.Number))

	return card, nil
}

// GetCard returns one of the user's cards
func (s *DebitCardService) GetCard(ctx context.Context, userID int64, cardID uuid.UUID) (*domain.DebitCard, error) {
	return s.ownedCard(ctx, userID, cardID, false)
}

// SetCardActive enables or disables one of the user's cards. Repeating the current state is a no-op.
func (s *DebitCardService) SetCardActive(ctx context.Context, userID int64, cardID uuid.UUID, active bool) (*domain.DebitCard, error) {
	var card *domain.DebitCard

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		card, err = s.ownedCard(ctx, userID, cardID, true)
		if err != nil {
			return err
		}

		if card.IsActive() == active {
			return nil
		}

		now := s.now()
		if active {
			card.DisabledAt = nil
		} else {
			card.DisabledAt = &now
		}
		card.UpdatedAt = now
		return s.repo.Update(ctx, card)
	})
	if err != nil {
		return nil, translate(err)
	}

	s.logger.InfoContext(ctx, "debit card updated", "card_id", cardID, "user_id", userID, "active", active)
	return card, nil
}

// DeleteCard soft-deletes one of the user's cards. Cards with transactions are kept.
func (s *DebitCardService) DeleteCard(ctx context.Context, userID int64, cardID uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// the lock keeps a transaction from landing between the count and the delete
		if _, err := s.ownedCard(ctx, userID, cardID, true); err != nil {
			return err
		}

		count, err := s.repo.CountTransactions(ctx, cardID)
		if err != nil {
			return err
		}
		if count > 0 {
			return customError.WrapDebitCardHasTransactions(cardID.String(), count)
		}

		return s.repo.SoftDelete(ctx, cardID, s.now())
	})
	if err != nil {
		return translate(err)
	}

	s.logger.InfoContext(ctx, "debit card deleted", "card_id", cardID, "user_id", userID)
	return nil
}

// ListTransactions returns the transactions of one of the user's cards, oldest first
func (s *DebitCardService) ListTransactions(ctx context.Context, userID int64, cardID uuid.UUID) ([]*domain.DebitCardTransaction, error) {
	if _, err := s.ownedCard(ctx, userID, cardID, false); err != nil {
		return nil, err
	}

	txns, err := s.repo.ListTransactions(ctx, cardID)
	if err != nil {
		return nil, translate(err)
	}
	return txns, nil
}

// CreateTransaction records a spend on one of the user's cards
func (s *DebitCardService) CreateTransaction(ctx context.Context, userID int64, cardID uuid.UUID, amount int64, currencyCode string) (*domain.DebitCardTransaction, error) {
	currencyCode = strings.ToUpper(currencyCode)
	switch {
	case amount <= 0:
		return nil, customError.WrapValidation("amount must be greater than 0, got %d", amount)
	case !money.IsSupported(currencyCode):
		return nil, customError.WrapValidation("unsupported currency code %q", currencyCode)
	}

	txn := &domain.DebitCardTransaction{
		ID:           uuid.New(),
		DebitCardID:  cardID,
		Amount:       amount,
		CurrencyCode: currencyCode,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.ownedCard(ctx, userID, cardID, true); err != nil {
			return err
		}

		txn.CreatedAt = s.now()
		return s.repo.CreateTransaction(ctx, txn)
	})
	if err != nil {
		if customError.Code(err) == "" {
			s.logger.ErrorContext(ctx, "create debit card transaction failed", "card_id", cardID, "error", err)
		}
		return nil, translate(err)
	}

	metrics.DebitCardTransactions.WithLabelValues(currencyCode).Inc()
	s.logger.InfoContext(ctx, "debit card transaction recorded",
		"transaction_id", txn.ID, "card_id", cardID, "amount", amount, "currency", currencyCode)

	return txn, nil
}

// GetTransaction returns a transaction recorded on one of the user's cards
func (s *DebitCardService) GetTransaction(ctx context.Context, userID int64, transactionID uuid.UUID) (*domain.DebitCardTransaction, error) {
	txn, err := s.repo.GetTransaction(ctx, transactionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, customError.WrapTransactionNotFound(transactionID.String())
	}
	if err != nil {
		return nil, translate(err)
	}

	if _, err := s.ownedCard(ctx, userID, txn.DebitCardID, false); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *DebitCardService) ownedCard(ctx context.Context, userID int64, cardID uuid.UUID, lock bool) (*domain.DebitCard, error) {
	get := s.repo.GetByID
	if lock {
		get = s.repo.GetByIDForUpdate
	}

	card, err := get(ctx, cardID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, customError.WrapDebitCardNotFound(cardID.String())
	}
	if err != nil {
		return nil, translate(err)
	}

	if !card.OwnedBy(userID) {
		s.logger.WarnContext(ctx, "debit card access denied", "card_id", cardID, "user_id", userID)
		return nil, customError.WrapForbidden(cardID.String())
	}
	return card, nil
}
