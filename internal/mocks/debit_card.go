package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/repayment-engine/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockDebitCardRepository struct {
	mock.Mock
}

func (m *MockDebitCardRepository) Create(ctx context.Context, card *domain.DebitCard) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockDebitCardRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DebitCard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DebitCard), args.Error(1)
}

func (m *MockDebitCardRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.DebitCard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DebitCard), args.Error(1)
}

func (m *MockDebitCardRepository) ListByUserID(ctx context.Context, userID int64) ([]*domain.DebitCard, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DebitCard), args.Error(1)
}

func (m *MockDebitCardRepository) Update(ctx context.Context, card *domain.DebitCard) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockDebitCardRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockDebitCardRepository) CreateTransaction(ctx context.Context, txn *domain.DebitCardTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockDebitCardRepository) GetTransaction(ctx context.Context, id uuid.UUID) (*domain.DebitCardTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DebitCardTransaction), args.Error(1)
}

func (m *MockDebitCardRepository) ListTransactions(ctx context.Context, cardID uuid.UUID) ([]*domain.DebitCardTransaction, error) {
	args := m.Called(ctx, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DebitCardTransaction), args.Error(1)
}

func (m *MockDebitCardRepository) CountTransactions(ctx context.Context, cardID uuid.UUID) (int, error) {
	args := m.Called(ctx, cardID)
	return args.Int(0), args.Error(1)
}

type MockDebitCardService struct {
	mock.Mock
}

func NewMockDebitCardService() *MockDebitCardService {
	return &MockDebitCardService{}
}

func (m *MockDebitCardService) ListCards(ctx context.Context, userID int64) ([]*domain.DebitCard, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DebitCard), args.Error(1)
}

func (m *MockDebitCardService) CreateCard(ctx context.Context, userID int64, cardType string) (*domain.DebitCard, error) {
	args := m.Called(ctx, userID, cardType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DebitCard), args.Error(1)
}

func (m *MockDebitCardService) GetCard(ctx context.Context, userID int64, cardID uuid.UUID) (*domain.DebitCard, error) {
	args := m.Called(ctx, userID, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DebitCard), args.Error(1)
}

func (m *MockDebitCardService) SetCardActive(ctx context.Context, userID int64, cardID uuid.UUID, active bool) (*domain.DebitCard, error) {
	args := m.Called(ctx, userID, cardID, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DebitCard), args.Error(1)
}

func (m *MockDebitCardService) DeleteCard(ctx context.Context, userID int64, cardID uuid.UUID) error {
	args := m.Called(ctx, userID, cardID)
	return args.Error(0)
}

func (m *MockDebitCardService) ListTransactions(ctx context.Context, userID int64, cardID uuid.UUID) ([]*domain.DebitCardTransaction, error) {
	args := m.Called(ctx, userID, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DebitCardTransaction), args.Error(1)
}

func (m *MockDebitCardService) CreateTransaction(ctx context.Context, userID int64, cardID uuid.UUID, amount int64, currencyCode string) (*domain.DebitCardTransaction, error) {
	args := m.Called(ctx, userID, cardID, amount, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DebitCardTransaction), args.Error(1)
}

func (m *MockDebitCardService) GetTransaction(ctx context.Context, userID int64, transactionID uuid.UUID) (*domain.DebitCardTransaction, error) {
	args := m.Called(ctx, userID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DebitCardTransaction), args.Error(1)
}
