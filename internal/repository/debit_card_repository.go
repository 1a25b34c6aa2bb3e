package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/segyhp/repayment-engine/internal/domain"
)

const debitCardColumns = `id, user_id, number, type, expiration_date, disabled_at, created_at, updated_at, deleted_at`

const debitCardTransactionColumns = `id, debit_card_id, amount, currency_code, created_at`

type debitCardRepository struct {
	db *sqlx.DB
}

func NewDebitCardRepository(db *sqlx.DB) DebitCardRepository {
	return &debitCardRepository{db: db}
}

func (r *debitCardRepository) Create(ctx context.Context, card *domain.DebitCard) error {
	q := conn(ctx, r.db)
	query := q.Rebind(`
		INSERT INTO debit_cards (` + debitCardColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := q.ExecContext(ctx, query,
		card.ID,
		card.UserID,
		card.Number,
		card.Type,
		card.ExpirationDate,
		card.DisabledAt,
		card.CreatedAt,
		card.UpdatedAt,
		card.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert debit card: %w", err)
	}

	return nil
}

func (r *debitCardRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DebitCard, error) {
	return r.get(ctx, id, false)
}

func (r *debitCardRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.DebitCard, error) {
	return r.get(ctx, id, true)
}

func (r *debitCardRepository) get(ctx context.Context, id uuid.UUID, lock bool) (*domain.DebitCard, error) {
	q := conn(ctx, r.db)
	query := `SELECT ` + debitCardColumns + ` FROM debit_cards WHERE id = ? AND deleted_at IS NULL`
	if lock && q.DriverName() != driverSQLite {
		query += ` FOR UPDATE`
	}

	var card domain.DebitCard
	if err := sqlx.GetContext(ctx, q, &card, q.Rebind(query), id); err != nil {
		return nil, notFound(err)
	}

	return &card, nil
}

func (r *debitCardRepository) ListByUserID(ctx context.Context, userID int64) ([]*domain.DebitCard, error) {
	q := conn(ctx, r.db)
	query := q.Rebind(`
		SELECT ` + debitCardColumns + `
		FROM debit_cards
		WHERE user_id = ? AND deleted_at IS NULL
		ORDER BY created_at, id
	`)

	cards := []*domain.DebitCard{}
	if err := sqlx.SelectContext(ctx, q, &cards, query, userID); err != nil {
		return nil, fmt.Errorf("select debit cards: %w", err)
	}

	return cards, nil
}

func (r *debitCardRepository) Update(ctx context.Context, card *domain.DebitCard) error {
	q := conn(ctx, r.db)
	query := q.Rebind(`
		UPDATE debit_cards
		SET disabled_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`)

	res, err := q.ExecContext(ctx, query, card.DisabledAt, card.UpdatedAt, card.ID)
	if err != nil {
		return fmt.Errorf("update debit card: %w", err)
	}

	return expectRow(res)
}

func (r *debitCardRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	q := conn(ctx, r.db)
	query := q.Rebind(`
		UPDATE debit_cards
		SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`)

	res, err := q.ExecContext(ctx, query, at, at, id)
	if err != nil {
		return fmt.Errorf("delete debit card: %w", err)
	}

	return expectRow(res)
}

func (r *debitCardRepository) CreateTransaction(ctx context.Context, txn *domain.DebitCardTransaction) error {
	q := conn(ctx, r.db)
	query := q.Rebind(`
		INSERT INTO debit_card_transactions (` + debitCardTransactionColumns + `)
		VALUES (?, ?, ?, ?, ?)
	`)

	_, err := q.ExecContext(ctx, query,
		txn.ID,
		txn.DebitCardID,
		txn.Amount,
		txn.CurrencyCode,
		txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert debit card transaction: %w", err)
	}

	return nil
}

func (r *debitCardRepository) GetTransaction(ctx context.Context, id uuid.UUID) (*domain.DebitCardTransaction, error) {
	q := conn(ctx, r.db)
	query := q.Rebind(`SELECT ` + debitCardTransactionColumns + ` FROM debit_card_transactions WHERE id = ?`)

	var txn domain.DebitCardTransaction
	if err := sqlx.GetContext(ctx, q, &txn, query, id); err != nil {
		return nil, notFound(err)
	}

	return &txn, nil
}

func (r *debitCardRepository) ListTransactions(ctx context.Context, cardID uuid.UUID) ([]*domain.DebitCardTransaction, error) {
	q := conn(ctx, r.db)
	query := q.Rebind(`
		SELECT ` + debitCardTransactionColumns + `
		FROM debit_card_transactions
		WHERE debit_card_id = ?
		ORDER BY created_at, id
	`)

	txns := []*domain.DebitCardTransaction{}
	if err := sqlx.SelectContext(ctx, q, &txns, query, cardID); err != nil {
		return nil, fmt.Errorf("select debit card transactions: %w", err)
	}

	return txns, nil
}

func (r *debitCardRepository) CountTransactions(ctx context.Context, cardID uuid.UUID) (int, error) {
	q := conn(ctx, r.db)
	query := q.Rebind(`SELECT COUNT(*) FROM debit_card_transactions WHERE debit_card_id = ?`)

	var count int
	if err := sqlx.GetContext(ctx, q, &count, query, cardID); err != nil {
		return 0, fmt.Errorf("count debit card transactions: %w", err)
	}

	return count, nil
}
