package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/segyhp/repayment-engine/internal/domain"
)

type repaymentRepository struct {
	db *sqlx.DB
}

func NewRepaymentRepository(db *sqlx.DB) RepaymentRepository {
	return &repaymentRepository{db: db}
}

func (r *repaymentRepository) Create(ctx context.Context, repayment *domain.ReceivedRepayment) error {
	q := conn(ctx, r.db)
	query := q.Rebind(`
		INSERT INTO received_repayments (id, loan_id, amount, currency_code, received_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)

	_, err := q.ExecContext(ctx, query,
		repayment.ID,
		repayment.LoanID,
		repayment.Amount,
		repayment.CurrencyCode,
		repayment.ReceivedAt,
		repayment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert received repayment: %w", err)
	}

	return nil
}

func (r *repaymentRepository) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.ReceivedRepayment, error) {
	q := conn(ctx, r.db)
	query := q.Rebind(`
		SELECT id, loan_id, amount, currency_code, received_at, created_at
		FROM received_repayments
		WHERE loan_id = ?
		ORDER BY received_at, created_at
	`)

	repayments := []*domain.ReceivedRepayment{}
	if err := sqlx.SelectContext(ctx, q, &repayments, query, loanID); err != nil {
		return nil, fmt.Errorf("select received repayments: %w", err)
	}

	return repayments, nil
}
