package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/segyhp/repayment-engine/internal/domain"
)

const loanColumns = `id, user_id, amount, currency_code, terms, outstanding_amount, status, processed_at, created_at, updated_at`

const scheduleColumns = `id, loan_id, amount, outstanding_amount, currency_code, due_date, status, created_at, updated_at`

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	q := conn(ctx, r.db)
	query := q.Rebind(`
		INSERT INTO loans (` + loanColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := q.ExecContext(ctx, query,
		loan.ID,
		loan.UserID,
		loan.Amount,
		loan.CurrencyCode,
		loan.Terms,
		loan.OutstandingAmount,
		loan.Status,
		loan.ProcessedAt,
		loan.CreatedAt,
		loan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert loan: %w", err)
	}

	return nil
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	return r.get(ctx, id, false)
}

func (r *loanRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	return r.get(ctx, id, true)
}

func (r *loanRepository) get(ctx context.Context, id uuid.UUID, lock bool) (*domain.Loan, error) {
	q := conn(ctx, r.db)
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = ?`
	// SQLite has no row locks; its transactions already hold the database write lock
	if lock && q.DriverName() != driverSQLite {
		query += ` FOR UPDATE`
	}

	var loan domain.Loan
	if err := sqlx.GetContext(ctx, q, &loan, q.Rebind(query), id); err != nil {
		return nil, notFound(err)
	}

	return &loan, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	q := conn(ctx, r.db)
	query := q.Rebind(`
		UPDATE loans
		SET outstanding_amount = ?, status = ?, updated_at = ?
		WHERE id = ?
	`)

	res, err := q.ExecContext(ctx, query,
		loan.OutstandingAmount,
		loan.Status,
		loan.UpdatedAt,
		loan.ID,
	)
	if err != nil {
		return fmt.Errorf("update loan: %w", err)
	}

	return expectRow(res)
}

func (r *loanRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	q := conn(ctx, r.db)

	var ids []uuid.UUID
	if err := sqlx.SelectContext(ctx, q, &ids, `SELECT id FROM loans ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}

	return ids, nil
}

func (r *loanRepository) CreateSchedule(ctx context.Context, schedules []*domain.ScheduledRepayment) error {
	q := conn(ctx, r.db)
	query := q.Rebind(`
		INSERT INTO scheduled_repayments (` + scheduleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	for _, schedule := range schedules {
		_, err := q.ExecContext(ctx, query,
			schedule.ID,
			schedule.LoanID,
			schedule.Amount,
			schedule.OutstandingAmount,
			schedule.CurrencyCode,
			schedule.DueDate,
			schedule.Status,
			schedule.CreatedAt,
			schedule.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert scheduled repayment: %w", err)
		}
	}

	return nil
}

func (r *loanRepository) GetScheduleByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.ScheduledRepayment, error) {
	q := conn(ctx, r.db)
	query := q.Rebind(`
		SELECT ` + scheduleColumns + `
		FROM scheduled_repayments
		WHERE loan_id = ?
		ORDER BY due_date, id
	`)

	schedules := []*domain.ScheduledRepayment{}
	if err := sqlx.SelectContext(ctx, q, &schedules, query, loanID); err != nil {
		return nil, fmt.Errorf("select schedule: %w", err)
	}

	return schedules, nil
}

func (r *loanRepository) GetDueSchedules(ctx context.Context, loanID uuid.UUID) ([]*domain.ScheduledRepayment, error) {
	q := conn(ctx, r.db)
	query := q.Rebind(`
		SELECT ` + scheduleColumns + `
		FROM scheduled_repayments
		WHERE loan_id = ? AND status = ?
		ORDER BY due_date ASC, id
	`)

	schedules := []*domain.ScheduledRepayment{}
	if err := sqlx.SelectContext(ctx, q, &schedules, query, loanID, domain.ScheduleStatusDue); err != nil {
		return nil, fmt.Errorf("select due schedules: %w", err)
	}

	return schedules, nil
}

func (r *loanRepository) UpdateSchedule(ctx context.Context, schedule *domain.ScheduledRepayment) error {
	q := conn(ctx, r.db)
	query := q.Rebind(`
		UPDATE scheduled_repayments
		SET outstanding_amount = ?, status = ?, updated_at = ?
		WHERE id = ? AND loan_id = ?
	`)

	res, err := q.ExecContext(ctx, query,
		schedule.OutstandingAmount,
		schedule.Status,
		schedule.UpdatedAt,
		schedule.ID,
		schedule.LoanID,
	)
	if err != nil {
		return fmt.Errorf("update scheduled repayment: %w", err)
	}

	return expectRow(res)
}

func (r *loanRepository) SumOutstanding(ctx context.Context, loanID uuid.UUID) (int64, error) {
	q := conn(ctx, r.db)
	query := q.Rebind(`
		SELECT CAST(COALESCE(SUM(outstanding_amount), 0) AS BIGINT)
		FROM scheduled_repayments
		WHERE loan_id = ?
	`)

	var total int64
	if err := sqlx.GetContext(ctx, q, &total, query, loanID); err != nil {
		return 0, fmt.Errorf("sum outstanding: %w", err)
	}

	return total, nil
}
