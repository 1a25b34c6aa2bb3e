package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/repayment-engine/internal/domain"
)

// LoanRepository defines the interface for loan and schedule data operations.
// Every method joins the transaction carried by ctx, if any.
type LoanRepository interface {
	// Create creates a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// GetByIDForUpdate retrieves a loan and locks its row until the transaction ends
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// Update writes the loan's outstanding amount and status
	Update(ctx context.Context, loan *domain.Loan) error

	// ListIDs returns the IDs of all loans, oldest first
	ListIDs(ctx context.Context) ([]uuid.UUID, error)

	// CreateSchedule creates scheduled repayment entries
	CreateSchedule(ctx context.Context, schedules []*domain.ScheduledRepayment) error

	// GetScheduleByLoanID retrieves the full schedule ordered by due date
	GetScheduleByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.ScheduledRepayment, error)

	// GetDueSchedules retrieves schedules still in status due, ordered by due date ascending
	GetDueSchedules(ctx context.Context, loanID uuid.UUID) ([]*domain.ScheduledRepayment, error)

	// UpdateSchedule writes a schedule's outstanding amount and status
	UpdateSchedule(ctx context.Context, schedule *domain.ScheduledRepayment) error

	// SumOutstanding sums outstanding amounts over all schedules of a loan
	SumOutstanding(ctx context.Context, loanID uuid.UUID) (int64, error)
}

// RepaymentRepository defines the interface for received repayment data operations
type RepaymentRepository interface {
	// Create creates a new received repayment record
	Create(ctx context.Context, repayment *domain.ReceivedRepayment) error

	// GetByLoanID retrieves all repayments for a loan, oldest first
	GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.ReceivedRepayment, error)
}

// Transactor runs fn as one atomic unit of work
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// LoanCache caches loan balance summaries
type LoanCache interface {
	GetSummary(ctx context.Context, loanID uuid.UUID) (*domain.LoanSummary, bool, error)
	// SetSummary stores summary unless a summary with the same or a later UpdatedAt is cached
	SetSummary(ctx context.Context, summary *domain.LoanSummary) error
	Invalidate(ctx context.Context, loanID uuid.UUID) error
}

// DebitCardRepository stores debit cards and their transactions.
// Soft-deleted cards are invisible to every read.
type DebitCardRepository interface {
	Create(ctx context.Context, card *domain.DebitCard) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.DebitCard, error)

	// GetByIDForUpdate retrieves a card and locks its row until the transaction ends
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.DebitCard, error)

	// ListByUserID returns the user's cards, oldest first
	ListByUserID(ctx context.Context, userID int64) ([]*domain.DebitCard, error)

	// Update writes the card's disabled_at and updated_at
	Update(ctx context.Context, card *domain.DebitCard) error

	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error

	CreateTransaction(ctx context.Context, txn *domain.DebitCardTransaction) error

	GetTransaction(ctx context.Context, id uuid.UUID) (*domain.DebitCardTransaction, error)

	// ListTransactions returns a card's transactions, oldest first
	ListTransactions(ctx context.Context, cardID uuid.UUID) ([]*domain.DebitCardTransaction, error)

	CountTransactions(ctx context.Context, cardID uuid.UUID) (int, error)
}
