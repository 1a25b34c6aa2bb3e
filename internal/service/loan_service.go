package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/repayment-engine/internal/config"
	"github.com/segyhp/repayment-engine/internal/domain"
	"github.com/segyhp/repayment-engine/internal/metrics"
	"github.com/segyhp/repayment-engine/internal/repository"
	customError "github.com/segyhp/repayment-engine/pkg/errors"
	"github.com/segyhp/repayment-engine/pkg/money"
	"github.com/segyhp/repayment-engine/pkg/utils"
)

type LoanService struct {
	LoanRepo      repository.LoanRepository
	RepaymentRepo repository.RepaymentRepository
	tx            repository.Transactor
	cache         repository.LoanCache
	config        *config.Config
	logger        *slog.Logger
	now           func() time.Time
}

func NewLoanService(
	loanRepo repository.LoanRepository,
	repaymentRepo repository.RepaymentRepository,
	tx repository.Transactor,
	cache repository.LoanCache,
	config *config.Config,
	logger *slog.Logger,
) *LoanService {
	if cache == nil {
		cache = repository.NewNoopLoanCache()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LoanService{
		LoanRepo:      loanRepo,
		RepaymentRepo: repaymentRepo,
		tx:            tx,
		cache:         cache,
		config:        config,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// CreateLoan books a loan and its monthly repayment schedule in one transaction
func (s *LoanService) CreateLoan(ctx context.Context, userID int64, amount int64, currencyCode string, terms int, processedAt time.Time) (*domain.Loan, error) {
	currencyCode = strings.ToUpper(currencyCode)

	// 1. Validate input
	switch {
	case userID <= 0:
		return nil, customError.WrapValidation("user_id must be greater than 0")
	case amount <= 0:
		return nil, customError.WrapValidation("amount must be greater than 0, got %d", amount)
	case terms <= 0:
		return nil, customError.WrapValidation("terms must be greater than 0, got %d", terms)
	case int64(terms) > amount:
		// every installment must be worth at least one minor unit
		return nil, customError.WrapValidation("terms %d exceeds amount %d", terms, amount)
	case s.config != nil && terms > s.config.Business.MaxTerms:
		return nil, customError.WrapValidation("terms must not exceed %d", s.config.Business.MaxTerms)
	case processedAt.IsZero():
		return nil, customError.WrapValidation("processed_at is required")
	case !money.IsSupported(currencyCode):
		return nil, customError.WrapValidation("unsupported currency code %q", currencyCode)
	}

	// 2. Create loan entity
	now := s.now()
	loan := &domain.Loan{
		ID:                uuid.New(),
		UserID:            userID,
		Amount:            amount,
		CurrencyCode:      currencyCode,
		Terms:             terms,
		OutstandingAmount: amount,
		Status:            domain.LoanStatusDue,
		ProcessedAt:       utils.TruncateToDate(processedAt),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	// 3. Generate schedule, the last installment absorbs the rounding remainder
	schedules := BuildSchedule(loan, now)

	// 4. Save loan and schedule atomically
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.LoanRepo.Create(ctx, loan); err != nil {
			return err
		}
		return s.LoanRepo.CreateSchedule(ctx, schedules)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "create loan failed", "user_id", userID, "error", err)
		return nil, translate(err)
	}

	loan.ScheduledRepayments = schedules
	metrics.LoansCreated.WithLabelValues(currencyCode).Inc()
	s.logger.InfoContext(ctx, "loan created",
		"loan_id", loan.ID, "user_id", userID, "amount", amount, "currency", currencyCode, "terms", terms)

	// 5. Cache loan summary for fast outstanding lookups
	if err := s.cache.SetSummary(ctx, loan.Summary()); err != nil {
		s.logger.WarnContext(ctx, "cache loan summary failed", "loan_id", loan.ID, "error", err)
	}

	return loan, nil
}

// RepayLoan records a repayment and applies it to the loan's due schedules, earliest first
func (s *LoanService) RepayLoan(ctx context.Context, loanID uuid.UUID, amount int64, currencyCode string, receivedAt time.Time) (*domain.ReceivedRepayment, error) {
	currencyCode = strings.ToUpper(currencyCode)

	switch {
	case amount <= 0:
		return nil, customError.WrapValidation("amount must be greater than 0, got %d", amount)
	case currencyCode == "":
		return nil, customError.WrapValidation("currency_code is required")
	case receivedAt.IsZero():
		return nil, customError.WrapValidation("received_at is required")
	}

	var (
		repayment  *domain.ReceivedRepayment
		allocation Allocation
		loan       *domain.Loan
		wasRepaid  bool
	)

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error

		// 1. Lock the loan so concurrent repayments see each other's writes
		loan, err = s.LoanRepo.GetByIDForUpdate(ctx, loanID)
		if errors.Is(err, repository.ErrNotFound) {
			return customError.WrapLoanNotFound(loanID.String())
		}
		if err != nil {
			return err
		}

		wasRepaid = loan.Status == domain.LoanStatusRepaid

		if loan.CurrencyCode != currencyCode {
			return customError.WrapCurrencyMismatch(loan.CurrencyCode, currencyCode)
		}

		// 2. Work out the waterfall over schedules still due
		due, err := s.LoanRepo.GetDueSchedules(ctx, loan.ID)
		if err != nil {
			return err
		}

		allocation = Allocate(due, amount)
		if allocation.Surplus > 0 && s.rejectOverpayment() {
			return customError.WrapOverpayment(amount, allocation.Allocated)
		}

		// 3. Record the repayment
		now := s.now()
		repayment = &domain.ReceivedRepayment{
			ID:           uuid.New(),
			LoanID:       loan.ID,
			Amount:       amount,
			CurrencyCode: currencyCode,
			ReceivedAt:   utils.TruncateToDate(receivedAt),
			CreatedAt:    now,
		}
		if err := s.RepaymentRepo.Create(ctx, repayment); err != nil {
			return err
		}

		// 4. Persist touched schedules
		for i, schedule := range allocation.Updated {
			if !due[i].Status.CanTransitionTo(schedule.Status) {
				return fmt.Errorf("scheduled repayment %s cannot move from %s to %s", schedule.ID, due[i].Status, schedule.Status)
			}
			schedule.UpdatedAt = now
			if err := s.LoanRepo.UpdateSchedule(ctx, schedule); err != nil {
				return err
			}
		}

		// 5. Recompute the loan balance from the whole schedule
		outstanding, err := s.LoanRepo.SumOutstanding(ctx, loan.ID)
		if err != nil {
			return err
		}

		loan.OutstandingAmount = outstanding
		loan.Status = domain.LoanStatusFor(outstanding)
		loan.UpdatedAt = now
		return s.LoanRepo.Update(ctx, loan)
	})
	if err != nil {
		if customError.Code(err) == "" {
			s.logger.ErrorContext(ctx, "repay loan failed", "loan_id", loanID, "error", err)
		}
		return nil, translate(err)
	}

	metrics.RepaymentsReceived.WithLabelValues(currencyCode).Inc()
	metrics.AmountAllocated.WithLabelValues(currencyCode).Add(float64(allocation.Allocated))
	if allocation.Surplus > 0 {
		metrics.AmountUnallocated.WithLabelValues(currencyCode).Add(float64(allocation.Surplus))
		s.logger.WarnContext(ctx, "repayment exceeds due schedule, surplus left unallocated",
			"loan_id", loanID, "repayment_id", repayment.ID, "surplus", allocation.Surplus)
	}
	if loan.Status == domain.LoanStatusRepaid && !wasRepaid {
		metrics.LoansRepaid.WithLabelValues(currencyCode).Inc()
	}
	s.logger.InfoContext(ctx, "repayment applied",
		"loan_id", loanID, "repayment_id", repayment.ID, "amount", amount,
		"installments", len(allocation.Updated), "outstanding", loan.OutstandingAmount, "status", loan.Status)

	s.refreshSummary(ctx, loan.Summary())

	return repayment, nil
}

// GetLoan returns a loan with its full schedule
func (s *LoanService) GetLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	schedules, err := s.LoanRepo.GetScheduleByLoanID(ctx, loanID)
	if err != nil {
		return nil, translate(err)
	}
	loan.ScheduledRepayments = schedules

	return loan, nil
}

// GetSchedule returns the repayment schedule for a loan
func (s *LoanService) GetSchedule(ctx context.Context, loanID uuid.UUID) ([]*domain.ScheduledRepayment, error) {
	if _, err := s.getLoan(ctx, loanID); err != nil {
		return nil, err
	}

	schedules, err := s.LoanRepo.GetScheduleByLoanID(ctx, loanID)
	if err != nil {
		return nil, translate(err)
	}
	return schedules, nil
}

// GetRepayments returns the repayments received for a loan
func (s *LoanService) GetRepayments(ctx context.Context, loanID uuid.UUID) ([]*domain.ReceivedRepayment, error) {
	if _, err := s.getLoan(ctx, loanID); err != nil {
		return nil, err
	}

	repayments, err := s.RepaymentRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, translate(err)
	}
	return repayments, nil
}

// GetOutstanding returns the loan's balance summary, served from cache when possible
func (s *LoanService) GetOutstanding(ctx context.Context, loanID uuid.UUID) (*domain.LoanSummary, error) {
	summary, ok, err := s.cache.GetSummary(ctx, loanID)
	if err != nil {
		s.logger.WarnContext(ctx, "read cached loan summary failed", "loan_id", loanID, "error", err)
	}
	if ok {
		return summary, nil
	}

	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	summary = loan.Summary()
	if err := s.cache.SetSummary(ctx, summary); err != nil {
		s.logger.WarnContext(ctx, "cache loan summary failed", "loan_id", loanID, "error", err)
	}
	return summary, nil
}

func (s *LoanService) getLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.LoanRepo.GetByID(ctx, loanID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, customError.WrapLoanNotFound(loanID.String())
	}
	if err != nil {
		return nil, translate(err)
	}
	return loan, nil
}

// refreshSummary caches a committed balance. Overwriting rather than deleting keeps a
// concurrent read-through of the old row from filling the cache after the commit.
func (s *LoanService) refreshSummary(ctx context.Context, summary *domain.LoanSummary) {
	err := s.cache.SetSummary(ctx, summary)
	if err == nil {
		return
	}
	s.logger.WarnContext(ctx, "cache loan summary failed", "loan_id", summary.LoanID, "error", err)

	if err := s.cache.Invalidate(ctx, summary.LoanID); err != nil {
		s.logger.WarnContext(ctx, "invalidate loan summary failed", "loan_id", summary.LoanID, "error", err)
	}
}

func (s *LoanService) rejectOverpayment() bool {
	return s.config != nil && s.config.RejectOverpayment()
}

// translate maps infrastructure failures onto the business error taxonomy
func translate(err error) error {
	var businessErr *customError.BusinessError
	switch {
	case errors.As(err, &businessErr):
		return businessErr
	case errors.Is(err, repository.ErrContention):
		return customError.WrapConcurrentModification(err)
	default:
		return customError.WrapDatabaseError(err)
	}
}
