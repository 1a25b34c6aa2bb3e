package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/segyhp/repayment-engine/internal/domain"
	"github.com/segyhp/repayment-engine/internal/metrics"
	"github.com/segyhp/repayment-engine/internal/repository"
)

// ReconcileOutstanding recomputes every loan's outstanding amount and status from its schedule
// and fixes the loans that drifted. Each loan is locked and corrected in its own transaction.
// It returns how many loans were corrected.
func (s *LoanService) ReconcileOutstanding(ctx context.Context) (int, error) {
	ids, err := s.LoanRepo.ListIDs(ctx)
	if err != nil {
		return 0, translate(err)
	}

	corrected := 0
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		summary, err := s.reconcileLoan(ctx, id)
		if err != nil {
			s.logger.ErrorContext(ctx, "reconcile loan failed", "loan_id", id, "error", err)
			errs = append(errs, fmt.Errorf("loan %s: %w", id, translate(err)))
			continue
		}
		if summary != nil {
			corrected++
			s.refreshSummary(ctx, summary)
		}
	}

	s.logger.InfoContext(ctx, "reconciliation finished", "loans", len(ids), "corrected", corrected, "failed", len(errs))
	return corrected, errors.Join(errs...)
}

// reconcileLoan returns the corrected summary, or nil when the loan was consistent
func (s *LoanService) reconcileLoan(ctx context.Context, loanID uuid.UUID) (*domain.LoanSummary, error) {
	var corrected *domain.LoanSummary

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		corrected = nil

		loan, err := s.LoanRepo.GetByIDForUpdate(ctx, loanID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		outstanding, err := s.LoanRepo.SumOutstanding(ctx, loanID)
		if err != nil {
			return err
		}

		status := domain.LoanStatusFor(outstanding)
		if outstanding == loan.OutstandingAmount && status == loan.Status {
			return nil
		}

		s.logger.WarnContext(ctx, "loan balance drifted from schedule",
			"loan_id", loanID,
			"stored_outstanding", loan.OutstandingAmount, "schedule_outstanding", outstanding,
			"stored_status", loan.Status, "status", status)

		loan.OutstandingAmount = outstanding
		loan.Status = status
		loan.UpdatedAt = s.now()
		if err := s.LoanRepo.Update(ctx, loan); err != nil {
			return err
		}

		corrected = loan.Summary()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if corrected != nil {
		metrics.ReconcileCorrections.Inc()
	}
	return corrected, nil
}
