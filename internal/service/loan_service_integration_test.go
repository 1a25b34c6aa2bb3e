package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/segyhp/repayment-engine/internal/config"
	"github.com/segyhp/repayment-engine/internal/domain"
	"github.com/segyhp/repayment-engine/internal/repository"
	customError "github.com/segyhp/repayment-engine/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLiteService(t *testing.T, policy string) (*LoanService, *sqlx.DB) {
	t.Helper()

	cfg := testConfig(policy)
	cfg.Database = config.DatabaseConfig{
		Driver:          "sqlite3",
		URL:             filepath.Join(t.TempDir(), "engine.db"),
		MaxOpenConns:    8,
		MaxIdleConns:    8,
		ConnMaxLifetime: "5m",
		TxMaxRetries:    10,
	}

	db, err := repository.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, repository.Migrate(context.Background(), db))

	logger := discardLogger()
	svc := NewLoanService(
		repository.NewLoanRepository(db),
		repository.NewRepaymentRepository(db),
		repository.NewTxManager(db, cfg.Database.TxMaxRetries, 0, logger),
		nil,
		cfg,
		logger,
	)
	return svc, db
}

// useRedisCache swaps svc onto a Redis-backed summary cache and a clock that ticks per call
func useRedisCache(t *testing.T, svc *LoanService) repository.LoanCache {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: miniredis.RunT(t).Addr()})
	t.Cleanup(func() { client.Close() })

	var mu sync.Mutex
	clock := fixedNow
	svc.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}

	svc.cache = repository.NewLoanCache(client, time.Minute)
	return svc.cache
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

type installment struct {
	outstanding int64
	status      domain.ScheduleStatus
}

func assertSchedule(t *testing.T, svc *LoanService, loan *domain.Loan, want ...installment) {
	t.Helper()

	schedules, err := svc.GetSchedule(context.Background(), loan.ID)
	require.NoError(t, err)
	require.Len(t, schedules, len(want))
	for i, w := range want {
		assert.Equal(t, w.outstanding, schedules[i].OutstandingAmount, "installment %d outstanding", i+1)
		assert.Equal(t, w.status, schedules[i].Status, "installment %d status", i+1)
	}
}

// assertConsistent checks the balances every committed repayment must leave behind
func assertConsistent(t *testing.T, svc *LoanService, loanID uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	loan, err := svc.GetLoan(ctx, loanID)
	require.NoError(t, err)

	repayments, err := svc.GetRepayments(ctx, loan.ID)
	require.NoError(t, err)

	var scheduled, outstanding, received int64
	for _, s := range loan.ScheduledRepayments {
		scheduled += s.Amount
		outstanding += s.OutstandingAmount
		assert.GreaterOrEqual(t, s.OutstandingAmount, int64(0))
		assert.LessOrEqual(t, s.OutstandingAmount, s.Amount)
		switch {
		case s.OutstandingAmount == 0:
			assert.Equal(t, domain.ScheduleStatusRepaid, s.Status)
		case s.OutstandingAmount == s.Amount:
			assert.Equal(t, domain.ScheduleStatusDue, s.Status)
		default:
			assert.Equal(t, domain.ScheduleStatusPartial, s.Status)
		}
	}
	for _, r := range repayments {
		received += r.Amount
	}

	assert.Equal(t, loan.Amount, scheduled)
	assert.Equal(t, outstanding, loan.OutstandingAmount)
	assert.Equal(t, domain.LoanStatusFor(outstanding), loan.Status)
	assert.LessOrEqual(t, loan.Amount-loan.OutstandingAmount, received)
}

func TestRepayment_SinglePayment(t *testing.T) {
	tests := []struct {
		name        string
		amount      int64
		schedule    []installment
		outstanding int64
	}{
		{
			name:   "exact first installment",
			amount: 100000,
			schedule: []installment{
				{0, domain.ScheduleStatusRepaid},
				{100000, domain.ScheduleStatusDue},
				{100000, domain.ScheduleStatusDue},
			},
			outstanding: 200000,
		},
		{
			name:   "partial first installment",
			amount: 50000,
			schedule: []installment{
				{50000, domain.ScheduleStatusPartial},
				{100000, domain.ScheduleStatusDue},
				{100000, domain.ScheduleStatusDue},
			},
			outstanding: 250000,
		},
		{
			name:   "across two installments",
			amount: 150000,
			schedule: []installment{
				{0, domain.ScheduleStatusRepaid},
				{50000, domain.ScheduleStatusPartial},
				{100000, domain.ScheduleStatusDue},
			},
			outstanding: 150000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := setupSQLiteService(t, config.OverpaymentAbsorb)
			ctx := context.Background()

			loan, err := svc.CreateLoan(ctx, 1, 300000, "VND", 3, day("2024-01-15"))
			require.NoError(t, err)

			repayment, err := svc.RepayLoan(ctx, loan.ID, tt.amount, "VND", day("2024-02-15"))
			require.NoError(t, err)
			assert.Equal(t, tt.amount, repayment.Amount)

			assertSchedule(t, svc, loan, tt.schedule...)

			got, err := svc.GetLoan(ctx, loan.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.outstanding, got.OutstandingAmount)
			assert.Equal(t, domain.LoanStatusDue, got.Status)
			assertConsistent(t, svc, loan.ID)
		})
	}
}

func TestRepayment_PartialAndSpillover(t *testing.T) {
	svc, _ := setupSQLiteService(t, config.OverpaymentAbsorb)
	ctx := context.Background()

	loan, err := svc.CreateLoan(ctx, 1, 300000, "VND", 3, day("2024-01-15"))
	require.NoError(t, err)

	_, err = svc.RepayLoan(ctx, loan.ID, 100000, "VND", day("2024-02-15"))
	require.NoError(t, err)
	assertSchedule(t, svc, loan,
		installment{0, domain.ScheduleStatusRepaid},
		installment{100000, domain.ScheduleStatusDue},
		installment{100000, domain.ScheduleStatusDue})

	_, err = svc.RepayLoan(ctx, loan.ID, 50000, "VND", day("2024-03-01"))
	require.NoError(t, err)
	assertSchedule(t, svc, loan,
		installment{0, domain.ScheduleStatusRepaid},
		installment{50000, domain.ScheduleStatusPartial},
		installment{100000, domain.ScheduleStatusDue})

	// the partial installment is skipped, the payment goes to the next due one
	_, err = svc.RepayLoan(ctx, loan.ID, 150000, "VND", day("2024-03-15"))
	require.NoError(t, err)
	assertSchedule(t, svc, loan,
		installment{0, domain.ScheduleStatusRepaid},
		installment{50000, domain.ScheduleStatusPartial},
		installment{0, domain.ScheduleStatusRepaid})

	summary, err := svc.GetOutstanding(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), summary.OutstandingAmount)
	assert.Equal(t, domain.LoanStatusDue, summary.Status)

	repayments, err := svc.GetRepayments(ctx, loan.ID)
	require.NoError(t, err)
	assert.Len(t, repayments, 3)
}

func TestRepayment_FullRepayment(t *testing.T) {
	svc, _ := setupSQLiteService(t, config.OverpaymentAbsorb)
	ctx := context.Background()

	loan, err := svc.CreateLoan(ctx, 1, 300000, "VND", 3, day("2024-01-15"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.RepayLoan(ctx, loan.ID, 100000, "VND", day("2024-02-15").AddDate(0, i, 0))
		require.NoError(t, err)
		assertConsistent(t, svc, loan.ID)
	}

	got, err := svc.GetLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.OutstandingAmount)
	assert.Equal(t, domain.LoanStatusRepaid, got.Status)
	for _, s := range got.ScheduledRepayments {
		assert.Equal(t, domain.ScheduleStatusRepaid, s.Status)
	}
}

func TestCreateLoan_RoundingRemainderOnLastInstallment(t *testing.T) {
	svc, _ := setupSQLiteService(t, config.OverpaymentAbsorb)

	loan, err := svc.CreateLoan(context.Background(), 1, 100, "VND", 3, day("2024-01-31"))
	require.NoError(t, err)

	schedules, err := svc.GetSchedule(context.Background(), loan.ID)
	require.NoError(t, err)
	require.Len(t, schedules, 3)

	assert.Equal(t, []int64{33, 33, 34}, []int64{schedules[0].Amount, schedules[1].Amount, schedules[2].Amount})
	assert.Equal(t, "2024-02-29", schedules[0].DueDate.Format(time.DateOnly))
	assert.Equal(t, "2024-03-31", schedules[1].DueDate.Format(time.DateOnly))
	assert.Equal(t, "2024-04-30", schedules[2].DueDate.Format(time.DateOnly))
}

func TestRepayment_Overpayment(t *testing.T) {
	t.Run("absorb", func(t *testing.T) {
		svc, _ := setupSQLiteService(t, config.OverpaymentAbsorb)
		ctx := context.Background()

		loan, err := svc.CreateLoan(ctx, 1, 1000, "VND", 2, day("2024-01-01"))
		require.NoError(t, err)

		repayment, err := svc.RepayLoan(ctx, loan.ID, 1500, "VND", day("2024-02-01"))
		require.NoError(t, err)
		assert.Equal(t, int64(1500), repayment.Amount)

		got, err := svc.GetLoan(ctx, loan.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), got.OutstandingAmount)
		assert.Equal(t, domain.LoanStatusRepaid, got.Status)

		// a repaid loan still accepts payments, they are recorded but allocate nothing
		_, err = svc.RepayLoan(ctx, loan.ID, 10, "VND", day("2024-03-01"))
		require.NoError(t, err)
		assertConsistent(t, svc, loan.ID)
	})

	t.Run("reject", func(t *testing.T) {
		svc, _ := setupSQLiteService(t, config.OverpaymentReject)
		ctx := context.Background()

		loan, err := svc.CreateLoan(ctx, 1, 1000, "VND", 2, day("2024-01-01"))
		require.NoError(t, err)

		_, err = svc.RepayLoan(ctx, loan.ID, 1500, "VND", day("2024-02-01"))
		assert.ErrorIs(t, err, customError.ErrOverpayment)

		got, err := svc.GetLoan(ctx, loan.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), got.OutstandingAmount)

		repayments, err := svc.GetRepayments(ctx, loan.ID)
		require.NoError(t, err)
		assert.Empty(t, repayments)
	})
}

func TestRepayment_RejectedLeavesNoTrace(t *testing.T) {
	svc, _ := setupSQLiteService(t, config.OverpaymentAbsorb)
	ctx := context.Background()

	loan, err := svc.CreateLoan(ctx, 1, 1000, "IDR", 2, day("2024-01-01"))
	require.NoError(t, err)

	_, err = svc.RepayLoan(ctx, loan.ID, 100, "VND", day("2024-02-01"))
	assert.ErrorIs(t, err, customError.ErrCurrencyMismatch)

	repayments, err := svc.GetRepayments(ctx, loan.ID)
	require.NoError(t, err)
	assert.Empty(t, repayments)
	assertSchedule(t, svc, loan,
		installment{500, domain.ScheduleStatusDue},
		installment{500, domain.ScheduleStatusDue})
}

func TestRepayment_Concurrent(t *testing.T) {
	svc, _ := setupSQLiteService(t, config.OverpaymentAbsorb)
	ctx := context.Background()

	loan, err := svc.CreateLoan(ctx, 1, 100000, "VND", 10, day("2024-01-01"))
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RepayLoan(ctx, loan.ID, 10000, "VND", day("2024-02-01"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	got, err := svc.GetLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), got.OutstandingAmount)
	assertConsistent(t, svc, loan.ID)

	repaid := 0
	for _, s := range got.ScheduledRepayments {
		if s.Status == domain.ScheduleStatusRepaid {
			repaid++
		}
	}
	assert.Equal(t, workers, repaid)
}

func TestReconcileOutstanding_FixesDrift(t *testing.T) {
	svc, db := setupSQLiteService(t, config.OverpaymentAbsorb)
	ctx := context.Background()

	drifted, err := svc.CreateLoan(ctx, 1, 300000, "VND", 3, day("2024-01-01"))
	require.NoError(t, err)
	clean, err := svc.CreateLoan(ctx, 2, 200000, "VND", 2, day("2024-01-01"))
	require.NoError(t, err)

	_, err = svc.RepayLoan(ctx, drifted.ID, 100000, "VND", day("2024-02-01"))
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, db.Rebind(`UPDATE loans SET outstanding_amount = ?, status = ? WHERE id = ?`),
		0, domain.LoanStatusRepaid, drifted.ID)
	require.NoError(t, err)

	corrected, err := svc.ReconcileOutstanding(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, corrected)

	got, err := svc.GetLoan(ctx, drifted.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(200000), got.OutstandingAmount)
	assert.Equal(t, domain.LoanStatusDue, got.Status)

	untouched, err := svc.GetLoan(ctx, clean.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(200000), untouched.OutstandingAmount)

	corrected, err = svc.ReconcileOutstanding(ctx)
	require.NoError(t, err)
	assert.Zero(t, corrected)
}

func TestGetOutstanding_LateReadThroughKeepsRepaymentResult(t *testing.T) {
	svc, _ := setupSQLiteService(t, config.OverpaymentAbsorb)
	cache := useRedisCache(t, svc)
	ctx := context.Background()

	loan, err := svc.CreateLoan(ctx, 1, 300000, "VND", 3, day("2024-01-01"))
	require.NoError(t, err)
	// a reader loaded the row before the repayment committed
	stale := loan.Summary()

	_, err = svc.RepayLoan(ctx, loan.ID, 100000, "VND", day("2024-02-01"))
	require.NoError(t, err)

	require.NoError(t, cache.SetSummary(ctx, stale))

	summary, err := svc.GetOutstanding(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(200000), summary.OutstandingAmount)
	assert.Equal(t, domain.LoanStatusDue, summary.Status)
}

func TestReconcileOutstanding_RefreshesCachedSummary(t *testing.T) {
	svc, db := setupSQLiteService(t, config.OverpaymentAbsorb)
	useRedisCache(t, svc)
	ctx := context.Background()

	loan, err := svc.CreateLoan(ctx, 1, 300000, "VND", 3, day("2024-01-01"))
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, db.Rebind(`UPDATE scheduled_repayments SET outstanding_amount = ?, status = ? WHERE loan_id = ?`),
		0, domain.ScheduleStatusRepaid, loan.ID)
	require.NoError(t, err)

	cached, err := svc.GetOutstanding(ctx, loan.ID)
	require.NoError(t, err)
	require.Equal(t, int64(300000), cached.OutstandingAmount)

	corrected, err := svc.ReconcileOutstanding(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, corrected)

	summary, err := svc.GetOutstanding(ctx, loan.ID)
	require.NoError(t, err)
	assert.Zero(t, summary.OutstandingAmount)
	assert.Equal(t, domain.LoanStatusRepaid, summary.Status)
}
