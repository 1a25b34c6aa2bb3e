package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/segyhp/repayment-engine/internal/config"
	"github.com/segyhp/repayment-engine/internal/repository"
	"github.com/segyhp/repayment-engine/internal/service"
	"github.com/segyhp/repayment-engine/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.GetLogFormat())
	slog.SetDefault(log)
	log.Info("starting reconciliation scheduler")

	db, err := repository.Open(cfg)
	if err != nil {
		log.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// corrected balances must reach the cache the API server reads from
	redisClient := repository.NewRedisClient(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	loanService := service.NewLoanService(
		repository.NewLoanRepository(db),
		repository.NewRepaymentRepository(db),
		repository.NewTxManager(db, cfg.Database.TxMaxRetries, cfg.GetTxLockTimeout(), log),
		repository.NewLoanCache(redisClient, cfg.GetCacheTTL()),
		cfg,
		log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize cron scheduler
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(cfg.GetSchedulerLocation()),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	if err := setupCronJobs(ctx, c, cfg, loanService, log); err != nil {
		log.Error("failed to schedule jobs", "error", err)
		os.Exit(1)
	}

	// Start the scheduler
	c.Start()
	log.Info("scheduler started", "reconcile_spec", cfg.Scheduler.ReconcileSpec, "timezone", cfg.Scheduler.Timezone, "cache", redisClient != nil)

	<-ctx.Done()

	log.Info("shutting down scheduler")
	<-c.Stop().Done()
	log.Info("scheduler stopped")
}

type reconciler interface {
	ReconcileOutstanding(ctx context.Context) (int, error)
}

func setupCronJobs(ctx context.Context, c *cron.Cron, cfg *config.Config, svc reconciler, log *slog.Logger) error {
	// Daily job recomputing loan balances from their schedules
	_, err := c.AddFunc(cfg.Scheduler.ReconcileSpec, func() {
		log.Info("running outstanding reconciliation job")
		corrected, err := svc.ReconcileOutstanding(ctx)
		if err != nil {
			log.Error("reconciliation finished with errors", "corrected", corrected, "error", err)
			return
		}
		log.Info("reconciliation job done", "corrected", corrected)
	})
	return err
}
