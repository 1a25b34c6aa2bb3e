package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segyhp/repayment-engine/internal/config"
	"github.com/segyhp/repayment-engine/internal/handler"
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

	// Initialize database
	db, err := repository.Open(cfg)
	if err != nil {
		log.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.MigrateOnStart {
		if err := repository.Migrate(context.Background(), db); err != nil {
			log.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	// Initialize Redis
	redisClient := repository.NewRedisClient(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Initialize repositories
	loanRepo := repository.NewLoanRepository(db)
	repaymentRepo := repository.NewRepaymentRepository(db)
	txManager := repository.NewTxManager(db, cfg.Database.TxMaxRetries, cfg.GetTxLockTimeout(), log)
	cache := repository.NewLoanCache(redisClient, cfg.GetCacheTTL())

	// Initialize service
	loanService := service.NewLoanService(loanRepo, repaymentRepo, txManager, cache, cfg, log)
	cardService := service.NewDebitCardService(repository.NewDebitCardRepository(db), txManager, log)
	loanHandler := handler.NewLoanHandler(loanService, log)
	cardHandler := handler.NewDebitCardHandler(cardService, log)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.GetHealthTimeout())

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler.NewRouter(loanHandler, cardHandler, healthHandler, log),
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}

	// Start server in a goroutine
	go func() {
		log.Info("server starting", "addr", server.Addr, "driver", cfg.Database.Driver, "cache", redisClient != nil)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		return
	}

	log.Info("server exited")
}

