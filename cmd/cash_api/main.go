package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/easyplus-cash-ledger/internal/cash_api"
	"github.com/easyplus-cash-ledger/internal/cash_api/outbox"
	"github.com/easyplus-cash-ledger/internal/cash_api/service"
	"github.com/easyplus-cash-ledger/internal/config"
	"github.com/easyplus-cash-ledger/internal/data/memory"
	"github.com/easyplus-cash-ledger/internal/data/mongo"
	"github.com/easyplus-cash-ledger/internal/data/postgres"
	"github.com/easyplus-cash-ledger/internal/domain/deposit"
	"github.com/easyplus-cash-ledger/internal/logger"
	"github.com/easyplus-cash-ledger/internal/platform/messaging/producers"
	"github.com/easyplus-cash-ledger/internal/platform/persistence"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("cash_api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)
	log.Info("Starting cash API", "app_name", cfg.Application.Name, "env", cfg.Application.Env)

	var wg sync.WaitGroup

	// Without PostgreSQL the ledger lives in process memory only
	var store deposit.Store
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL, ledgers will not survive a restart", "error", err)
		store = memory.NewStore()
	} else {
		outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
		store = postgres.NewLedgerStore(log, postgresDB, postgres.NewSnapshotRepository(log, postgresDB), outboxRepo)

		eventProducer, err := producers.NewDepositEventProducer(log, &cfg.Kafka)
		if err != nil {
			log.Error("Failed to initialize deposit event producer, events stay in the outbox", "error", err)
		} else {
			defer func() {
				if err := eventProducer.Close(); err != nil {
					log.Error("Error closing deposit event producer", "error", err)
				}
			}()

			poller := outbox.NewPoller(&cfg.Outbox, outboxRepo, eventProducer, log.With("component", "outbox_poller"))
			wg.Add(1)
			go func() {
				defer wg.Done()
				poller.Start(appCtx)
			}()
		}
	}

	var historyService service.HistoryService
	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB, session history disabled", "error", err)
	} else {
		historyService = service.NewHistoryService(mongo.NewEventRepository(log, mongoDB.Database()), log)
	}

	ledgerService := service.NewLedgerService(
		store,
		log.With("component", "ledger_service"),
		cfg.Cash.StoreTimeout,
		cfg.Cash.SmallDenominationThreshold,
	)
	cashService := service.NewCashService(log, cfg.Cash.DefaultExchangeRate)

	server := cash_api.NewServer(log, cfg, ledgerService, cashService, historyService)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case serverErr = <-errChan:
		log.Error("Server error occurred", "error", serverErr)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown")
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	cancelAppCtx()
	wg.Wait()

	if postgresDB != nil {
		postgresDB.Close()
	}
	if mongoDB != nil {
		if err := mongoDB.Close(shutdownCtx); err != nil {
			log.Error("Error closing MongoDB connection", "error", err)
		}
	}

	if serverErr != nil {
		log.Error("Cash API shutdown with errors", "error", serverErr)
		os.Exit(1)
	}
	log.Info("Cash API shutdown completed")
}
