package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/easyplus-cash-ledger/internal/config"
	"github.com/easyplus-cash-ledger/internal/data/mongo"
	"github.com/easyplus-cash-ledger/internal/deposit_archiver/consumer"
	"github.com/easyplus-cash-ledger/internal/deposit_archiver/service"
	"github.com/easyplus-cash-ledger/internal/logger"
	"github.com/easyplus-cash-ledger/internal/platform/messaging/consumers"
	"github.com/easyplus-cash-ledger/internal/platform/messaging/producers"
	"github.com/easyplus-cash-ledger/internal/platform/persistence"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("deposit_archiver")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)
	log.Info("Starting deposit archiver", "app_name", cfg.Application.Name, "env", cfg.Application.Env)

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}
	if err := mongoDB.EnsureIndexes(appCtx, mongo.EventCollectionName, mongo.ArchiveIndexes()...); err != nil {
		log.Error("Failed to ensure archive indexes", "error", err)
		os.Exit(1)
	}

	dlqProducer, err := producers.NewDLQProducer(log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	var deadLetters producers.DeadLetterPublisher
	if dlqProducer != nil {
		deadLetters = dlqProducer
	}

	archiveService := service.CreateArchiveService(
		mongo.NewEventRepository(log, mongoDB.Database()),
		log,
		cfg,
	)
	handler := consumer.NewDepositEventHandler(log, archiveService, deadLetters)

	kafkaConsumer := consumers.NewKafkaConsumer(log, &cfg.Kafka)
	kafkaConsumer.Subscribe(appCtx, handler.HandleMessage)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-quit
	log.Info("Shutdown signal received")

	cancelAppCtx()
	if err := kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	if pooled, ok := archiveService.(*service.WorkerPoolArchiveService); ok {
		pooled.Shutdown()
	}

	if err := dlqProducer.Close(); err != nil {
		log.Error("Error closing DLQ Kafka producer", "error", err)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.MongoDB.Timeout)
	defer cancelShutdown()
	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	log.Info("Deposit archiver shutdown completed")
}
