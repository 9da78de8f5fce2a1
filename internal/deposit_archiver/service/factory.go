package service

import (
	"log/slog"

	"github.com/easyplus-cash-ledger/internal/config"
	"github.com/easyplus-cash-ledger/internal/domain/archive"
)

// CreateArchiveService wraps the archive service in a worker pool, falling
// back to the plain service when the pool cannot be built.
func CreateArchiveService(repo archive.Repository, logger *slog.Logger, cfg *config.Config) ArchiveService {
	baseService := NewArchiveService(repo, logger)

	workerPoolService, err := NewWorkerPoolArchiveService(
		baseService,
		WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool archive service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}
