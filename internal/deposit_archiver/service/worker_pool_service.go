package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/panjf2000/ants/v2"
)

// WorkerPoolArchiveService bounds how many events are archived concurrently
type WorkerPoolArchiveService struct {
	baseService ArchiveService
	pool        *ants.Pool
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolArchiveService(
	baseService ArchiveService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolArchiveService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	return &WorkerPoolArchiveService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// ArchiveEvent runs the base service on a pooled worker and waits for its result.
func (s *WorkerPoolArchiveService) ArchiveEvent(ctx context.Context, event *shared.DepositEvent) error {
	eventCopy := *event
	resultChan := make(chan error, 1)

	err := s.pool.Submit(func() {
		resultChan <- s.baseService.ArchiveEvent(ctx, &eventCopy)
	})
	if err != nil {
		s.logger.Error("Failed to submit event to worker pool",
			"event_id", event.EventID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to submit event to worker pool: %w", err)
	}

	select {
	case err := <-resultChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown releases the pool; running tasks are allowed to finish.
func (s *WorkerPoolArchiveService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

func (s *WorkerPoolArchiveService) Running() int  { return s.pool.Running() }
func (s *WorkerPoolArchiveService) Capacity() int { return s.pool.Cap() }
