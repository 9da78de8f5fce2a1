// Package outbox relays deposit events written next to the ledger snapshots
// to the event bus.
package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/easyplus-cash-ledger/internal/config"
	"github.com/easyplus-cash-ledger/internal/domain/outbox"
	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/easyplus-cash-ledger/internal/platform/messaging/producers"
)

// Poller publishes pending outbox messages in creation order
type Poller struct {
	outboxRepo       outbox.Repository
	publisher        producers.EventPublisher
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewPoller(
	cfg *config.OutboxConfig,
	outboxRepo outbox.Repository,
	publisher producers.EventPublisher,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		outboxRepo:       outboxRepo,
		publisher:        publisher,
		logger:           logger,
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

// Start polls until ctx is canceled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting outbox poller",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox poller stopping")
			return
		case <-ticker.C:
			if err := p.ProcessPending(ctx); err != nil {
				p.logger.Error("Failed to process pending outbox messages", "error", err)
			}
		}
	}
}

// ProcessPending publishes one batch. A message that fails is retried on
// later batches until it has used maxRetryAttempts.
func (p *Poller) ProcessPending(ctx context.Context) error {
	messages, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	if len(messages) == 0 {
		return nil
	}

	p.logger.Debug("Fetched pending outbox messages", "count", len(messages))
	for _, msg := range messages {
		p.publish(ctx, msg)
	}
	return nil
}

func (p *Poller) publish(ctx context.Context, msg *outbox.Message) {
	logger := p.logger.With("outbox_id", msg.ID, "event_id", msg.EventID.String())

	event, err := msg.GetEvent()
	if err != nil {
		logger.Error("Failed to decode outbox payload, marking as FAILED_TO_PUBLISH", "error", err)
		p.updateStatus(ctx, logger, msg.ID, shared.OutboxStatusFailedToPublish)
		return
	}
	if event.CorrelationID != "" {
		logger = logger.With("correlation_id", event.CorrelationID)
	}

	if err := p.publisher.PublishEvent(ctx, event); err != nil {
		logger.Error("Failed to publish deposit event",
			"attempts", msg.Attempts,
			"error", err,
		)
		if errInc := p.outboxRepo.IncrementAttempts(ctx, msg.ID); errInc != nil {
			logger.Error("Failed to increment outbox attempts", "error", errInc)
			return
		}
		msg.IncrementAttempts()
		if msg.Exhausted(p.maxRetryAttempts) {
			logger.Warn("Max retry attempts reached, marking as FAILED_TO_PUBLISH", "attempts", msg.Attempts)
			p.updateStatus(ctx, logger, msg.ID, shared.OutboxStatusFailedToPublish)
		}
		return
	}

	p.updateStatus(ctx, logger, msg.ID, shared.OutboxStatusProcessed)
	logger.Info("Published deposit event", "type", event.Type, "session_key", event.SessionKey)
}

func (p *Poller) updateStatus(ctx context.Context, logger *slog.Logger, id int64, status shared.OutboxStatus) {
	if err := p.outboxRepo.UpdateStatus(ctx, id, status); err != nil {
		logger.Error("Failed to update outbox status", "status", status, "error", err)
	}
}
