package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/easyplus-cash-ledger/internal/deposit_archiver/service"
	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/easyplus-cash-ledger/internal/platform/messaging/producers"
)

// DepositEventHandler archives deposit events read from Kafka
type DepositEventHandler struct {
	archiveService service.ArchiveService
	producer       producers.DeadLetterPublisher
	logger         *slog.Logger
}

// NewDepositEventHandler accepts a nil producer when dead-lettering is disabled
func NewDepositEventHandler(
	logger *slog.Logger,
	archiveService service.ArchiveService,
	producer producers.DeadLetterPublisher,
) *DepositEventHandler {
	return &DepositEventHandler{
		archiveService: archiveService,
		producer:       producer,
		logger:         logger,
	}
}

// HandleMessage returns nil when the offset may be committed
func (h *DepositEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event shared.DepositEvent
	if err := json.Unmarshal(value, &event); err != nil {
		h.logger.Error("Failed to unmarshal deposit event from Kafka message",
			"error", err,
			"message_key", string(key),
		)
		return h.deadLetter(ctx, key, value, fmt.Errorf("failed to unmarshal deposit event: %w", err))
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received deposit event",
		"event_id", event.EventID.String(),
		"type", event.Type,
		"session_key", event.SessionKey,
	)

	if err := h.archiveService.ArchiveEvent(ctx, &event); err != nil {
		if errors.Is(err, service.ErrInvalidEvent) {
			logger.Error("Rejected deposit event", "event_id", event.EventID.String(), "error", err)
			return h.deadLetter(ctx, key, value, err)
		}
		logger.Error("Failed to archive deposit event",
			"event_id", event.EventID.String(),
			"error", err,
		)
		return fmt.Errorf("archiving event %s failed: %w", event.EventID.String(), err)
	}
	return nil
}

// deadLetter parks a message that can never succeed. Without a DLQ the
// original error is returned so the offset stays uncommitted.
func (h *DepositEventHandler) deadLetter(ctx context.Context, key, value []byte, cause error) error {
	if h.producer == nil {
		return cause
	}
	if err := h.producer.PublishToDLQ(ctx, string(key), value, cause.Error()); err != nil {
		h.logger.Error("Failed to publish message to DLQ",
			"dlq_error", err,
			"original_error", cause,
			"message_key", string(key),
		)
		return cause
	}
	h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", cause.Error())
	return nil
}
