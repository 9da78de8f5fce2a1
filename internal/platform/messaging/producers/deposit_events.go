package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/easyplus-cash-ledger/internal/config"
	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/segmentio/kafka-go"
)

const (
	HeaderEventType     = "event-type"
	HeaderCorrelationID = "correlation-id"
)

// DepositEventProducer writes deposit events keyed by session, so the events
// of one session stay ordered within a partition
type DepositEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

func NewDepositEventProducer(logger *slog.Logger, cfg *config.KafkaConfig) (*DepositEventProducer, error) {
	if cfg.DepositEventsTopic == "" {
		return nil, fmt.Errorf("kafka deposit events topic is not configured")
	}
	if err := ensureTopic(cfg, cfg.DepositEventsTopic, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure deposit events topic %s exists: %w", cfg.DepositEventsTopic, err)
	}

	// Synchronous writes: the outbox marks a message processed only once the broker acknowledged it
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.DepositEventsTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return &DepositEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.DepositEventsTopic,
	}, nil
}

func (p *DepositEventProducer) PublishEvent(ctx context.Context, event *shared.DepositEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal deposit event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.SessionKey),
		Value: value,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(event.Type)},
			{Key: HeaderCorrelationID, Value: []byte(event.CorrelationID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish deposit event",
			"topic", p.topic,
			"event_id", event.EventID.String(),
			"session_key", event.SessionKey,
			"error", err,
		)
		return fmt.Errorf("failed to publish deposit event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published deposit event",
		"topic", p.topic,
		"event_id", event.EventID.String(),
		"type", string(event.Type),
	)
	return nil
}

func (p *DepositEventProducer) Close() error {
	p.logger.Info("Closing deposit event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
