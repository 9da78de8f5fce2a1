package producers

import (
	"context"

	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/segmentio/kafka-go"
)

// EventPublisher delivers deposit events to the event bus
type EventPublisher interface {
	PublishEvent(ctx context.Context, event *shared.DepositEvent) error
	Close() error
}

// DeadLetterPublisher handles publishing messages to a Dead Letter Queue
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error
	Close() error
}

// KafkaWriter is the part of kafka.Writer the producers use
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
