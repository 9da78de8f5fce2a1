package producers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/easyplus-cash-ledger/internal/config"
	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockKafkaWriter mocks KafkaWriter; shared by the package tests
type MockKafkaWriter struct {
	mock.Mock
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockKafkaWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestDepositEventProducer_PublishEvent(t *testing.T) {
	ctx := context.Background()
	event := shared.NewDepositEvent(shared.DepositEventSaved, "deposits_2024-05-01_morning", "amine")
	event.CorrelationID = "corr-1"
	event.Total = 1500

	t.Run("keys by session and tags the event type", func(t *testing.T) {
		writer := new(MockKafkaWriter)
		producer := &DepositEventProducer{logger: newTestLogger(), writer: writer, topic: "deposit_events"}

		writer.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			if len(msgs) != 1 {
				return false
			}
			msg := msgs[0]
			var decoded shared.DepositEvent
			if err := json.Unmarshal(msg.Value, &decoded); err != nil {
				return false
			}
			return string(msg.Key) == event.SessionKey &&
				header(msg, HeaderEventType) == "DEPOSIT_SAVED" &&
				header(msg, HeaderCorrelationID) == "corr-1" &&
				decoded.EventID == event.EventID
		})).Return(nil).Once()

		require.NoError(t, producer.PublishEvent(ctx, event))
		writer.AssertExpectations(t)
	})

	t.Run("writer failure", func(t *testing.T) {
		writer := new(MockKafkaWriter)
		producer := &DepositEventProducer{logger: newTestLogger(), writer: writer, topic: "deposit_events"}
		writeErr := errors.New("leader not available")
		writer.On("WriteMessages", ctx, mock.AnythingOfType("[]kafka.Message")).Return(writeErr).Once()

		err := producer.PublishEvent(ctx, event)
		assert.ErrorIs(t, err, writeErr)
		writer.AssertExpectations(t)
	})
}

func TestDepositEventProducer_Close(t *testing.T) {
	writer := new(MockKafkaWriter)
	producer := &DepositEventProducer{logger: newTestLogger(), writer: writer, topic: "deposit_events"}
	closeErr := errors.New("already closed")
	writer.On("Close").Return(closeErr).Once()

	assert.ErrorIs(t, producer.Close(), closeErr)
	writer.AssertExpectations(t)
}

func TestNewDepositEventProducer_RequiresTopic(t *testing.T) {
	_, err := NewDepositEventProducer(newTestLogger(), &config.KafkaConfig{Brokers: "localhost:9092"})
	assert.EqualError(t, err, "kafka deposit events topic is not configured")
}
