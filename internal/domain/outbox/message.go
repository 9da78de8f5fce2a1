package outbox

import (
	"encoding/json"
	"time"

	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Message is a deposit event waiting to be published to the event bus
type Message struct {
	ID            int64                   `json:"id"`
	EventID       uuid.UUID               `json:"event_id"`
	SessionKey    string                  `json:"session_key"`
	EventType     shared.DepositEventType `json:"event_type"`
	Payload       json.RawMessage         `json:"payload"`
	Status        shared.OutboxStatus     `json:"status"`
	Attempts      int                     `json:"attempts"`
	CreatedAt     time.Time               `json:"created_at"`
	LastAttemptAt *time.Time              `json:"last_attempt_at,omitempty"`
}

func NewMessage(event *shared.DepositEvent) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return &Message{
		EventID:    event.EventID,
		SessionKey: event.SessionKey,
		EventType:  event.Type,
		Payload:    payload,
		Status:     shared.OutboxStatusPending,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	m.touch()
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	m.touch()
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	m.touch()
}

// Exhausted reports whether the message used up maxAttempts
func (m *Message) Exhausted(maxAttempts int) bool {
	return m.Attempts >= maxAttempts
}

func (m *Message) touch() {
	now := time.Now().UTC()
	m.LastAttemptAt = &now
}

// GetEvent decodes the deposit event carried by the message
func (m *Message) GetEvent() (*shared.DepositEvent, error) {
	var event shared.DepositEvent
	if err := json.Unmarshal(m.Payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
