package shared

import (
	"time"

	"github.com/google/uuid"
)

// DepositEvent defines a Kafka message describing one ledger mutation
type DepositEvent struct {
	EventID       uuid.UUID        `json:"event_id" bson:"event_id"`
	Type          DepositEventType `json:"type" bson:"type"`
	SessionKey    string           `json:"session_key" bson:"session_key"`
	Vendor        string           `json:"vendor" bson:"vendor"`
	Sequence      int              `json:"sequence,omitempty" bson:"sequence,omitempty"`
	DepositID     uuid.UUID        `json:"deposit_id" bson:"deposit_id"`
	Amounts       Amounts          `json:"amounts" bson:"amounts"`
	Total         int64            `json:"total" bson:"total"`
	CorrelationID string           `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at" bson:"occurred_at"`
}

// NewDepositEvent stamps a new event id and occurrence time
func NewDepositEvent(eventType DepositEventType, sessionKey, vendor string) *DepositEvent {
	return &DepositEvent{
		EventID:    uuid.New(),
		Type:       eventType,
		SessionKey: sessionKey,
		Vendor:     vendor,
		OccurredAt: time.Now().UTC(),
	}
}
