// Package mongo archives deposit events in MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/easyplus-cash-ledger/internal/domain/archive"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EventCollectionName holds one document per archived deposit event
const EventCollectionName = "deposit_events"

// ArchiveIndexes backs idempotent archiving (unique event_id) and the
// per-session history listing
func ArchiveIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_event_id"),
		},
		{
			Keys:    bson.D{{Key: "session_key", Value: 1}, {Key: "occurred_at", Value: 1}},
			Options: options.Index().SetName("session_history"),
		},
	}
}

// EventRepository implements archive.Repository. Uniqueness of event_id is
// enforced by a unique index.
type EventRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

func NewEventRepository(logger *slog.Logger, db *mongo.Database) archive.Repository {
	return &EventRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts record; a second insert of the same event yields archive.ErrDuplicateRecord
func (r *EventRepository) Create(ctx context.Context, record *archive.Record) error {
	if _, err := r.db.Collection(EventCollectionName).InsertOne(ctx, record); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return archive.ErrDuplicateRecord{EventID: record.EventID}
		}
		r.logger.Error("Failed to archive deposit event",
			"event_id", record.EventID.String(),
			"session_key", record.SessionKey,
			"error", err)
		return fmt.Errorf("failed to archive deposit event: %w", err)
	}
	return nil
}

func (r *EventRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) (*archive.Record, error) {
	var record archive.Record
	err := r.db.Collection(EventCollectionName).FindOne(ctx, bson.M{"event_id": eventID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, archive.ErrRecordNotFound{EventID: eventID}
		}
		r.logger.Error("Failed to get archived event", "event_id", eventID.String(), "error", err)
		return nil, fmt.Errorf("failed to get archived event: %w", err)
	}
	return &record, nil
}

// ListBySession pages through the events of a session, oldest first
func (r *EventRepository) ListBySession(ctx context.Context, sessionKey string, limit, offset int) ([]*archive.Record, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.db.Collection(EventCollectionName).Find(ctx, bson.M{"session_key": sessionKey}, opts)
	if err != nil {
		r.logger.Error("Failed to list archived events", "session_key", sessionKey, "error", err)
		return nil, fmt.Errorf("failed to list archived events: %w", err)
	}
	defer cursor.Close(ctx)

	records := []*archive.Record{}
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode archived events", "session_key", sessionKey, "error", err)
		return nil, fmt.Errorf("failed to decode archived events: %w", err)
	}
	return records, nil
}

func (r *EventRepository) CountBySession(ctx context.Context, sessionKey string) (int64, error) {
	count, err := r.db.Collection(EventCollectionName).CountDocuments(ctx, bson.M{"session_key": sessionKey})
	if err != nil {
		r.logger.Error("Failed to count archived events", "session_key", sessionKey, "error", err)
		return 0, fmt.Errorf("failed to count archived events: %w", err)
	}
	return count, nil
}
