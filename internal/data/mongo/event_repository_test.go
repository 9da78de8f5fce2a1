package mongo

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/easyplus-cash-ledger/internal/domain/archive"
	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func sampleRecord(t *testing.T) *archive.Record {
	t.Helper()
	event := shared.NewDepositEvent(shared.DepositEventSaved, "deposits_2024-05-01_morning", "amine")
	event.Sequence = 1
	event.DepositID = uuid.New()
	require.NoError(t, event.Amounts.AddLoose(1000, 2))
	event.Total = event.Amounts.Value()
	event.OccurredAt = event.OccurredAt.Truncate(time.Millisecond)
	return archive.NewRecord(event, event.OccurredAt.Add(time.Second))
}

func toDocument(t *testing.T, record *archive.Record) bson.D {
	t.Helper()
	raw, err := bson.Marshal(record)
	require.NoError(t, err)
	var doc bson.D
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func TestEventRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "easyplus_cash." + EventCollectionName

	mt.Run("create", func(mt *mtest.T) {
		repo := NewEventRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		assert.NoError(mt, repo.Create(context.Background(), sampleRecord(mt.T)))
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		repo := NewEventRepository(newTestLogger(), mt.DB)
		record := sampleRecord(mt.T)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := repo.Create(context.Background(), record)
		assert.ErrorIs(mt, err, archive.ErrDuplicateRecord{EventID: record.EventID})
	})

	mt.Run("get by event id", func(mt *mtest.T) {
		repo := NewEventRepository(newTestLogger(), mt.DB)
		record := sampleRecord(mt.T)
		mt.AddMockResponses(mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, toDocument(mt.T, record)))

		found, err := repo.GetByEventID(context.Background(), record.EventID)
		require.NoError(mt, err)
		assert.Equal(mt, record.EventID, found.EventID)
		assert.Equal(mt, record.Amounts, found.Amounts)
		assert.Equal(mt, int64(2000), found.Total)
		assert.True(mt, record.ArchivedAt.Equal(found.ArchivedAt))
	})

	mt.Run("get by event id not found", func(mt *mtest.T) {
		repo := NewEventRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.GetByEventID(context.Background(), uuid.New())
		assert.ErrorIs(mt, err, archive.ErrRecordNotFound{})
	})

	mt.Run("list by session", func(mt *mtest.T) {
		repo := NewEventRepository(newTestLogger(), mt.DB)
		first, second := sampleRecord(mt.T), sampleRecord(mt.T)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, toDocument(mt.T, first), toDocument(mt.T, second)),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch),
		)

		records, err := repo.ListBySession(context.Background(), "deposits_2024-05-01_morning", 20, 0)
		require.NoError(mt, err)
		require.Len(mt, records, 2)
		assert.Equal(mt, first.EventID, records[0].EventID)
		assert.Equal(mt, second.EventID, records[1].EventID)
	})

	mt.Run("count by session", func(mt *mtest.T) {
		repo := NewEventRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(3)}}))

		count, err := repo.CountBySession(context.Background(), "deposits_2024-05-01_morning")
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), count)
	})

	mt.Run("count failure", func(mt *mtest.T) {
		repo := NewEventRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad query"}))

		_, err := repo.CountBySession(context.Background(), "deposits_2024-05-01_morning")
		assert.ErrorContains(mt, err, "failed to count archived events")
	})
}

func TestArchiveIndexes(t *testing.T) {
	indexes := ArchiveIndexes()
	require.Len(t, indexes, 2)

	assert.Equal(t, bson.D{{Key: "event_id", Value: 1}}, indexes[0].Keys)
	require.NotNil(t, indexes[0].Options.Unique)
	assert.True(t, *indexes[0].Options.Unique)

	assert.Equal(t, bson.D{{Key: "session_key", Value: 1}, {Key: "occurred_at", Value: 1}}, indexes[1].Keys)
	assert.Nil(t, indexes[1].Options.Unique)
}
