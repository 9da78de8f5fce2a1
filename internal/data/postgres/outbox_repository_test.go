package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/easyplus-cash-ledger/internal/domain/outbox"
	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var outboxRowColumns = []string{"id", "event_id", "session_key", "event_type", "payload", "status", "attempts", "created_at", "last_attempt_at"}

func TestOutboxRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}
	message := &outbox.Message{
		EventID:    uuid.New(),
		SessionKey: "deposits_2024-05-01_morning",
		EventType:  shared.DepositEventSaved,
		Payload:    json.RawMessage(`{"total":1500}`),
		Status:     shared.OutboxStatusPending,
		CreatedAt:  time.Now(),
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO deposit_outbox`).
			WithArgs(message.EventID, message.SessionKey, message.EventType, message.Payload, message.Status, 0, message.CreatedAt).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

		require.NoError(t, repo.Create(ctx, message))
		assert.Equal(t, int64(42), message.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		dbErr := errors.New("unique violation")
		mock.ExpectQuery(`INSERT INTO deposit_outbox`).
			WithArgs(message.EventID, message.SessionKey, message.EventType, message.Payload, message.Status, 0, message.CreatedAt).
			WillReturnError(dbErr)

		err := repo.Create(ctx, message)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to create outbox message")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_GetPending(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}
	now := time.Now()
	first := &outbox.Message{
		ID: 1, EventID: uuid.New(), SessionKey: "deposits_2024-05-01_morning", EventType: shared.DepositEventSaved,
		Payload: json.RawMessage(`{}`), Status: shared.OutboxStatusPending, CreatedAt: now,
	}
	second := &outbox.Message{
		ID: 2, EventID: uuid.New(), SessionKey: "deposits_2024-05-01_morning", EventType: shared.DepositEventDeleted,
		Payload: json.RawMessage(`{}`), Status: shared.OutboxStatusPending, Attempts: 2, CreatedAt: now, LastAttemptAt: &now,
	}

	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows(outboxRowColumns).
			AddRow(first.ID, first.EventID, first.SessionKey, first.EventType, first.Payload, first.Status, first.Attempts, first.CreatedAt, first.LastAttemptAt).
			AddRow(second.ID, second.EventID, second.SessionKey, second.EventType, second.Payload, second.Status, second.Attempts, second.CreatedAt, second.LastAttemptAt)
		mock.ExpectQuery(`FROM deposit_outbox\s+WHERE status = \$1`).
			WithArgs(shared.OutboxStatusPending, 10).
			WillReturnRows(rows)

		messages, err := repo.GetPending(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []*outbox.Message{first, second}, messages)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		dbErr := errors.New("connection reset")
		mock.ExpectQuery(`FROM deposit_outbox`).WithArgs(shared.OutboxStatusPending, 10).WillReturnError(dbErr)

		messages, err := repo.GetPending(ctx, 10)
		assert.Nil(t, messages)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE deposit_outbox\s+SET status`).
			WithArgs(shared.OutboxStatusProcessed, pgxmock.AnyArg(), int64(7)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.UpdateStatus(ctx, 7, shared.OutboxStatusProcessed))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec(`UPDATE deposit_outbox\s+SET status`).
			WithArgs(shared.OutboxStatusProcessed, pgxmock.AnyArg(), int64(8)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateStatus(ctx, 8, shared.OutboxStatusProcessed)
		assert.Equal(t, outbox.ErrMessageNotFound{ID: 8}, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_IncrementAttempts(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}

	mock.ExpectExec(`SET attempts = attempts \+ 1`).
		WithArgs(pgxmock.AnyArg(), int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	assert.NoError(t, repo.IncrementAttempts(ctx, 3))

	dbErr := errors.New("timeout")
	mock.ExpectExec(`SET attempts = attempts \+ 1`).
		WithArgs(pgxmock.AnyArg(), int64(3)).
		WillReturnError(dbErr)
	assert.ErrorIs(t, repo.IncrementAttempts(ctx, 3), dbErr)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_WithTx(t *testing.T) {
	repo := &OutboxRepository{logger: newTestLogger()}
	tx := pgx.Tx(nil)

	txRepo, ok := repo.WithTx(tx).(*OutboxRepository)
	require.True(t, ok)
	assert.Equal(t, tx, txRepo.querier)
}
