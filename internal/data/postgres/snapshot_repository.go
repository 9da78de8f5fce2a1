// Package postgres stores ledger snapshots and their outbox messages in PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/easyplus-cash-ledger/internal/domain/deposit"
	"github.com/easyplus-cash-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// SnapshotRepository implements deposit.SnapshotRepository as a key-value table
type SnapshotRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewSnapshotRepository(logger *slog.Logger, db *persistence.PostgresDB) deposit.SnapshotRepository {
	return &SnapshotRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *SnapshotRepository) WithTx(tx pgx.Tx) deposit.SnapshotRepository {
	return &SnapshotRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Get returns the stored payload, or deposit.ErrLedgerNotFound
func (r *SnapshotRepository) Get(ctx context.Context, key string) ([]byte, error) {
	query := `
		SELECT payload
		FROM ledger_snapshots
		WHERE key = $1
	`

	var payload []byte
	if err := r.querier.QueryRow(ctx, query, key).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, deposit.ErrLedgerNotFound{Key: key}
		}
		r.logger.Error("Failed to get ledger snapshot", "key", key, "error", err)
		return nil, fmt.Errorf("failed to get ledger snapshot: %w", err)
	}

	return payload, nil
}

// Put inserts or replaces the payload stored under key
func (r *SnapshotRepository) Put(ctx context.Context, key string, payload []byte) error {
	query := `
		INSERT INTO ledger_snapshots (key, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.querier.Exec(ctx, query, key, payload, time.Now().UTC()); err != nil {
		r.logger.Error("Failed to put ledger snapshot", "key", key, "error", err)
		return fmt.Errorf("failed to put ledger snapshot: %w", err)
	}

	return nil
}
