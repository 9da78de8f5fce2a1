package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/easyplus-cash-ledger/internal/domain/deposit"
	"github.com/easyplus-cash-ledger/internal/domain/outbox"
	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/easyplus-cash-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// LedgerStore implements deposit.Store. A snapshot and the event describing
// the change that produced it are written in the same transaction.
type LedgerStore struct {
	db        persistence.TxRunner
	snapshots deposit.SnapshotRepository
	outbox    outbox.Repository
	logger    *slog.Logger
}

func NewLedgerStore(logger *slog.Logger, db persistence.TxRunner, snapshots deposit.SnapshotRepository, outboxRepo outbox.Repository) *LedgerStore {
	return &LedgerStore{
		db:        db,
		snapshots: snapshots,
		outbox:    outboxRepo,
		logger:    logger,
	}
}

var _ deposit.Store = (*LedgerStore)(nil)

func (s *LedgerStore) Load(ctx context.Context, key deposit.SessionKey) (*deposit.VendorLedger, error) {
	payload, err := s.snapshots.Get(ctx, key.Key())
	if err != nil {
		return nil, err
	}

	ledger := deposit.NewVendorLedger()
	if err := json.Unmarshal(payload, ledger); err != nil {
		s.logger.Error("Failed to decode ledger snapshot", "session_key", key.Key(), "error", err)
		return nil, fmt.Errorf("failed to decode ledger snapshot: %w", err)
	}
	return ledger, nil
}

// Persist stores ledger under key; event may be nil when nothing is to be published
func (s *LedgerStore) Persist(ctx context.Context, key deposit.SessionKey, ledger *deposit.VendorLedger, event *shared.DepositEvent) error {
	payload, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("failed to encode ledger snapshot: %w", err)
	}

	var message *outbox.Message
	if event != nil {
		if message, err = outbox.NewMessage(event); err != nil {
			return fmt.Errorf("failed to create outbox message: %w", err)
		}
	}

	return s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.snapshots.WithTx(tx).Put(ctx, key.Key(), payload); err != nil {
			return err
		}
		if message != nil {
			return s.outbox.WithTx(tx).Create(ctx, message)
		}
		return nil
	})
}
