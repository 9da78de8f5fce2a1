package deposit

import (
	"context"
	"fmt"

	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/jackc/pgx/v5"
)

// Store loads and persists the vendor ledger of one (date, shift) session
type Store interface {
	Load(ctx context.Context, key SessionKey) (*VendorLedger, error)

	// Persist writes the snapshot and records the change event atomically
	Persist(ctx context.Context, key SessionKey, ledger *VendorLedger, event *shared.DepositEvent) error
}

// SnapshotRepository keeps the serialized ledger of each session under its key
type SnapshotRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, payload []byte) error
	WithTx(tx pgx.Tx) SnapshotRepository
}

// ErrLedgerNotFound indicates no snapshot exists for a session
type ErrLedgerNotFound struct {
	Key string
}

func (e ErrLedgerNotFound) Error() string {
	return "ledger not found: " + e.Key
}

// Is implements the errors.Is interface for ErrLedgerNotFound
func (e ErrLedgerNotFound) Is(target error) bool {
	t, ok := target.(ErrLedgerNotFound)
	if !ok {
		return false
	}
	return t.Key == "" || e.Key == t.Key
}

// ErrDepositNotFound indicates a missing saved deposit
type ErrDepositNotFound struct {
	Vendor   string
	Sequence int
}

func (e ErrDepositNotFound) Error() string {
	return fmt.Sprintf("deposit not found: vendor %s, sequence %d", e.Vendor, e.Sequence)
}

// Is implements the errors.Is interface for ErrDepositNotFound
func (e ErrDepositNotFound) Is(target error) bool {
	t, ok := target.(ErrDepositNotFound)
	if !ok {
		return false
	}
	// If the target is empty, consider it a match for any ErrDepositNotFound
	if t.Vendor == "" && t.Sequence == 0 {
		return true
	}
	return e.Vendor == t.Vendor && e.Sequence == t.Sequence
}
