// Package memory keeps ledger snapshots in process memory. It backs the
// cash API when PostgreSQL is unreachable and serves as a test double.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/easyplus-cash-ledger/internal/domain/deposit"
	"github.com/easyplus-cash-ledger/internal/domain/shared"
)

// Store implements deposit.Store. Snapshots are kept serialized so a loaded
// ledger never aliases a persisted one.
type Store struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
	events    []shared.DepositEvent
}

func NewStore() *Store {
	return &Store{snapshots: make(map[string][]byte)}
}

var _ deposit.Store = (*Store)(nil)

func (s *Store) Load(ctx context.Context, key deposit.SessionKey) (*deposit.VendorLedger, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	payload, ok := s.snapshots[key.Key()]
	s.mu.RUnlock()
	if !ok {
		return nil, deposit.ErrLedgerNotFound{Key: key.Key()}
	}

	ledger := deposit.NewVendorLedger()
	if err := json.Unmarshal(payload, ledger); err != nil {
		return nil, fmt.Errorf("failed to decode ledger snapshot: %w", err)
	}
	return ledger, nil
}

func (s *Store) Persist(ctx context.Context, key deposit.SessionKey, ledger *deposit.VendorLedger, event *shared.DepositEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("failed to encode ledger snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[key.Key()] = payload
	if event != nil {
		s.events = append(s.events, *event)
	}
	return nil
}

// Events returns the change events recorded so far, oldest first
func (s *Store) Events() []shared.DepositEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]shared.DepositEvent(nil), s.events...)
}
