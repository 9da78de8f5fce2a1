package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/easyplus-cash-ledger/internal/cash_api/middleware"
	"github.com/easyplus-cash-ledger/internal/domain/deposit"
	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/easyplus-cash-ledger/internal/engine/bundle"
	"github.com/google/uuid"
)

// session is the in-memory ledger of one (date, shift). Its mutex serialises
// every operation on the session.
type session struct {
	mu            sync.Mutex
	ledger        *deposit.Ledger
	loadAttempted bool
	loaded        bool
	dirty         bool
	pending       []*shared.DepositEvent
}

type ledgerService struct {
	store          deposit.Store
	logger         *slog.Logger
	storeTimeout   time.Duration
	smallThreshold shared.Denomination
	now            func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewLedgerService keeps sessions in memory and writes them through store.
// A store that cannot be reached never blocks the operator: the session keeps
// working in memory and Sync retries later.
func NewLedgerService(
	store deposit.Store,
	logger *slog.Logger,
	storeTimeout time.Duration,
	smallThreshold int,
) LedgerService {
	return &ledgerService{
		store:          store,
		logger:         logger,
		storeTimeout:   storeTimeout,
		smallThreshold: shared.Denomination(smallThreshold),
		now:            func() time.Time { return time.Now().UTC() },
		sessions:       make(map[string]*session),
	}
}

// acquire returns the session locked; callers must unlock it
func (s *ledgerService) acquire(ctx context.Context, key deposit.SessionKey) *session {
	s.mu.Lock()
	sess, ok := s.sessions[key.Key()]
	if !ok {
		sess = &session{ledger: deposit.NewLedger(nil)}
		s.sessions[key.Key()] = sess
	}
	s.mu.Unlock()

	sess.mu.Lock()
	if !sess.loadAttempted {
		s.load(ctx, key, sess)
	}
	return sess
}

func (s *ledgerService) load(ctx context.Context, key deposit.SessionKey, sess *session) {
	sess.loadAttempted = true

	loadCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	stored, err := s.store.Load(loadCtx, key)
	switch {
	case errors.Is(err, deposit.ErrLedgerNotFound{}):
		sess.loaded = true
	case err != nil:
		s.logger.Warn("Ledger store unreachable, continuing in memory",
			"session_key", key.Key(),
			"error", err,
		)
		return
	default:
		sess.loaded = true
	}

	if carried := sess.ledger.Rebase(stored); carried > 0 {
		s.logger.Info("Carried in-memory deposits onto stored ledger",
			"session_key", key.Key(),
			"carried", carried,
		)
		sess.dirty = true
	}
}

// persist queues event and writes the session through the store. Until the
// stored ledger has been read nothing is written, so a stored ledger is
// never replaced by a partial one.
func (s *ledgerService) persist(ctx context.Context, key deposit.SessionKey, sess *session, event *shared.DepositEvent) {
	if event != nil {
		event.CorrelationID = middleware.CorrelationIDFromContext(ctx)
		sess.pending = append(sess.pending, event)
	}
	sess.dirty = true

	if !sess.loaded {
		s.logger.Warn("Stored ledger not loaded yet, change kept in memory",
			"session_key", key.Key(),
			"pending_events", len(sess.pending),
		)
		return
	}
	s.flush(ctx, key, sess)
}

func (s *ledgerService) flush(ctx context.Context, key deposit.SessionKey, sess *session) {
	persistCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	snapshot := sess.ledger.Snapshot()
	if len(sess.pending) == 0 {
		if err := s.store.Persist(persistCtx, key, snapshot, nil); err != nil {
			s.logFlushFailure(key, sess, err)
			return
		}
	}
	for len(sess.pending) > 0 {
		if err := s.store.Persist(persistCtx, key, snapshot, sess.pending[0]); err != nil {
			s.logFlushFailure(key, sess, err)
			return
		}
		sess.pending = sess.pending[1:]
	}
	sess.dirty = false
}

func (s *ledgerService) logFlushFailure(key deposit.SessionKey, sess *session, err error) {
	s.logger.Error("Failed to persist ledger, keeping session changes in memory",
		"session_key", key.Key(),
		"pending_events", len(sess.pending),
		"error", err,
	)
}

func (s *ledgerService) state(key deposit.SessionKey, sess *session) *SessionState {
	saved := sess.ledger.Snapshot()
	totals := make(map[string]int64, len(saved.Vendors()))
	for _, vendor := range saved.Vendors() {
		totals[vendor] = sess.ledger.VendorTotal(vendor)
	}
	return &SessionState{
		Key:             key,
		Saved:           saved,
		Working:         sess.ledger.Working(),
		VendorTotals:    totals,
		AllVendorsTotal: sess.ledger.AllVendorsTotal(),
		Synced:          sess.loaded && !sess.dirty,
		Pending:         len(sess.pending),
	}
}

func (s *ledgerService) GetSession(ctx context.Context, key deposit.SessionKey) (*SessionState, error) {
	sess := s.acquire(ctx, key)
	defer sess.mu.Unlock()
	return s.state(key, sess), nil
}

func (s *ledgerService) SelectVendor(ctx context.Context, key deposit.SessionKey, vendor string) (*SessionState, error) {
	sess := s.acquire(ctx, key)
	defer sess.mu.Unlock()

	if err := sess.ledger.SelectVendor(vendor); err != nil {
		return nil, err
	}
	return s.state(key, sess), nil
}

func (s *ledgerService) RecordBill(ctx context.Context, key deposit.SessionKey, denomination, count int) (*RecordResult, error) {
	sess := s.acquire(ctx, key)
	defer sess.mu.Unlock()

	next, ok, err := sess.ledger.RecordBill(denomination, count)
	if err != nil {
		return nil, err
	}
	return &RecordResult{State: s.state(key, sess), NextFocus: next, HasNext: ok}, nil
}

func (s *ledgerService) ClearWorking(ctx context.Context, key deposit.SessionKey) (*SessionState, error) {
	sess := s.acquire(ctx, key)
	defer sess.mu.Unlock()

	cleared := sess.ledger.ClearWorkingDeposit()
	if !cleared.Amounts.IsZero() {
		event := shared.NewDepositEvent(shared.DepositEventWorkingCleared, key.Key(), cleared.Vendor)
		event.Amounts = cleared.Amounts
		event.Total = cleared.Total()
		s.persist(ctx, key, sess, event)
	}
	return s.state(key, sess), nil
}

func (s *ledgerService) SaveDeposit(ctx context.Context, key deposit.SessionKey, vendor string, depositID uuid.UUID) (*SaveResult, error) {
	sess := s.acquire(ctx, key)
	defer sess.mu.Unlock()

	entry, created, err := sess.ledger.SaveWorkingDeposit(vendor, depositID, s.now())
	if err != nil {
		return nil, err
	}

	if created {
		event := shared.NewDepositEvent(shared.DepositEventSaved, key.Key(), vendor)
		event.Sequence = entry.Sequence
		event.DepositID = entry.ID
		event.Amounts = entry.Amounts
		event.Total = entry.Total
		s.persist(ctx, key, sess, event)

		s.logger.Info("Deposit saved",
			"session_key", key.Key(),
			"vendor", vendor,
			"sequence", entry.Sequence,
			"total", entry.Total,
			"synced", !sess.dirty,
		)
	}
	return &SaveResult{State: s.state(key, sess), Entry: entry, Created: created}, nil
}

func (s *ledgerService) DeleteDeposit(ctx context.Context, key deposit.SessionKey, vendor string, sequence int) (*SessionState, error) {
	sess := s.acquire(ctx, key)
	defer sess.mu.Unlock()

	removed, err := sess.ledger.DeleteDeposit(vendor, sequence)
	if err != nil {
		return nil, err
	}

	event := shared.NewDepositEvent(shared.DepositEventDeleted, key.Key(), vendor)
	event.Sequence = removed.Sequence
	event.DepositID = removed.ID
	event.Amounts = removed.Amounts
	event.Total = removed.Total
	s.persist(ctx, key, sess, event)

	return s.state(key, sess), nil
}

// Sync retries whatever a previous store failure left behind: the initial
// load first, then the pending snapshot and events.
func (s *ledgerService) Sync(ctx context.Context, key deposit.SessionKey) (*SessionState, error) {
	sess := s.acquire(ctx, key)
	defer sess.mu.Unlock()

	if !sess.loaded {
		s.load(ctx, key, sess)
		if !sess.loaded {
			return s.state(key, sess), fmt.Errorf("%w: stored ledger could not be loaded", ErrStoreUnavailable)
		}
	}
	if sess.dirty {
		s.flush(ctx, key, sess)
		if sess.dirty {
			return s.state(key, sess), fmt.Errorf("%w: %d events pending", ErrStoreUnavailable, len(sess.pending))
		}
	}
	return s.state(key, sess), nil
}

func (s *ledgerService) Bundles(ctx context.Context, key deposit.SessionKey, smallThreshold int) (*bundle.Plan, error) {
	sess := s.acquire(ctx, key)
	working := sess.ledger.Working()
	saved := sess.ledger.Snapshot()
	sess.mu.Unlock()

	threshold := s.smallThreshold
	if smallThreshold > 0 {
		threshold = shared.Denomination(smallThreshold)
	}
	plan := bundle.NewAllocator(threshold).Plan(bundle.Pool(saved, &working))
	return &plan, nil
}
