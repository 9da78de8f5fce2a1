package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/easyplus-cash-ledger/internal/cash_api/middleware"
	"github.com/easyplus-cash-ledger/internal/data/memory"
	"github.com/easyplus-cash-ledger/internal/domain/deposit"
	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("connection refused")

// flakyStore fails every call while down is set
type flakyStore struct {
	*memory.Store
	mu   sync.Mutex
	down bool
}

func (f *flakyStore) setDown(down bool) {
	f.mu.Lock()
	f.down = down
	f.mu.Unlock()
}

func (f *flakyStore) isDown() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.down
}

func (f *flakyStore) Load(ctx context.Context, key deposit.SessionKey) (*deposit.VendorLedger, error) {
	if f.isDown() {
		return nil, errStoreDown
	}
	return f.Store.Load(ctx, key)
}

func (f *flakyStore) Persist(ctx context.Context, key deposit.SessionKey, ledger *deposit.VendorLedger, event *shared.DepositEvent) error {
	if f.isDown() {
		return errStoreDown
	}
	return f.Store.Persist(ctx, key, ledger, event)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newLedgerService(store deposit.Store) *ledgerService {
	svc := NewLedgerService(store, newTestLogger(), time.Second, 100).(*ledgerService)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }
	return svc
}

func mustKey(t *testing.T) deposit.SessionKey {
	t.Helper()
	key, err := deposit.NewSessionKey("2024-05-01", "morning")
	require.NoError(t, err)
	return key
}

func countDeposit(t *testing.T, svc LedgerService, key deposit.SessionKey, vendor string, counts map[int]int) {
	t.Helper()
	ctx := context.Background()
	_, err := svc.SelectVendor(ctx, key, vendor)
	require.NoError(t, err)
	for denomination, count := range counts {
		_, err := svc.RecordBill(ctx, key, denomination, count)
		require.NoError(t, err)
	}
}

func TestLedgerService_SaveDeposit(t *testing.T) {
	store := &flakyStore{Store: memory.NewStore()}
	svc := newLedgerService(store)
	key := mustKey(t)
	ctx := middleware.WithCorrelationID(context.Background(), "corr-7")

	countDeposit(t, svc, key, "amine", map[int]int{100: 70})
	id := uuid.New()

	result, err := svc.SaveDeposit(ctx, key, "amine", id)
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.Equal(t, 1, result.Entry.Sequence)
	assert.Equal(t, int64(7000), result.State.AllVendorsTotal)
	assert.True(t, result.State.Synced)
	assert.True(t, result.State.Working.Amounts.IsZero())

	events := store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, shared.DepositEventSaved, events[0].Type)
	assert.Equal(t, id, events[0].DepositID)
	assert.Equal(t, "corr-7", events[0].CorrelationID)
	assert.Equal(t, key.Key(), events[0].SessionKey)

	t.Run("replay returns the stored entry", func(t *testing.T) {
		replay, err := svc.SaveDeposit(ctx, key, "amine", id)
		require.NoError(t, err)
		assert.False(t, replay.Created)
		assert.Equal(t, result.Entry, replay.Entry)
		assert.Len(t, store.Events(), 1)
	})

	t.Run("empty working deposit", func(t *testing.T) {
		_, err := svc.SaveDeposit(ctx, key, "amine", uuid.New())
		assert.ErrorIs(t, err, deposit.ErrEmptyDeposit)
	})

	t.Run("survives a restart", func(t *testing.T) {
		restarted := newLedgerService(store)
		state, err := restarted.GetSession(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, int64(7000), state.VendorTotals["amine"])
	})
}

func TestLedgerService_RecordBill(t *testing.T) {
	svc := newLedgerService(memory.NewStore())
	key := mustKey(t)
	ctx := context.Background()

	_, err := svc.RecordBill(ctx, key, 100, 5)
	assert.ErrorIs(t, err, deposit.ErrNoActiveVendor)

	_, err = svc.SelectVendor(ctx, key, "amine")
	require.NoError(t, err)

	result, err := svc.RecordBill(ctx, key, 1000, 3)
	require.NoError(t, err)
	assert.True(t, result.HasNext)
	assert.Equal(t, shared.Denomination(500), result.NextFocus)
	assert.Equal(t, int64(3000), result.State.Working.Total())

	_, err = svc.RecordBill(ctx, key, 7, 1)
	assert.ErrorIs(t, err, shared.ErrInvalidDenomination{})
}

func TestLedgerService_DeleteAndClear(t *testing.T) {
	store := memory.NewStore()
	svc := newLedgerService(store)
	key := mustKey(t)
	ctx := context.Background()

	countDeposit(t, svc, key, "amine", map[int]int{500: 2})
	_, err := svc.SaveDeposit(ctx, key, "amine", uuid.New())
	require.NoError(t, err)
	countDeposit(t, svc, key, "amine", map[int]int{250: 4})
	_, err = svc.SaveDeposit(ctx, key, "amine", uuid.New())
	require.NoError(t, err)

	state, err := svc.DeleteDeposit(ctx, key, "amine", 1)
	require.NoError(t, err)
	entries := state.Saved.Entries("amine")
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Sequence)
	assert.Equal(t, int64(1000), state.AllVendorsTotal)

	_, err = svc.DeleteDeposit(ctx, key, "amine", 5)
	assert.ErrorIs(t, err, deposit.ErrDepositNotFound{})

	countDeposit(t, svc, key, "amine", map[int]int{50: 3})
	state, err = svc.ClearWorking(ctx, key)
	require.NoError(t, err)
	assert.True(t, state.Working.Amounts.IsZero())

	events := store.Events()
	require.Len(t, events, 4)
	assert.Equal(t, shared.DepositEventDeleted, events[2].Type)
	assert.Equal(t, shared.DepositEventWorkingCleared, events[3].Type)
	assert.Equal(t, int64(150), events[3].Total)

	t.Run("clearing an empty working deposit records nothing", func(t *testing.T) {
		_, err := svc.ClearWorking(ctx, key)
		require.NoError(t, err)
		assert.Len(t, store.Events(), 4)
	})
}

func TestLedgerService_StoreOutage(t *testing.T) {
	ctx := context.Background()
	key := mustKey(t)

	t.Run("persist failure keeps the session usable", func(t *testing.T) {
		store := &flakyStore{Store: memory.NewStore()}
		svc := newLedgerService(store)

		_, err := svc.GetSession(ctx, key)
		require.NoError(t, err)
		store.setDown(true)

		countDeposit(t, svc, key, "amine", map[int]int{100: 70})
		result, err := svc.SaveDeposit(ctx, key, "amine", uuid.New())
		require.NoError(t, err)
		assert.False(t, result.State.Synced)
		assert.Equal(t, 1, result.State.Pending)
		assert.Equal(t, int64(7000), result.State.AllVendorsTotal)

		_, err = svc.Sync(ctx, key)
		assert.ErrorIs(t, err, ErrStoreUnavailable)

		store.setDown(false)
		state, err := svc.Sync(ctx, key)
		require.NoError(t, err)
		assert.True(t, state.Synced)
		assert.Zero(t, state.Pending)
		assert.Len(t, store.Events(), 1)
	})

	t.Run("load failure never overwrites the stored ledger", func(t *testing.T) {
		store := &flakyStore{Store: memory.NewStore()}
		earlier := newLedgerService(store)
		countDeposit(t, earlier, key, "zoubir", map[int]int{1000: 2})
		_, err := earlier.SaveDeposit(ctx, key, "zoubir", uuid.New())
		require.NoError(t, err)

		store.setDown(true)
		svc := newLedgerService(store)
		countDeposit(t, svc, key, "amine", map[int]int{100: 70})
		result, err := svc.SaveDeposit(ctx, key, "amine", uuid.New())
		require.NoError(t, err)
		assert.False(t, result.State.Synced)
		assert.Equal(t, int64(7000), result.State.AllVendorsTotal)

		store.setDown(false)
		state, err := svc.Sync(ctx, key)
		require.NoError(t, err)
		assert.True(t, state.Synced)
		assert.Equal(t, []string{"zoubir", "amine"}, state.Saved.Vendors())
		assert.Equal(t, int64(9000), state.AllVendorsTotal)

		stored, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, 2, stored.Len())
	})
}

func TestLedgerService_Bundles(t *testing.T) {
	svc := newLedgerService(memory.NewStore())
	key := mustKey(t)
	ctx := context.Background()

	countDeposit(t, svc, key, "A", map[int]int{100: 60})
	_, err := svc.SaveDeposit(ctx, key, "A", uuid.New())
	require.NoError(t, err)
	countDeposit(t, svc, key, "B", map[int]int{100: 70})
	_, err = svc.SaveDeposit(ctx, key, "B", uuid.New())
	require.NoError(t, err)

	plan, err := svc.Bundles(ctx, key, 0)
	require.NoError(t, err)
	assert.Equal(t, 130, plan.TotalBills)
	assert.Equal(t, 1, plan.CompleteBundles)
	assert.Equal(t, shared.Denomination(100), plan.SmallPool.Threshold)

	plan, err = svc.Bundles(ctx, key, 50)
	require.NoError(t, err)
	assert.Equal(t, shared.Denomination(50), plan.SmallPool.Threshold)
	assert.Zero(t, plan.SmallPool.TotalBills)
}
