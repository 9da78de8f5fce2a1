package service

import (
	"context"

	"github.com/easyplus-cash-ledger/internal/domain/archive"
	"github.com/easyplus-cash-ledger/internal/domain/deposit"
	"github.com/easyplus-cash-ledger/internal/engine/bundle"
	"github.com/easyplus-cash-ledger/internal/engine/change"
	"github.com/easyplus-cash-ledger/internal/engine/reconcile"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerService runs the denomination ledger of each (date, shift) session
type LedgerService interface {
	GetSession(ctx context.Context, key deposit.SessionKey) (*SessionState, error)
	SelectVendor(ctx context.Context, key deposit.SessionKey, vendor string) (*SessionState, error)
	RecordBill(ctx context.Context, key deposit.SessionKey, denomination, count int) (*RecordResult, error)
	ClearWorking(ctx context.Context, key deposit.SessionKey) (*SessionState, error)
	SaveDeposit(ctx context.Context, key deposit.SessionKey, vendor string, depositID uuid.UUID) (*SaveResult, error)
	DeleteDeposit(ctx context.Context, key deposit.SessionKey, vendor string, sequence int) (*SessionState, error)
	Sync(ctx context.Context, key deposit.SessionKey) (*SessionState, error)
	Bundles(ctx context.Context, key deposit.SessionKey, smallThreshold int) (*bundle.Plan, error)
}

// CashService exposes the stateless cash computations
type CashService interface {
	Change(amount decimal.Decimal) ([]change.Combination, error)
	Reconcile(req ReconcileRequest) reconcile.Result
}

// HistoryService reads the archived deposit events of a session
type HistoryService interface {
	ListSessionHistory(ctx context.Context, key deposit.SessionKey, page, pageSize int) ([]*archive.Record, int64, error)
	GetSessionEvent(ctx context.Context, key deposit.SessionKey, eventID uuid.UUID) (*archive.Record, error)
}
