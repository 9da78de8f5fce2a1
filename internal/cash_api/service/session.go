package service

import (
	"github.com/easyplus-cash-ledger/internal/domain/deposit"
	"github.com/easyplus-cash-ledger/internal/domain/shared"
)

// SessionState is a consistent read of one session
type SessionState struct {
	Key             deposit.SessionKey
	Saved           *deposit.VendorLedger
	Working         deposit.WorkingDeposit
	VendorTotals    map[string]int64
	AllVendorsTotal int64
	// Synced is false while some change has not reached the store
	Synced  bool
	Pending int
}

// RecordResult is the session after a bill count plus the denomination to focus next
type RecordResult struct {
	State     *SessionState
	NextFocus shared.Denomination
	HasNext   bool
}

// SaveResult reports whether a save appended a new deposit or replayed an existing one
type SaveResult struct {
	State   *SessionState
	Entry   deposit.Entry
	Created bool
}
