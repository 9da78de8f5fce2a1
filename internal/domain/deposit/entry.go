package deposit

import (
	"errors"
	"time"

	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrEmptyDeposit   = errors.New("deposit total is zero")
	ErrNoActiveVendor = errors.New("no vendor selected")
	ErrInvalidVendor  = errors.New("vendor cannot be empty")
)

// Entry is a saved cash deposit of one vendor
type Entry struct {
	ID        uuid.UUID      `json:"id"`
	Vendor    string         `json:"vendor"`
	Sequence  int            `json:"sequence"` // 1-based position in the vendor's list
	Timestamp time.Time      `json:"timestamp"`
	Amounts   shared.Amounts `json:"amounts"`
	Total     int64          `json:"total"`
}

// Label names the deposit in bundling instructions
func (e Entry) Label() string {
	return depositLabel(e.Sequence)
}

// WorkingDeposit is the uncommitted bill count of the active vendor
type WorkingDeposit struct {
	Vendor  string         `json:"vendor"`
	Amounts shared.Amounts `json:"amounts"`
}

// Total returns the face value of the working deposit
func (w WorkingDeposit) Total() int64 {
	return w.Amounts.Value()
}

// Label names the working deposit in bundling instructions
func (w WorkingDeposit) Label() string {
	return depositLabel(0)
}
