// Package archive describes the permanent history of ledger changes.
package archive

import (
	"time"

	"github.com/easyplus-cash-ledger/internal/domain/shared"
)

// Record is a deposit event as kept in the archive
type Record struct {
	shared.DepositEvent `bson:",inline"`
	ArchivedAt          time.Time `json:"archived_at" bson:"archived_at"`
}

func NewRecord(event *shared.DepositEvent, at time.Time) *Record {
	return &Record{DepositEvent: *event, ArchivedAt: at}
}
