package service

import (
	"context"

	"github.com/easyplus-cash-ledger/internal/domain/shared"
)

// ArchiveService stores deposit events in the permanent history.
type ArchiveService interface {
	ArchiveEvent(ctx context.Context, event *shared.DepositEvent) error
}
