package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/easyplus-cash-ledger/internal/domain/archive"
	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// ErrInvalidEvent marks an event that can never be archived; retrying will not help
var ErrInvalidEvent = errors.New("invalid deposit event")

type archiveService struct {
	repo   archive.Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewArchiveService(repo archive.Repository, logger *slog.Logger) ArchiveService {
	return &archiveService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ArchiveEvent is idempotent by event id: a redelivered event is a no-op
func (s *archiveService) ArchiveEvent(ctx context.Context, event *shared.DepositEvent) error {
	if err := validateEvent(event); err != nil {
		return err
	}

	logger := s.logger.With("event_id", event.EventID.String(), "session_key", event.SessionKey)
	if event.CorrelationID != "" {
		logger = logger.With("correlation_id", event.CorrelationID)
	}

	err := s.repo.Create(ctx, archive.NewRecord(event, s.now()))
	if errors.Is(err, archive.ErrDuplicateRecord{}) {
		logger.Info("Deposit event already archived, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to archive event %s: %w", event.EventID, err)
	}

	logger.Info("Archived deposit event",
		"type", event.Type,
		"vendor", event.Vendor,
		"total", event.Total,
	)
	return nil
}

func validateEvent(event *shared.DepositEvent) error {
	switch {
	case event == nil:
		return fmt.Errorf("%w: empty event", ErrInvalidEvent)
	case event.EventID == uuid.Nil:
		return fmt.Errorf("%w: missing event_id", ErrInvalidEvent)
	case event.SessionKey == "":
		return fmt.Errorf("%w: missing session_key", ErrInvalidEvent)
	}
	switch event.Type {
	case shared.DepositEventSaved, shared.DepositEventDeleted, shared.DepositEventWorkingCleared:
		return nil
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, event.Type)
	}
}
