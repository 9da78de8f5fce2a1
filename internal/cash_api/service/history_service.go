package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/easyplus-cash-ledger/internal/domain/archive"
	"github.com/easyplus-cash-ledger/internal/domain/deposit"
	"github.com/google/uuid"
)

type historyService struct {
	repo   archive.Repository
	logger *slog.Logger
}

func NewHistoryService(repo archive.Repository, logger *slog.Logger) HistoryService {
	return &historyService{repo: repo, logger: logger}
}

// ListSessionHistory returns one page of archived events and the total count
func (s *historyService) ListSessionHistory(ctx context.Context, key deposit.SessionKey, page, pageSize int) ([]*archive.Record, int64, error) {
	offset := (page - 1) * pageSize

	records, err := s.repo.ListBySession(ctx, key.Key(), pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list session history: %w", err)
	}

	total, err := s.repo.CountBySession(ctx, key.Key())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count session history: %w", err)
	}

	s.logger.Debug("Listed session history",
		"session_key", key.Key(),
		"page", page,
		"returned", len(records),
		"total", total,
	)
	return records, total, nil
}

// GetSessionEvent returns one archived event. An event archived under another
// session is reported as not found.
func (s *historyService) GetSessionEvent(ctx context.Context, key deposit.SessionKey, eventID uuid.UUID) (*archive.Record, error) {
	record, err := s.repo.GetByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if record.SessionKey != key.Key() {
		s.logger.Warn("Archived event requested under another session",
			"event_id", eventID.String(),
			"session_key", key.Key(),
			"archived_session_key", record.SessionKey,
		)
		return nil, archive.ErrRecordNotFound{EventID: eventID}
	}
	return record, nil
}
