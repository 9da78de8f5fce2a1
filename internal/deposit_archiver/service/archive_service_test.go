package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/easyplus-cash-ledger/internal/domain/archive"
	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockArchiveRepository struct {
	mock.Mock
}

func (m *MockArchiveRepository) Create(ctx context.Context, record *archive.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockArchiveRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) (*archive.Record, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*archive.Record), args.Error(1)
}

func (m *MockArchiveRepository) ListBySession(ctx context.Context, sessionKey string, limit, offset int) ([]*archive.Record, error) {
	args := m.Called(ctx, sessionKey, limit, offset)
	return args.Get(0).([]*archive.Record), args.Error(1)
}

func (m *MockArchiveRepository) CountBySession(ctx context.Context, sessionKey string) (int64, error) {
	args := m.Called(ctx, sessionKey)
	return args.Get(0).(int64), args.Error(1)
}

func newSavedEvent() *shared.DepositEvent {
	event := shared.NewDepositEvent(shared.DepositEventSaved, "deposits_2024-05-01_morning", "amine")
	event.Sequence = 1
	event.DepositID = uuid.New()
	event.Total = 7000
	event.CorrelationID = "corr-1"
	return event
}

func TestArchiveService_ArchiveEvent(t *testing.T) {
	archivedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		event       func() *shared.DepositEvent
		setupMock   func(repo *MockArchiveRepository, event *shared.DepositEvent)
		expectedErr error
	}{
		{
			name:  "archives a new event",
			event: newSavedEvent,
			setupMock: func(repo *MockArchiveRepository, event *shared.DepositEvent) {
				repo.On("Create", mock.Anything, mock.MatchedBy(func(r *archive.Record) bool {
					return r.EventID == event.EventID && r.ArchivedAt.Equal(archivedAt) && r.Total == 7000
				})).Return(nil).Once()
			},
		},
		{
			name:  "duplicate is treated as archived",
			event: newSavedEvent,
			setupMock: func(repo *MockArchiveRepository, event *shared.DepositEvent) {
				repo.On("Create", mock.Anything, mock.Anything).Return(archive.ErrDuplicateRecord{EventID: event.EventID}).Once()
			},
		},
		{
			name:  "repository failure is returned",
			event: newSavedEvent,
			setupMock: func(repo *MockArchiveRepository, _ *shared.DepositEvent) {
				repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("mongo down")).Once()
			},
			expectedErr: errors.New("mongo down"),
		},
		{
			name: "missing event id",
			event: func() *shared.DepositEvent {
				e := newSavedEvent()
				e.EventID = uuid.Nil
				return e
			},
			expectedErr: ErrInvalidEvent,
		},
		{
			name: "missing session key",
			event: func() *shared.DepositEvent {
				e := newSavedEvent()
				e.SessionKey = ""
				return e
			},
			expectedErr: ErrInvalidEvent,
		},
		{
			name: "unknown type",
			event: func() *shared.DepositEvent {
				e := newSavedEvent()
				e.Type = "DEPOSIT_EDITED"
				return e
			},
			expectedErr: ErrInvalidEvent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockArchiveRepository)
			event := tt.event()
			if tt.setupMock != nil {
				tt.setupMock(repo, event)
			}

			svc := NewArchiveService(repo, slog.Default()).(*archiveService)
			svc.now = func() time.Time { return archivedAt }

			err := svc.ArchiveEvent(context.Background(), event)
			switch {
			case tt.expectedErr == nil:
				assert.NoError(t, err)
			case errors.Is(tt.expectedErr, ErrInvalidEvent):
				assert.ErrorIs(t, err, ErrInvalidEvent)
			default:
				assert.ErrorContains(t, err, tt.expectedErr.Error())
			}
			repo.AssertExpectations(t)
		})
	}

	t.Run("nil event", func(t *testing.T) {
		svc := NewArchiveService(new(MockArchiveRepository), slog.Default())
		assert.ErrorIs(t, svc.ArchiveEvent(context.Background(), nil), ErrInvalidEvent)
	})
}
