package archive

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores archived records; an event id is stored at most once
type Repository interface {
	Create(ctx context.Context, record *Record) error
	GetByEventID(ctx context.Context, eventID uuid.UUID) (*Record, error)
	ListBySession(ctx context.Context, sessionKey string, limit, offset int) ([]*Record, error)
	CountBySession(ctx context.Context, sessionKey string) (int64, error)
}

// ErrRecordNotFound indicates no record holds the event id
type ErrRecordNotFound struct {
	EventID uuid.UUID
}

func (e ErrRecordNotFound) Error() string {
	return "archive record not found: " + e.EventID.String()
}

// Is matches any ErrRecordNotFound when the target carries no event id
func (e ErrRecordNotFound) Is(target error) bool {
	t, ok := target.(ErrRecordNotFound)
	if !ok {
		return false
	}
	return t.EventID == uuid.Nil || e.EventID == t.EventID
}

// ErrDuplicateRecord indicates the event was already archived
type ErrDuplicateRecord struct {
	EventID uuid.UUID
}

func (e ErrDuplicateRecord) Error() string {
	return "duplicate archive record: " + e.EventID.String()
}

func (e ErrDuplicateRecord) Is(target error) bool {
	t, ok := target.(ErrDuplicateRecord)
	if !ok {
		return false
	}
	return t.EventID == uuid.Nil || e.EventID == t.EventID
}
