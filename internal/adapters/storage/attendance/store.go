package attendance

import (
	"context"

	domain "followup/internal/domain/attendance"
)

// Store persists attendance Records.
type Store interface {
	Record(ctx context.Context, value domain.Record) error
	ListSince(ctx context.Context, date string) ([]domain.Record, error)
	ListByPerson(ctx context.Context, personID string, limit int) ([]domain.Record, error)
}
