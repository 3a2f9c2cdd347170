package profile

import (
	"context"

	domain "followup/internal/domain/profile"
)

// Store persists Profile state.
type Store interface {
	GetByAccountID(ctx context.Context, accountID string) (domain.Profile, error)
	Save(ctx context.Context, value domain.Profile) error
	ListByAccountIDs(ctx context.Context, ids []string, approvedOnly bool) ([]domain.Profile, error)
}
