package person

import (
	"context"

	domain "followup/internal/domain/person"
)

// Store persists Person state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Person, error)
	Save(ctx context.Context, value domain.Person) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Person, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// Sort orders accepted by List.
const (
	SortName           = "name"
	SortLastAttendance = "last_attendance"
	SortNewest         = "newest"
)

// ListFilter carries filtering parameters for List operations.
// A zero Limit returns every match.
type ListFilter struct {
	Search string // case-insensitive substring of name or phone
	Gender string
	Sort   string
	Limit  int
	Offset int
}
