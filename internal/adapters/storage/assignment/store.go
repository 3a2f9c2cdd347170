package assignment

import (
	"context"
	"time"

	domain "followup/internal/domain/assignment"
)

// Store persists WeeklyAssignment state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.WeeklyAssignment, error)
	SaveWeek(ctx context.Context, weekStart string, batch []domain.WeeklyAssignment, replace bool) (int, error)
	ListByWeek(ctx context.Context, weekStart string) ([]domain.WeeklyAssignment, error)
	ListByServant(ctx context.Context, servantID, weekStart string) ([]domain.WeeklyAssignment, error)
	MarkCompleted(ctx context.Context, id string, completedAt, undoDeadline time.Time) error
	MarkUncompleted(ctx context.Context, id string, now time.Time) error
}
