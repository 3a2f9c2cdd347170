package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"followup/internal/domain/assignment"
)

// AssignmentCompleter defines the store interface needed to toggle completion.
type AssignmentCompleter interface {
	GetByID(ctx context.Context, id string) (assignment.WeeklyAssignment, error)
	MarkCompleted(ctx context.Context, id string, completedAt, undoDeadline time.Time) error
	MarkUncompleted(ctx context.Context, id string, now time.Time) error
}

// AssignmentActionInput identifies an assignment and the servant acting on it.
type AssignmentActionInput struct {
	AssignmentID string
	ServantID    string
}

// AssignmentActionDeps holds dependencies for Complete/Undo.
type AssignmentActionDeps struct {
	AssignmentStore AssignmentCompleter
	UndoGrace       time.Duration // zero means assignment.DefaultUndoGrace
	Now             func() time.Time
}

func (d AssignmentActionDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// loadOwned fetches an assignment and checks it belongs to servantID.
func loadOwned(ctx context.Context, input AssignmentActionInput, store AssignmentCompleter) (assignment.WeeklyAssignment, error) {
	a, err := store.GetByID(ctx, input.AssignmentID)
	if err != nil {
		return assignment.WeeklyAssignment{}, err
	}
	if a.ServantID != input.ServantID {
		return assignment.WeeklyAssignment{}, assignment.ErrNotOwner
	}
	return a, nil
}

// ExecuteCompleteAssignment marks a servant's assignment as done and opens
// the undo window.
// PRE: The assignment belongs to ServantID and is not completed
// POST: Stored row has completed_at = now and undo_deadline = now + grace
func ExecuteCompleteAssignment(ctx context.Context, input AssignmentActionInput, deps AssignmentActionDeps) (assignment.WeeklyAssignment, error) {
	a, err := loadOwned(ctx, input, deps.AssignmentStore)
	if err != nil {
		return assignment.WeeklyAssignment{}, err
	}

	grace := deps.UndoGrace
	if grace <= 0 {
		grace = assignment.DefaultUndoGrace
	}
	if err := a.Complete(deps.now(), grace); err != nil {
		return assignment.WeeklyAssignment{}, err
	}
	if err := deps.AssignmentStore.MarkCompleted(ctx, a.ID, a.CompletedAt, a.UndoDeadline); err != nil {
		return assignment.WeeklyAssignment{}, err
	}

	slog.Info("assignment_event", "event", "completed", "assignment_id", a.ID, "servant_id", a.ServantID, "undo_deadline", a.UndoDeadline)
	return a, nil
}

// ExecuteUndoAssignment takes back a completion while the undo window is open.
// PRE: The assignment belongs to ServantID and is completed
// POST: Assignment is uncompleted, or ErrUndoWindowExpired once the stored
// deadline has passed
// INVARIANT: the store re-checks the deadline in the same write
func ExecuteUndoAssignment(ctx context.Context, input AssignmentActionInput, deps AssignmentActionDeps) (assignment.WeeklyAssignment, error) {
	a, err := loadOwned(ctx, input, deps.AssignmentStore)
	if err != nil {
		return assignment.WeeklyAssignment{}, err
	}

	now := deps.now()
	if err := a.Undo(now); err != nil {
		return assignment.WeeklyAssignment{}, err
	}
	if err := deps.AssignmentStore.MarkUncompleted(ctx, a.ID, now); err != nil {
		return assignment.WeeklyAssignment{}, err
	}

	slog.Info("assignment_event", "event", "uncompleted", "assignment_id", a.ID, "servant_id", a.ServantID)
	return a, nil
}
