package assignment

import (
	"errors"
	"time"
)

// DefaultUndoGrace is how long a servant may take back a completion.
const DefaultUndoGrace = 60 * time.Second

// Domain errors
var (
	ErrAlreadyCompleted  = errors.New("assignment is already completed")
	ErrNotCompleted      = errors.New("assignment is not completed")
	ErrUndoWindowExpired = errors.New("undo window has expired")
	ErrNotOwner          = errors.New("assignment belongs to another servant")
	ErrNotFound          = errors.New("assignment not found")
	ErrAlreadyGenerated  = errors.New("assignments for this week have already been generated")
)

// WeeklyAssignment asks one servant to follow up one person during a week.
type WeeklyAssignment struct {
	ID           string
	ServantID    string
	PersonID     string
	WeekStart    string // YYYY-MM-DD
	Completed    bool
	CompletedAt  time.Time
	UndoDeadline time.Time
	CreatedAt    time.Time
}

// Validate checks if the WeeklyAssignment has valid data.
// PRE: WeeklyAssignment struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (a *WeeklyAssignment) Validate() error {
	if a.ServantID == "" {
		return errors.New("assignment must have a servant")
	}
	if a.PersonID == "" {
		return errors.New("assignment must have a person")
	}
	if a.WeekStart == "" {
		return errors.New("assignment must have a week start")
	}
	return nil
}

// Complete marks the assignment done and opens the undo window.
// PRE: Assignment is not completed
// POST: Completed is true, CompletedAt is now, UndoDeadline is now+grace
func (a *WeeklyAssignment) Complete(now time.Time, grace time.Duration) error {
	if a.Completed {
		return ErrAlreadyCompleted
	}
	a.Completed = true
	a.CompletedAt = now
	a.UndoDeadline = now.Add(grace)
	return nil
}

// CanUndo reports whether a completion may still be taken back at now.
// INVARIANT: Assignment fields are not mutated
func (a *WeeklyAssignment) CanUndo(now time.Time) bool {
	return a.Completed && now.Before(a.UndoDeadline)
}

// Undo reverts a completion inside the undo window.
// PRE: Assignment is completed and now is before UndoDeadline
// POST: Completed is false, CompletedAt and UndoDeadline are zero
func (a *WeeklyAssignment) Undo(now time.Time) error {
	if !a.Completed {
		return ErrNotCompleted
	}
	if !a.CanUndo(now) {
		return ErrUndoWindowExpired
	}
	a.Completed = false
	a.CompletedAt = time.Time{}
	a.UndoDeadline = time.Time{}
	return nil
}
