package assignment_test

import (
	"errors"
	"testing"
	"time"

	"followup/internal/domain/assignment"
)

func TestWeeklyAssignment_CompleteUndo(t *testing.T) {
	now := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	a := &assignment.WeeklyAssignment{ServantID: "s", PersonID: "p", WeekStart: "2026-10-10"}

	if err := a.Undo(now); !errors.Is(err, assignment.ErrNotCompleted) {
		t.Errorf("Undo() before completion = %v, want ErrNotCompleted", err)
	}

	if err := a.Complete(now, assignment.DefaultUndoGrace); err != nil {
		t.Fatalf("Complete() = %v", err)
	}
	if !a.Completed || !a.CompletedAt.Equal(now) {
		t.Errorf("Complete() did not record completion: %+v", a)
	}
	if want := now.Add(60 * time.Second); !a.UndoDeadline.Equal(want) {
		t.Errorf("UndoDeadline = %v, want %v", a.UndoDeadline, want)
	}
	if err := a.Complete(now, assignment.DefaultUndoGrace); !errors.Is(err, assignment.ErrAlreadyCompleted) {
		t.Errorf("second Complete() = %v, want ErrAlreadyCompleted", err)
	}

	if !a.CanUndo(now.Add(59 * time.Second)) {
		t.Error("CanUndo should be true inside the window")
	}
	if a.CanUndo(now.Add(60 * time.Second)) {
		t.Error("CanUndo should be false at the deadline")
	}

	if err := a.Undo(now.Add(30 * time.Second)); err != nil {
		t.Fatalf("Undo() inside window = %v", err)
	}
	if a.Completed || !a.CompletedAt.IsZero() || !a.UndoDeadline.IsZero() {
		t.Errorf("Undo() did not clear completion: %+v", a)
	}
}

func TestWeeklyAssignment_UndoExpired(t *testing.T) {
	now := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	a := &assignment.WeeklyAssignment{}
	if err := a.Complete(now, assignment.DefaultUndoGrace); err != nil {
		t.Fatalf("Complete() = %v", err)
	}
	if err := a.Undo(now.Add(2 * time.Minute)); !errors.Is(err, assignment.ErrUndoWindowExpired) {
		t.Errorf("Undo() after window = %v, want ErrUndoWindowExpired", err)
	}
	if !a.Completed {
		t.Error("expired Undo() must leave the assignment completed")
	}
}

func TestWeeklyAssignment_Validate(t *testing.T) {
	ok := assignment.WeeklyAssignment{ServantID: "s", PersonID: "p", WeekStart: "2026-10-10"}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	for _, bad := range []assignment.WeeklyAssignment{
		{PersonID: "p", WeekStart: "2026-10-10"},
		{ServantID: "s", WeekStart: "2026-10-10"},
		{ServantID: "s", PersonID: "p"},
	} {
		if err := bad.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, want error", bad)
		}
	}
}
