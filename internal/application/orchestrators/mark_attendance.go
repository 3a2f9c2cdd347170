package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"followup/internal/adapters/http/perf"
	"followup/internal/domain/attendance"
	"followup/internal/domain/week"
)

// AttendanceRecorder writes an attendance record and advances the person's
// last attendance date in one step.
type AttendanceRecorder interface {
	Record(ctx context.Context, r attendance.Record) error
}

// MarkAttendanceInput carries input for MarkAttendance.
type MarkAttendanceInput struct {
	PersonID   string
	RecordedBy string
}

// MarkAttendanceDeps holds dependencies for MarkAttendance.
type MarkAttendanceDeps struct {
	AttendanceStore AttendanceRecorder
	Metrics         *perf.Metrics
	Now             func() time.Time
	GenerateID      func() string
}

// ExecuteMarkAttendance marks a person present today.
// PRE: PersonID refers to an existing person
// POST: One record exists for (PersonID, today) and the person's last
// attendance date is at least today; a second call the same day returns
// attendance.ErrAlreadyMarked
func ExecuteMarkAttendance(ctx context.Context, input MarkAttendanceInput, deps MarkAttendanceDeps) (attendance.Record, error) {
	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}
	newID := deps.GenerateID
	if newID == nil {
		newID = func() string { return uuid.New().String() }
	}

	rec := attendance.Record{
		ID:         newID(),
		PersonID:   input.PersonID,
		Date:       week.Format(now),
		RecordedBy: input.RecordedBy,
		CreatedAt:  now,
	}
	if err := rec.Validate(); err != nil {
		return attendance.Record{}, err
	}

	if err := deps.AttendanceStore.Record(ctx, rec); err != nil {
		if errors.Is(err, attendance.ErrAlreadyMarked) {
			slog.Info("attendance_event", "event", "already_marked", "person_id", rec.PersonID, "date", rec.Date)
		}
		return attendance.Record{}, err
	}

	deps.Metrics.AttendanceMarked()
	slog.Info("attendance_event", "event", "marked", "person_id", rec.PersonID, "date", rec.Date, "recorded_by", rec.RecordedBy)
	return rec, nil
}
