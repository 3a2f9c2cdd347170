package projections

import (
	"context"
	"time"

	"followup/internal/domain/contact"
	"followup/internal/domain/week"
)

// MyAssignment is one person on a servant's list for the week.
type MyAssignment struct {
	ID                 string    `json:"id"`
	PersonID           string    `json:"person_id"`
	PersonName         string    `json:"person_name"`
	Phone              string    `json:"phone"`
	Gender             string    `json:"gender"`
	LastAttendanceDate string    `json:"last_attendance_date,omitempty"`
	WhatsAppURL        string    `json:"whatsapp_url"`
	Completed          bool      `json:"completed"`
	CompletedAt        time.Time `json:"completed_at,omitzero"`
	UndoDeadline       time.Time `json:"undo_deadline,omitzero"`
	CanUndo            bool      `json:"can_undo"`
}

// GetMyAssignmentsResult is the member dashboard.
type GetMyAssignmentsResult struct {
	WeekStart   string         `json:"week_start"`
	Assignments []MyAssignment `json:"assignments"`
	Completed   int            `json:"completed"`
	Remaining   int            `json:"remaining"`
}

// GetMyAssignmentsDeps holds dependencies for GetMyAssignments.
type GetMyAssignmentsDeps struct {
	AssignmentStore AssignmentStore
	PersonStore     PersonStore
	WeekStartDay    time.Weekday
	Now             func() time.Time
}

// QueryGetMyAssignments lists a servant's assignments for the current week
// with contact details and undo eligibility.
// PRE: servantID is an approved member
// POST: Uncompleted assignments come first; CanUndo reflects the stored deadline at Now
func QueryGetMyAssignments(ctx context.Context, servantID string, deps GetMyAssignmentsDeps) (GetMyAssignmentsResult, error) {
	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}
	weekStart := week.StartString(now, deps.WeekStartDay)

	assigned, err := deps.AssignmentStore.ListByServant(ctx, servantID, weekStart)
	if err != nil {
		return GetMyAssignmentsResult{}, err
	}
	people, err := peopleByID(ctx, deps.PersonStore)
	if err != nil {
		return GetMyAssignmentsResult{}, err
	}

	result := GetMyAssignmentsResult{WeekStart: weekStart, Assignments: make([]MyAssignment, 0, len(assigned))}
	for _, a := range assigned {
		p := people[a.PersonID]
		result.Assignments = append(result.Assignments, MyAssignment{
			ID:                 a.ID,
			PersonID:           a.PersonID,
			PersonName:         p.Name,
			Phone:              p.Phone,
			Gender:             p.Gender,
			LastAttendanceDate: p.LastAttendanceDate,
			WhatsAppURL:        contact.WhatsAppURL(p.Phone),
			Completed:          a.Completed,
			CompletedAt:        a.CompletedAt,
			UndoDeadline:       a.UndoDeadline,
			CanUndo:            a.CanUndo(now),
		})
		if a.Completed {
			result.Completed++
		} else {
			result.Remaining++
		}
	}
	return result, nil
}
