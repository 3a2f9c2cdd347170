package projections

import (
	"context"

	domainAttendance "followup/internal/domain/attendance"
	domainPerson "followup/internal/domain/person"
)

// History limits for QueryGetPersonAttendance.
const (
	DefaultHistoryLimit = 12
	MaxHistoryLimit     = 100
)

// PersonGetter loads one person.
type PersonGetter interface {
	GetByID(ctx context.Context, id string) (domainPerson.Person, error)
}

// AttendanceHistory lists one person's records, newest first.
type AttendanceHistory interface {
	ListByPerson(ctx context.Context, personID string, limit int) ([]domainAttendance.Record, error)
}

// GetPersonAttendanceDeps holds dependencies for GetPersonAttendance.
type GetPersonAttendanceDeps struct {
	PersonStore     PersonGetter
	AttendanceStore AttendanceHistory
}

// PersonAttendanceResult is a person's recent attendance.
type PersonAttendanceResult struct {
	PersonID           string   `json:"person_id"`
	Name               string   `json:"name"`
	LastAttendanceDate string   `json:"last_attendance_date,omitempty"`
	Dates              []string `json:"dates"`
}

// QueryGetPersonAttendance returns the most recent dates a person attended.
// PRE: personID names an existing person
// POST: Dates are newest first, at most limit long; limit is clamped to
// [1, MaxHistoryLimit] and zero means DefaultHistoryLimit
func QueryGetPersonAttendance(ctx context.Context, personID string, limit int, deps GetPersonAttendanceDeps) (PersonAttendanceResult, error) {
	p, err := deps.PersonStore.GetByID(ctx, personID)
	if err != nil {
		return PersonAttendanceResult{}, err
	}

	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	records, err := deps.AttendanceStore.ListByPerson(ctx, personID, limit)
	if err != nil {
		return PersonAttendanceResult{}, err
	}

	result := PersonAttendanceResult{
		PersonID:           p.ID,
		Name:               p.Name,
		LastAttendanceDate: p.LastAttendanceDate,
		Dates:              make([]string, 0, len(records)),
	}
	for _, r := range records {
		result.Dates = append(result.Dates, r.Date)
	}
	return result, nil
}
