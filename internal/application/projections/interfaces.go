package projections

import (
	"context"

	"followup/internal/adapters/storage/member"
	"followup/internal/adapters/storage/person"
	domainAssignment "followup/internal/domain/assignment"
	domainAttendance "followup/internal/domain/attendance"
	domainPerson "followup/internal/domain/person"
	domainProfile "followup/internal/domain/profile"
)

// PersonStore interface for roster queries.
type PersonStore interface {
	List(ctx context.Context, filter person.ListFilter) ([]domainPerson.Person, error)
	Count(ctx context.Context, filter person.ListFilter) (int, error)
}

// AttendanceStore interface for attendance queries.
type AttendanceStore interface {
	ListSince(ctx context.Context, date string) ([]domainAttendance.Record, error)
}

// MemberStore interface for member queries.
type MemberStore interface {
	List(ctx context.Context, filter member.ListFilter) ([]domainProfile.Member, error)
	Count(ctx context.Context, filter member.ListFilter) (int, error)
}

// AssignmentStore interface for weekly assignment queries.
type AssignmentStore interface {
	ListByWeek(ctx context.Context, weekStart string) ([]domainAssignment.WeeklyAssignment, error)
	ListByServant(ctx context.Context, servantID, weekStart string) ([]domainAssignment.WeeklyAssignment, error)
}

// peopleByID loads the whole roster keyed by ID.
func peopleByID(ctx context.Context, store PersonStore) (map[string]domainPerson.Person, error) {
	people, err := store.List(ctx, person.ListFilter{})
	if err != nil {
		return nil, err
	}
	out := make(map[string]domainPerson.Person, len(people))
	for _, p := range people {
		out[p.ID] = p
	}
	return out, nil
}
