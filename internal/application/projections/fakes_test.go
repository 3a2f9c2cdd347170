package projections

import (
	"context"
	"strings"
	"time"

	"followup/internal/adapters/storage/member"
	"followup/internal/adapters/storage/person"
	domainAssignment "followup/internal/domain/assignment"
	domainAttendance "followup/internal/domain/attendance"
	domainPerson "followup/internal/domain/person"
	domainProfile "followup/internal/domain/profile"
)

// thursday is 2026-10-15; the Saturday-anchored week starts 2026-10-10.
var thursday = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return thursday }

type fakePersonStore struct {
	people []domainPerson.Person
	last   person.ListFilter
}

func (s *fakePersonStore) match(f person.ListFilter) []domainPerson.Person {
	var out []domainPerson.Person
	for _, p := range s.people {
		if f.Gender != "" && p.Gender != f.Gender {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *fakePersonStore) List(_ context.Context, f person.ListFilter) ([]domainPerson.Person, error) {
	s.last = f
	out := s.match(f)
	if f.Limit > 0 {
		end := min(f.Offset+f.Limit, len(out))
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:end]
	}
	return out, nil
}

func (s *fakePersonStore) Count(_ context.Context, f person.ListFilter) (int, error) {
	return len(s.match(f)), nil
}

type fakeAttendanceStore struct {
	records []domainAttendance.Record
	since   string
}

func (s *fakeAttendanceStore) ListSince(_ context.Context, date string) ([]domainAttendance.Record, error) {
	s.since = date
	var out []domainAttendance.Record
	for _, r := range s.records {
		if r.Date >= date {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeMemberStore struct {
	members []domainProfile.Member
}

func (s *fakeMemberStore) List(_ context.Context, f member.ListFilter) ([]domainProfile.Member, error) {
	var out []domainProfile.Member
	for _, m := range s.members {
		if f.Role != "" && m.Role != f.Role {
			continue
		}
		if f.Approved != nil && m.Approved != *f.Approved {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *fakeMemberStore) Count(ctx context.Context, f member.ListFilter) (int, error) {
	ms, _ := s.List(ctx, f)
	return len(ms), nil
}

type fakeAssignmentStore struct {
	assignments []domainAssignment.WeeklyAssignment
}

func (s *fakeAssignmentStore) ListByWeek(_ context.Context, weekStart string) ([]domainAssignment.WeeklyAssignment, error) {
	var out []domainAssignment.WeeklyAssignment
	for _, a := range s.assignments {
		if a.WeekStart == weekStart {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeAssignmentStore) ListByServant(_ context.Context, servantID, weekStart string) ([]domainAssignment.WeeklyAssignment, error) {
	var out []domainAssignment.WeeklyAssignment
	for _, a := range s.assignments {
		if a.WeekStart == weekStart && a.ServantID == servantID {
			out = append(out, a)
		}
	}
	return out, nil
}
