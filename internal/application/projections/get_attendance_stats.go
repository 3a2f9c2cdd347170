package projections

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"followup/internal/adapters/storage/member"
	"followup/internal/adapters/storage/person"
	"followup/internal/domain/account"
	"followup/internal/domain/attendance"
	domainPerson "followup/internal/domain/person"
	"followup/internal/domain/week"
)

// GetAttendanceStatsDeps holds dependencies for GetAttendanceStats.
type GetAttendanceStatsDeps struct {
	PersonStore     PersonStore
	AttendanceStore AttendanceStore
	MemberStore     MemberStore
	WeekStartDay    time.Weekday
	Now             func() time.Time
}

// QueryGetAttendanceStats builds the admin dashboard counts for the current
// week.
// PRE: none
// POST: Returns attendance.Stats for the week containing Now
// INVARIANT: the four reads are independent and run concurrently
func QueryGetAttendanceStats(ctx context.Context, deps GetAttendanceStatsDeps) (attendance.Stats, error) {
	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}
	weekStart := week.Start(now, deps.WeekStartDay)

	var (
		roster   []domainPerson.Person
		records  []attendance.Record
		approved int
		pending  int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		roster, err = deps.PersonStore.List(gctx, person.ListFilter{})
		return err
	})
	g.Go(func() (err error) {
		records, err = deps.AttendanceStore.ListSince(gctx, week.Format(weekStart))
		return err
	})
	g.Go(func() (err error) {
		approved, err = deps.MemberStore.Count(gctx, member.ListFilter{Role: account.RoleMember, Approved: member.Bool(true)})
		return err
	})
	g.Go(func() (err error) {
		pending, err = deps.MemberStore.Count(gctx, member.ListFilter{Role: account.RolePending})
		return err
	})
	if err := g.Wait(); err != nil {
		return attendance.Stats{}, err
	}

	attendees := make([]attendance.Attendee, 0, len(roster))
	for _, p := range roster {
		attendees = append(attendees, attendance.Attendee{ID: p.ID, Gender: p.Gender, LastAttendanceDate: p.LastAttendanceDate})
	}

	return attendance.ComputeStats(attendance.StatsInput{
		Today:           now,
		WeekStart:       weekStart,
		Roster:          attendees,
		ThisWeek:        records,
		ApprovedMembers: approved,
		PendingRequests: pending,
	}), nil
}
