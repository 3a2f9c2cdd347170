package attendance

import (
	"time"

	"followup/internal/domain/person"
	"followup/internal/domain/week"
)

// Absence windows measured back from today.
const (
	OneWeek    = 7
	ThreeWeeks = 21
)

// Attendee is the slice of a roster entry the calculator needs.
type Attendee struct {
	ID                 string
	Gender             string
	LastAttendanceDate string // YYYY-MM-DD, empty if never attended
}

// StatsInput is everything ComputeStats reads. It performs no I/O.
type StatsInput struct {
	Today           time.Time
	WeekStart       time.Time
	Roster          []Attendee
	ThisWeek        []Record // records dated on or after WeekStart; older ones are ignored
	ApprovedMembers int
	PendingRequests int
}

// Stats is the admin dashboard summary.
type Stats struct {
	WeekStart       string `json:"week_start" yaml:"week_start"`
	Total           int    `json:"total" yaml:"total"`
	Male            int    `json:"male" yaml:"male"`
	Female          int    `json:"female" yaml:"female"`
	Present         int    `json:"present_this_week" yaml:"present_this_week"`
	Absent          int    `json:"absent_this_week" yaml:"absent_this_week"`
	Absent1w        int    `json:"absent_1w" yaml:"absent_1w"`
	Absent3w        int    `json:"absent_3w" yaml:"absent_3w"`
	NeverAttended   int    `json:"never_attended" yaml:"never_attended"`
	Lapsed          int    `json:"lapsed" yaml:"lapsed"`
	ApprovedMembers int    `json:"approved_members" yaml:"approved_members"`
	PendingRequests int    `json:"pending_requests" yaml:"pending_requests"`
}

// ComputeStats derives the dashboard counts from a roster and this week's
// attendance records.
// PRE: Today and WeekStart are set; dates are YYYY-MM-DD
// POST: Absent == Total - Present; a never-attended person is counted in both
// Absent1w and Absent3w; a dated person lands in at most one of them
// INVARIANT: Lapsed counts only dated people between one and three weeks
// absent, so Absent1w == Lapsed + NeverAttended
func ComputeStats(in StatsInput) Stats {
	start := week.Format(in.WeekStart)
	today := week.Date(in.Today)
	oneWeekAgo := week.Format(today.AddDate(0, 0, -OneWeek))
	threeWeeksAgo := week.Format(today.AddDate(0, 0, -ThreeWeeks))

	onRoster := make(map[string]struct{}, len(in.Roster))
	s := Stats{
		WeekStart:       start,
		Total:           len(in.Roster),
		ApprovedMembers: in.ApprovedMembers,
		PendingRequests: in.PendingRequests,
	}

	for _, p := range in.Roster {
		onRoster[p.ID] = struct{}{}
		switch p.Gender {
		case person.GenderMale:
			s.Male++
		case person.GenderFemale:
			s.Female++
		}

		d := p.LastAttendanceDate
		switch {
		case d == "":
			s.NeverAttended++
			s.Absent1w++
			s.Absent3w++
		case d < threeWeeksAgo:
			s.Absent3w++
		case d < oneWeekAgo:
			s.Absent1w++
			s.Lapsed++
		}
	}

	present := make(map[string]struct{})
	for _, r := range in.ThisWeek {
		if r.Date < start {
			continue
		}
		if _, ok := onRoster[r.PersonID]; ok {
			present[r.PersonID] = struct{}{}
		}
	}
	s.Present = len(present)
	s.Absent = s.Total - s.Present
	return s
}
