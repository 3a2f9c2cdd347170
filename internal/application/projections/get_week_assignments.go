package projections

import (
	"context"
	"fmt"
	"sort"
	"time"

	"followup/internal/adapters/storage/member"
	"followup/internal/domain/week"
)

// ServantWeek groups one servant's assignments.
type ServantWeek struct {
	ServantID   string       `json:"servant_id"`
	ServantName string       `json:"servant_name"`
	Gender      string       `json:"gender"`
	People      []WeekPerson `json:"people"`
	Completed   int          `json:"completed"`
}

// WeekPerson is a person within a servant's group.
type WeekPerson struct {
	AssignmentID string `json:"assignment_id"`
	PersonID     string `json:"person_id"`
	Name         string `json:"name"`
	Completed    bool   `json:"completed"`
}

// GetWeekAssignmentsResult is the admin's overview of a week.
type GetWeekAssignmentsResult struct {
	WeekStart string        `json:"week_start"`
	Total     int           `json:"total"`
	Completed int           `json:"completed"`
	Servants  []ServantWeek `json:"servants"`
}

// GetWeekAssignmentsDeps holds dependencies for GetWeekAssignments.
type GetWeekAssignmentsDeps struct {
	AssignmentStore AssignmentStore
	PersonStore     PersonStore
	MemberStore     MemberStore
	WeekStartDay    time.Weekday
	Now             func() time.Time
}

// QueryGetWeekAssignments groups a week's assignments by servant.
// PRE: weekStart is empty (current week) or YYYY-MM-DD of any day in the week
// POST: Servants sorted by name; people within a servant sorted by name
func QueryGetWeekAssignments(ctx context.Context, weekStart string, deps GetWeekAssignmentsDeps) (GetWeekAssignmentsResult, error) {
	if weekStart == "" {
		now := time.Now()
		if deps.Now != nil {
			now = deps.Now()
		}
		weekStart = week.StartString(now, deps.WeekStartDay)
	} else {
		snapped, err := week.Snap(weekStart, deps.WeekStartDay)
		if err != nil {
			return GetWeekAssignmentsResult{}, fmt.Errorf("week start %q: %w", weekStart, err)
		}
		weekStart = snapped
	}

	assigned, err := deps.AssignmentStore.ListByWeek(ctx, weekStart)
	if err != nil {
		return GetWeekAssignmentsResult{}, err
	}
	people, err := peopleByID(ctx, deps.PersonStore)
	if err != nil {
		return GetWeekAssignmentsResult{}, err
	}
	members, err := deps.MemberStore.List(ctx, member.ListFilter{})
	if err != nil {
		return GetWeekAssignmentsResult{}, err
	}
	names := make(map[string]int, len(members))
	for i, m := range members {
		names[m.AccountID] = i
	}

	groups := map[string]*ServantWeek{}
	result := GetWeekAssignmentsResult{WeekStart: weekStart, Total: len(assigned)}
	for _, a := range assigned {
		g, ok := groups[a.ServantID]
		if !ok {
			g = &ServantWeek{ServantID: a.ServantID}
			if i, found := names[a.ServantID]; found {
				g.ServantName = members[i].Name
				g.Gender = members[i].Gender
			}
			groups[a.ServantID] = g
		}
		g.People = append(g.People, WeekPerson{
			AssignmentID: a.ID,
			PersonID:     a.PersonID,
			Name:         people[a.PersonID].Name,
			Completed:    a.Completed,
		})
		if a.Completed {
			g.Completed++
			result.Completed++
		}
	}

	result.Servants = make([]ServantWeek, 0, len(groups))
	for _, g := range groups {
		sort.Slice(g.People, func(i, j int) bool { return g.People[i].Name < g.People[j].Name })
		result.Servants = append(result.Servants, *g)
	}
	sort.Slice(result.Servants, func(i, j int) bool {
		if result.Servants[i].ServantName != result.Servants[j].ServantName {
			return result.Servants[i].ServantName < result.Servants[j].ServantName
		}
		return result.Servants[i].ServantID < result.Servants[j].ServantID
	})
	return result, nil
}
