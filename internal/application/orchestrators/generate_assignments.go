package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"followup/internal/adapters/http/perf"
	personStore "followup/internal/adapters/storage/person"
	"followup/internal/domain/account"
	"followup/internal/domain/assignment"
	"followup/internal/domain/person"
	"followup/internal/domain/profile"
	"followup/internal/domain/week"
)

// Generation precondition errors
var (
	ErrNoPeople         = errors.New("no people found to assign")
	ErrNoMembers        = errors.New("no approved members found to receive assignments")
	ErrNoMemberProfiles = errors.New("no member profiles found for the approved members")
	ErrInvalidWeekStart = errors.New("week start must be a YYYY-MM-DD date")
)

// PersonLister lists the roster.
type PersonLister interface {
	List(ctx context.Context, filter personStore.ListFilter) ([]person.Person, error)
}

// RoleLister lists account IDs holding a role.
type RoleLister interface {
	ListIDsByRole(ctx context.Context, role string) ([]string, error)
}

// ProfileLister resolves profiles for a set of accounts.
type ProfileLister interface {
	ListByAccountIDs(ctx context.Context, ids []string, approvedOnly bool) ([]profile.Profile, error)
}

// WeekWriter stores one week's batch atomically.
type WeekWriter interface {
	SaveWeek(ctx context.Context, weekStart string, batch []assignment.WeeklyAssignment, replace bool) (int, error)
}

// GenerateAssignmentsInput carries input for the generator.
type GenerateAssignmentsInput struct {
	WeekStart string // YYYY-MM-DD of any day in the week; empty means the current week
	Replace   bool   // overwrite an existing batch instead of refusing
}

// GenerateAssignmentsResult summarises one generation run.
type GenerateAssignmentsResult struct {
	WeekStart  string              `json:"week_start" yaml:"week_start"`
	Created    int                 `json:"created" yaml:"created"`
	Replaced   int                 `json:"replaced" yaml:"replaced"`
	Unassigned map[string][]string `json:"unassigned,omitempty" yaml:"unassigned,omitempty"`
}

// GenerateAssignmentsDeps holds dependencies for GenerateAssignments.
type GenerateAssignmentsDeps struct {
	PersonStore     PersonLister
	AccountStore    RoleLister
	ProfileStore    ProfileLister
	AssignmentStore WeekWriter
	Metrics         *perf.Metrics
	WeekStartDay    time.Weekday
	Rand            *rand.Rand       // nil uses the global source
	Now             func() time.Time // injectable for testing
	GenerateID      func() string    // injectable for testing
}

// ExecuteGenerateAssignments deals every person on the roster to an eligible
// servant of the same gender for one week.
// PRE: WeekStart is empty or YYYY-MM-DD
// POST: Result.WeekStart falls on deps.WeekStartDay; any other date is moved
// back to the start of its week
// POST: On success the week holds exactly Created assignments; on any error
// nothing was written
// INVARIANT: eligibility is role member AND approved profile
func ExecuteGenerateAssignments(ctx context.Context, input GenerateAssignmentsInput, deps GenerateAssignmentsDeps) (GenerateAssignmentsResult, error) {
	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}
	newID := deps.GenerateID
	if newID == nil {
		newID = func() string { return uuid.New().String() }
	}

	weekStart := week.StartString(now, deps.WeekStartDay)
	if input.WeekStart != "" {
		snapped, err := week.Snap(input.WeekStart, deps.WeekStartDay)
		if err != nil {
			return GenerateAssignmentsResult{}, ErrInvalidWeekStart
		}
		weekStart = snapped
	}

	var (
		people    []person.Person
		memberIDs []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		people, err = deps.PersonStore.List(gctx, personStore.ListFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		memberIDs, err = deps.AccountStore.ListIDsByRole(gctx, account.RoleMember)
		return err
	})
	if err := g.Wait(); err != nil {
		deps.Metrics.GenerationFailed(perf.ReasonStore)
		return GenerateAssignmentsResult{}, fmt.Errorf("load roster: %w", err)
	}

	if len(people) == 0 {
		deps.Metrics.GenerationFailed(perf.ReasonNoPeople)
		return GenerateAssignmentsResult{}, ErrNoPeople
	}
	if len(memberIDs) == 0 {
		deps.Metrics.GenerationFailed(perf.ReasonNoMembers)
		return GenerateAssignmentsResult{}, ErrNoMembers
	}

	profiles, err := deps.ProfileStore.ListByAccountIDs(ctx, memberIDs, true)
	if err != nil {
		deps.Metrics.GenerationFailed(perf.ReasonStore)
		return GenerateAssignmentsResult{}, fmt.Errorf("load member profiles: %w", err)
	}
	if len(profiles) == 0 {
		deps.Metrics.GenerationFailed(perf.ReasonNoMemberProfiles)
		return GenerateAssignmentsResult{}, ErrNoMemberProfiles
	}

	targets := make([]assignment.Candidate, 0, len(people))
	for _, p := range people {
		targets = append(targets, assignment.Candidate{ID: p.ID, Gender: p.Gender})
	}
	servants := make([]assignment.Candidate, 0, len(profiles))
	for _, p := range profiles {
		if !p.Eligible(account.RoleMember) {
			continue
		}
		servants = append(servants, assignment.Candidate{ID: p.AccountID, Gender: p.Gender})
	}

	plan := assignment.Distribute(targets, servants, weekStart, deps.Rand)
	for i := range plan.Assignments {
		plan.Assignments[i].ID = newID()
		plan.Assignments[i].CreatedAt = now
	}

	replaced, err := deps.AssignmentStore.SaveWeek(ctx, weekStart, plan.Assignments, input.Replace)
	if err != nil {
		if errors.Is(err, assignment.ErrAlreadyGenerated) {
			deps.Metrics.GenerationFailed(perf.ReasonAlreadyGenerated)
			slog.Info("assignment_event", "event", "generate_refused", "week_start", weekStart, "reason", "already_generated")
			return GenerateAssignmentsResult{}, err
		}
		deps.Metrics.GenerationFailed(perf.ReasonStore)
		return GenerateAssignmentsResult{}, err
	}

	result := GenerateAssignmentsResult{
		WeekStart: weekStart,
		Created:   len(plan.Assignments),
		Replaced:  replaced,
	}
	if plan.UnassignedCount() > 0 {
		result.Unassigned = plan.Unassigned
		for g, ids := range plan.Unassigned {
			slog.Warn("assignment_event", "event", "gender_unserved", "week_start", weekStart, "gender", g, "people", len(ids))
		}
	}

	deps.Metrics.AssignmentsGenerated(result.Created)
	slog.Info("assignment_event", "event", "generated",
		"week_start", weekStart,
		"created", result.Created,
		"replaced", result.Replaced,
		"servants", len(servants),
		"unassigned", plan.UnassignedCount(),
	)
	return result, nil
}
