package assignment

import (
	"math/rand/v2"

	"followup/internal/domain/person"
)

// Candidate is an ID with the gender partition it belongs to. Both people to
// visit and eligible servants are passed as candidates.
type Candidate struct {
	ID     string
	Gender string
}

// Plan is the outcome of one distribution run.
type Plan struct {
	Assignments []WeeklyAssignment
	// Unassigned holds, per gender, the people who had no eligible servant.
	Unassigned map[string][]string
}

// UnassignedCount totals the people left without a servant.
func (p Plan) UnassignedCount() int {
	n := 0
	for _, ids := range p.Unassigned {
		n += len(ids)
	}
	return n
}

// Distribute spreads people over servants of the same gender for one week.
// Each gender's people are shuffled and then dealt round-robin over that
// gender's servants in the order given.
// PRE: weekStart is YYYY-MM-DD
// POST: every person appears in exactly one Assignment or in Unassigned;
// within a gender, servant loads differ by at most one
// INVARIANT: people and servants are not mutated
func Distribute(people, servants []Candidate, weekStart string, rnd *rand.Rand) Plan {
	peopleByGender := partition(people)
	servantsByGender := partition(servants)

	plan := Plan{
		Assignments: make([]WeeklyAssignment, 0, len(people)),
		Unassigned:  map[string][]string{},
	}

	for _, g := range genderOrder(peopleByGender) {
		group := peopleByGender[g]
		workers := servantsByGender[g]
		if len(workers) == 0 {
			for _, c := range group {
				plan.Unassigned[g] = append(plan.Unassigned[g], c.ID)
			}
			continue
		}
		for i, c := range Shuffle(group, rnd) {
			plan.Assignments = append(plan.Assignments, WeeklyAssignment{
				ServantID: workers[i%len(workers)].ID,
				PersonID:  c.ID,
				WeekStart: weekStart,
			})
		}
	}
	return plan
}

func partition(cs []Candidate) map[string][]Candidate {
	out := make(map[string][]Candidate, len(person.Genders))
	for _, c := range cs {
		out[c.Gender] = append(out[c.Gender], c)
	}
	return out
}

// genderOrder lists the known genders first so output order is stable, then
// any stray partitions found in the input.
func genderOrder(groups map[string][]Candidate) []string {
	order := append([]string(nil), person.Genders...)
	for g := range groups {
		if !person.IsValidGender(g) {
			order = append(order, g)
		}
	}
	return order
}
