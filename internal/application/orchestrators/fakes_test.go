package orchestrators

import (
	"context"
	"fmt"
	"sort"
	"time"

	personStore "followup/internal/adapters/storage/person"
	"followup/internal/domain/account"
	"followup/internal/domain/assignment"
	"followup/internal/domain/attendance"
	"followup/internal/domain/person"
	"followup/internal/domain/profile"
)

// fixedTime is Thursday 2026-10-15.
var fixedTime = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

// sequentialIDs returns a generator yielding id-1, id-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// --- people ---

type fakePersonStore struct {
	people  map[string]person.Person
	order   []string
	listErr error
}

func newFakePersonStore(people ...person.Person) *fakePersonStore {
	s := &fakePersonStore{people: map[string]person.Person{}}
	for _, p := range people {
		_ = s.Save(context.Background(), p)
	}
	return s
}

func (s *fakePersonStore) GetByID(_ context.Context, id string) (person.Person, error) {
	p, ok := s.people[id]
	if !ok {
		return person.Person{}, person.ErrNotFound
	}
	return p, nil
}

func (s *fakePersonStore) Save(_ context.Context, p person.Person) error {
	if _, ok := s.people[p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	s.people[p.ID] = p
	return nil
}

func (s *fakePersonStore) Delete(_ context.Context, id string) error {
	if _, ok := s.people[id]; !ok {
		return person.ErrNotFound
	}
	delete(s.people, id)
	return nil
}

func (s *fakePersonStore) List(_ context.Context, _ personStore.ListFilter) ([]person.Person, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []person.Person
	for _, id := range s.order {
		if p, ok := s.people[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// --- accounts and profiles ---

type fakeAccountStore struct {
	accounts map[string]account.Account
	saves    int
}

func newFakeAccountStore(accts ...account.Account) *fakeAccountStore {
	s := &fakeAccountStore{accounts: map[string]account.Account{}}
	for _, a := range accts {
		s.accounts[a.ID] = a
	}
	return s
}

func (s *fakeAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	return a, nil
}

func (s *fakeAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range s.accounts {
		if a.Email == account.NormalizeEmail(email) {
			return a, nil
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (s *fakeAccountStore) Save(_ context.Context, a account.Account) error {
	s.saves++
	s.accounts[a.ID] = a
	return nil
}

func (s *fakeAccountStore) Count(_ context.Context) (int, error) {
	return len(s.accounts), nil
}

func (s *fakeAccountStore) ListIDsByRole(_ context.Context, role string) ([]string, error) {
	var ids []string
	for id, a := range s.accounts {
		if a.Role == role {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

type fakeProfileStore struct {
	profiles map[string]profile.Profile
}

func (s *fakeProfileStore) ListByAccountIDs(_ context.Context, ids []string, approvedOnly bool) ([]profile.Profile, error) {
	var out []profile.Profile
	for _, id := range ids {
		p, ok := s.profiles[id]
		if !ok || (approvedOnly && !p.Approved) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// fakeMemberStore mirrors the member store's paired writes onto the
// account and profile fakes.
type fakeMemberStore struct {
	accounts *fakeAccountStore
	profiles *fakeProfileStore
}

func newFakeMemberStore() *fakeMemberStore {
	return &fakeMemberStore{
		accounts: newFakeAccountStore(),
		profiles: &fakeProfileStore{profiles: map[string]profile.Profile{}},
	}
}

func (s *fakeMemberStore) Register(ctx context.Context, acct account.Account, prof profile.Profile) error {
	if _, err := s.accounts.GetByEmail(ctx, acct.Email); err == nil {
		return account.ErrEmailTaken
	}
	s.accounts.accounts[acct.ID] = acct
	s.profiles.profiles[prof.AccountID] = prof
	return nil
}

func (s *fakeMemberStore) SetApproval(_ context.Context, accountID, role string, approved bool) error {
	a, ok := s.accounts.accounts[accountID]
	if !ok {
		return account.ErrNotFound
	}
	a.Role = role
	s.accounts.accounts[accountID] = a
	p := s.profiles.profiles[accountID]
	p.Approved = approved
	s.profiles.profiles[accountID] = p
	return nil
}

// addServant registers an account+profile pair directly.
func (s *fakeMemberStore) addServant(id, gender, role string, approved bool) {
	s.accounts.accounts[id] = account.Account{ID: id, Email: id + "@church.org", Role: role}
	s.profiles.profiles[id] = profile.Profile{AccountID: id, Name: "Servant " + id, Gender: gender, Approved: approved}
}

// --- assignments ---

type fakeAssignmentStore struct {
	byID    map[string]assignment.WeeklyAssignment
	weeks   map[string][]string
	saveErr error
}

func newFakeAssignmentStore() *fakeAssignmentStore {
	return &fakeAssignmentStore{
		byID:  map[string]assignment.WeeklyAssignment{},
		weeks: map[string][]string{},
	}
}

func (s *fakeAssignmentStore) SaveWeek(_ context.Context, weekStart string, batch []assignment.WeeklyAssignment, replace bool) (int, error) {
	if s.saveErr != nil {
		return 0, s.saveErr
	}
	existing := s.weeks[weekStart]
	if len(existing) > 0 && !replace {
		return 0, assignment.ErrAlreadyGenerated
	}
	for _, id := range existing {
		delete(s.byID, id)
	}
	s.weeks[weekStart] = nil
	for _, a := range batch {
		s.byID[a.ID] = a
		s.weeks[weekStart] = append(s.weeks[weekStart], a.ID)
	}
	return len(existing), nil
}

func (s *fakeAssignmentStore) GetByID(_ context.Context, id string) (assignment.WeeklyAssignment, error) {
	a, ok := s.byID[id]
	if !ok {
		return assignment.WeeklyAssignment{}, assignment.ErrNotFound
	}
	return a, nil
}

func (s *fakeAssignmentStore) MarkCompleted(_ context.Context, id string, completedAt, undoDeadline time.Time) error {
	a, ok := s.byID[id]
	if !ok {
		return assignment.ErrNotFound
	}
	if a.Completed {
		return assignment.ErrAlreadyCompleted
	}
	a.Completed, a.CompletedAt, a.UndoDeadline = true, completedAt, undoDeadline
	s.byID[id] = a
	return nil
}

func (s *fakeAssignmentStore) MarkUncompleted(_ context.Context, id string, now time.Time) error {
	a, ok := s.byID[id]
	if !ok {
		return assignment.ErrNotFound
	}
	if !a.Completed {
		return assignment.ErrNotCompleted
	}
	if !now.Before(a.UndoDeadline) {
		return assignment.ErrUndoWindowExpired
	}
	a.Completed, a.CompletedAt, a.UndoDeadline = false, time.Time{}, time.Time{}
	s.byID[id] = a
	return nil
}

func (s *fakeAssignmentStore) week(weekStart string) []assignment.WeeklyAssignment {
	var out []assignment.WeeklyAssignment
	for _, id := range s.weeks[weekStart] {
		out = append(out, s.byID[id])
	}
	return out
}

// --- attendance ---

type fakeAttendanceStore struct {
	people  *fakePersonStore
	records map[string]attendance.Record
}

func (s *fakeAttendanceStore) Record(ctx context.Context, r attendance.Record) error {
	p, err := s.people.GetByID(ctx, r.PersonID)
	if err != nil {
		return err
	}
	key := r.PersonID + "|" + r.Date
	if _, ok := s.records[key]; ok {
		return attendance.ErrAlreadyMarked
	}
	s.records[key] = r
	if r.Date > p.LastAttendanceDate {
		p.LastAttendanceDate = r.Date
		s.people.people[p.ID] = p
	}
	return nil
}
