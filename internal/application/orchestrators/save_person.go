package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"followup/internal/application/validation"
	"followup/internal/domain/person"
)

// PersonStoreForSave defines the store interface needed by SavePerson.
type PersonStoreForSave interface {
	GetByID(ctx context.Context, id string) (person.Person, error)
	Save(ctx context.Context, p person.Person) error
}

// PersonStoreForDelete defines the store interface needed by DeletePerson.
type PersonStoreForDelete interface {
	Delete(ctx context.Context, id string) error
}

// SavePersonInput carries the admin's person form. An empty ID creates.
type SavePersonInput struct {
	ID     string `json:"-"`
	Name   string `json:"name" validate:"notblank,max=100"`
	Phone  string `json:"phone" validate:"phone"`
	Gender string `json:"gender" validate:"gender"`
}

// SavePersonDeps holds dependencies for SavePerson.
type SavePersonDeps struct {
	PersonStore PersonStoreForSave
	Now         func() time.Time
	GenerateID  func() string
}

// ExecuteSavePerson creates or updates a person on the roster.
// PRE: input passes field validation
// POST: Person stored with a capitalized name; an update keeps CreatedAt and
// the last attendance date
func ExecuteSavePerson(ctx context.Context, input SavePersonInput, deps SavePersonDeps) (person.Person, error) {
	if err := validation.Struct(input); err != nil {
		return person.Person{}, err
	}

	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}

	p := person.Person{
		ID:        input.ID,
		Name:      input.Name,
		Phone:     input.Phone,
		Gender:    input.Gender,
		CreatedAt: now,
	}
	event := "person_updated"
	if p.ID == "" {
		event = "person_created"
		if deps.GenerateID != nil {
			p.ID = deps.GenerateID()
		} else {
			p.ID = uuid.New().String()
		}
	} else {
		existing, err := deps.PersonStore.GetByID(ctx, p.ID)
		if err != nil {
			return person.Person{}, err
		}
		p.CreatedAt = existing.CreatedAt
		p.LastAttendanceDate = existing.LastAttendanceDate
	}

	p.Normalize()
	if err := p.Validate(); err != nil {
		return person.Person{}, err
	}
	if err := deps.PersonStore.Save(ctx, p); err != nil {
		return person.Person{}, err
	}

	slog.Info("person_event", "event", event, "person_id", p.ID, "gender", p.Gender)
	return p, nil
}

// ExecuteDeletePerson removes a person together with their attendance and
// assignments.
// PRE: id is non-empty
// POST: Person no longer exists, or person.ErrNotFound is returned
func ExecuteDeletePerson(ctx context.Context, id string, store PersonStoreForDelete) error {
	if id == "" {
		return person.ErrNotFound
	}
	if err := store.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("person_event", "event", "person_deleted", "person_id", id)
	return nil
}
