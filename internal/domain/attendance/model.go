package attendance

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrMissingPerson = errors.New("attendance must be associated with a person")
	ErrMissingDate   = errors.New("attendance date must be set")
	ErrAlreadyMarked = errors.New("attendance already marked for this date")
)

// Record notes that a person attended on a calendar date. Records are
// append-only.
type Record struct {
	ID         string
	PersonID   string
	Date       string // YYYY-MM-DD format
	RecordedBy string // account ID of whoever marked it
	CreatedAt  time.Time
}

// Validate checks if the Record has valid data.
// PRE: Record struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: PersonID and Date must not be empty
func (r *Record) Validate() error {
	if r.PersonID == "" {
		return ErrMissingPerson
	}
	if r.Date == "" {
		return ErrMissingDate
	}
	return nil
}
