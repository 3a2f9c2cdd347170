package person

import (
	"errors"
	"strings"
	"time"

	"followup/internal/domain/contact"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Gender constants
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Genders lists the partitions used throughout the system, in display order.
var Genders = []string{GenderMale, GenderFemale}

// Domain errors
var (
	ErrEmptyName     = errors.New("name is required")
	ErrNameTooLong   = errors.New("name cannot exceed 100 characters")
	ErrInvalidGender = errors.New("gender must be 'male' or 'female'")
	ErrNotFound      = errors.New("person not found")
)

// Person is someone on the follow-up roster.
type Person struct {
	ID                 string
	Name               string
	Phone              string
	Gender             string
	LastAttendanceDate string // YYYY-MM-DD, empty if never attended
	CreatedAt          time.Time
}

// Normalize trims the phone and capitalizes the name in place.
// POST: Name is capitalized with single spaces, Phone has no surrounding space
func (p *Person) Normalize() {
	p.Name = contact.CapitalizeName(p.Name)
	p.Phone = strings.TrimSpace(p.Phone)
}

// Validate checks if the Person has valid data.
// PRE: Person struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Gender is one of the two partitions
func (p *Person) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if len(p.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if err := contact.ValidatePhone(p.Phone); err != nil {
		return err
	}
	if !IsValidGender(p.Gender) {
		return ErrInvalidGender
	}
	return nil
}

// HasAttended reports whether any attendance has ever been recorded.
func (p *Person) HasAttended() bool {
	return p.LastAttendanceDate != ""
}

// IsValidGender reports whether g is a known gender partition.
func IsValidGender(g string) bool {
	return g == GenderMale || g == GenderFemale
}
