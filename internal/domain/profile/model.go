package profile

import (
	"errors"
	"strings"
	"time"

	"followup/internal/domain/account"
	"followup/internal/domain/person"
)

// Domain errors
var (
	ErrEmptyName = errors.New("profile name is required")
	ErrNotFound  = errors.New("profile not found")
)

// Profile is the servant-facing half of a member account: display name,
// gender partition, and the admin's approval decision.
type Profile struct {
	AccountID string
	Name      string
	Gender    string
	Approved  bool
	CreatedAt time.Time
}

// Validate checks if the Profile has valid data.
// PRE: Profile struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if len(p.Name) > person.MaxNameLength {
		return person.ErrNameTooLong
	}
	if !person.IsValidGender(p.Gender) {
		return person.ErrInvalidGender
	}
	return nil
}

// Eligible reports whether the holder of this profile may receive weekly
// assignments.
// INVARIANT: true only when role is member AND the profile is approved
func (p *Profile) Eligible(role string) bool {
	return role == account.RoleMember && p.Approved
}

// Member is an account joined with its profile, as shown on the admin's
// member-requests screen.
type Member struct {
	AccountID string
	Email     string
	Role      string
	Name      string
	Gender    string
	Approved  bool
	CreatedAt time.Time
}

// Eligible reports whether the member may receive weekly assignments.
func (m Member) Eligible() bool {
	p := Profile{Approved: m.Approved}
	return p.Eligible(m.Role)
}
