package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"followup/internal/application/validation"
	"followup/internal/domain/account"
	"followup/internal/domain/profile"
)

// AccountRegistrar creates an account and its profile together.
type AccountRegistrar interface {
	Register(ctx context.Context, acct account.Account, prof profile.Profile) error
}

// AccountCounter counts existing accounts.
type AccountCounter interface {
	Count(ctx context.Context) (int, error)
}

// CreateAccountInput carries the sign-up form, also used for admin creation.
type CreateAccountInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=12"`
	Name     string `json:"name" validate:"notblank,max=100"`
	Gender   string `json:"gender" validate:"gender"`
}

// CreateAccountDeps holds dependencies for account creation.
type CreateAccountDeps struct {
	MemberStore AccountRegistrar
	Now         func() time.Time
	GenerateID  func() string
}


// ExecuteRegisterMember signs up a volunteer. The account starts pending with
// an unapproved profile and receives no assignments until an admin approves.
// PRE: input passes field validation
// POST: Pending account and unapproved profile exist, or neither does
// INVARIANT: Email must be unique (enforced by store)
func ExecuteRegisterMember(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (string, error) {
	return createAccount(ctx, input, deps, account.RolePending, false)
}

// ExecuteCreateAdmin creates an approved administrator.
// PRE: input passes field validation
// POST: Admin account and approved profile exist
func ExecuteCreateAdmin(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (string, error) {
	return createAccount(ctx, input, deps, account.RoleAdmin, true)
}

func createAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps, role string, approved bool) (string, error) {
	if err := validation.Struct(input); err != nil {
		return "", err
	}

	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}
	id := uuid.New().String()
	if deps.GenerateID != nil {
		id = deps.GenerateID()
	}

	acct := account.Account{
		ID:        id,
		Email:     account.NormalizeEmail(input.Email),
		Role:      role,
		CreatedAt: now,
	}
	if err := acct.Validate(); err != nil {
		return "", err
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return "", err
	}

	prof := profile.Profile{
		AccountID: id,
		Name:      input.Name,
		Gender:    input.Gender,
		Approved:  approved,
		CreatedAt: now,
	}
	if err := prof.Validate(); err != nil {
		return "", err
	}

	if err := deps.MemberStore.Register(ctx, acct, prof); err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			slog.Info("auth_event", "event", "register_refused", "email", acct.Email, "reason", "email_taken")
		}
		return "", err
	}

	slog.Info("auth_event", "event", "account_created", "email", acct.Email, "role", role)
	return id, nil
}

// ExecuteSeedAdmin creates the bootstrap admin if no accounts exist yet.
// PRE: Database is migrated
// POST: Admin account created if count == 0; returns whether one was created
func ExecuteSeedAdmin(ctx context.Context, input CreateAccountInput, counter AccountCounter, deps CreateAccountDeps) (bool, error) {
	count, err := counter.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if _, err := ExecuteCreateAdmin(ctx, input, deps); err != nil {
		return false, err
	}
	slog.Info("auth_event", "event", "admin_seeded", "email", account.NormalizeEmail(input.Email))
	return true, nil
}
