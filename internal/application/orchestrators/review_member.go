package orchestrators

import (
	"context"
	"log/slog"

	"followup/internal/domain/account"
)

// AccountGetter loads an account by ID.
type AccountGetter interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
}

// ApprovalWriter writes role and approval flag atomically.
type ApprovalWriter interface {
	SetApproval(ctx context.Context, accountID, role string, approved bool) error
}

// ReviewMemberDeps holds dependencies for Approve/Reject.
type ReviewMemberDeps struct {
	AccountStore AccountGetter
	MemberStore  ApprovalWriter
}

// ExecuteApproveMember promotes a pending sign-up to an approved member.
// PRE: accountID refers to a pending account
// POST: role = member and profile.approved = true, written together
func ExecuteApproveMember(ctx context.Context, accountID string, deps ReviewMemberDeps) error {
	acct, err := deps.AccountStore.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := acct.Approve(); err != nil {
		return err
	}
	if err := deps.MemberStore.SetApproval(ctx, acct.ID, acct.Role, true); err != nil {
		return err
	}
	slog.Info("member_event", "event", "approved", "account_id", acct.ID, "email", acct.Email)
	return nil
}

// ExecuteRejectMember returns an account to pending and clears approval, so
// it stops receiving assignments from the next generation on.
// PRE: accountID refers to a non-admin account
// POST: role = pending and profile.approved = false, written together
func ExecuteRejectMember(ctx context.Context, accountID string, deps ReviewMemberDeps) error {
	acct, err := deps.AccountStore.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := acct.Reject(); err != nil {
		return err
	}
	if err := deps.MemberStore.SetApproval(ctx, acct.ID, acct.Role, false); err != nil {
		return err
	}
	slog.Info("member_event", "event", "rejected", "account_id", acct.ID, "email", acct.Email)
	return nil
}
