package member

import (
	"context"

	domainAccount "followup/internal/domain/account"
	domain "followup/internal/domain/profile"
)

// Store keeps an account and its profile consistent. Every write touches
// both tables in one transaction.
type Store interface {
	Register(ctx context.Context, acct domainAccount.Account, prof domain.Profile) error
	SetApproval(ctx context.Context, accountID, role string, approved bool) error
	List(ctx context.Context, filter ListFilter) ([]domain.Member, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List operations.
// A zero Limit returns every match.
type ListFilter struct {
	Limit    int
	Offset   int
	Role     string
	Approved *bool
}

// Bool returns a pointer to b for use in ListFilter.Approved.
func Bool(b bool) *bool {
	return &b
}
