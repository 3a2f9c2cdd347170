package projections

import (
	"context"

	"followup/internal/adapters/storage/member"
	"followup/internal/domain/account"
	domainProfile "followup/internal/domain/profile"
)

// MemberRow is one account on the member requests screen.
type MemberRow struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Gender    string `json:"gender"`
	Role      string `json:"role"`
	Approved  bool   `json:"approved"`
	Eligible  bool   `json:"eligible"`
}

// GetMemberRequestsResult splits accounts into the two lists the admin acts on.
type GetMemberRequestsResult struct {
	Pending []MemberRow `json:"pending"`
	Members []MemberRow `json:"members"`
}

// QueryGetMemberRequests lists pending sign-ups and current members.
// PRE: none
// POST: Pending holds role=pending accounts; Members holds role=member
// accounts; admins appear in neither
func QueryGetMemberRequests(ctx context.Context, store MemberStore) (GetMemberRequestsResult, error) {
	pending, err := store.List(ctx, member.ListFilter{Role: account.RolePending})
	if err != nil {
		return GetMemberRequestsResult{}, err
	}
	members, err := store.List(ctx, member.ListFilter{Role: account.RoleMember})
	if err != nil {
		return GetMemberRequestsResult{}, err
	}
	return GetMemberRequestsResult{
		Pending: toMemberRows(pending),
		Members: toMemberRows(members),
	}, nil
}

func toMemberRows(ms []domainProfile.Member) []MemberRow {
	rows := make([]MemberRow, 0, len(ms))
	for _, m := range ms {
		rows = append(rows, MemberRow{
			AccountID: m.AccountID,
			Email:     m.Email,
			Name:      m.Name,
			Gender:    m.Gender,
			Role:      m.Role,
			Approved:  m.Approved,
			Eligible:  m.Eligible(),
		})
	}
	return rows
}
