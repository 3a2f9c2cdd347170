package web

import (
	"context"
	"net/http"

	"followup/internal/application/orchestrators"
	"followup/internal/application/projections"
	"followup/internal/domain/account"
)

// handleListMembers returns pending sign-ups and current members.
func handleListMembers(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetMemberRequests(r.Context(), stores.Members)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func handleApproveMember(w http.ResponseWriter, r *http.Request) {
	reviewMember(w, r, orchestrators.ExecuteApproveMember, account.RoleMember)
}

func handleRejectMember(w http.ResponseWriter, r *http.Request) {
	reviewMember(w, r, orchestrators.ExecuteRejectMember, account.RolePending)
}

// reviewMember applies a review decision and moves the member's live
// sessions to the new role.
func reviewMember(w http.ResponseWriter, r *http.Request, review func(ctx context.Context, id string, deps orchestrators.ReviewMemberDeps) error, role string) {
	id := r.PathValue("id")
	err := review(r.Context(), id, orchestrators.ReviewMemberDeps{
		AccountStore: stores.Accounts,
		MemberStore:  stores.Members,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	sessions.SetRole(id, role)
	writeJSON(w, http.StatusOK, map[string]string{"account_id": id, "role": role})
}
