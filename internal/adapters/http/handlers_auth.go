package web

import (
	"errors"
	"log/slog"
	"net/http"

	"followup/internal/adapters/http/middleware"
	"followup/internal/application/orchestrators"
	"followup/internal/domain/profile"
)

// accountResponse describes the signed-in account.
type accountResponse struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Name      string `json:"name,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Approved  bool   `json:"approved"`
}

// handleRegister creates a pending member account awaiting admin approval.
func handleRegister(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.CreateAccountInput
	if !decodeBody(w, r, &input, false) {
		return
	}
	id, err := orchestrators.ExecuteRegisterMember(r.Context(), input, orchestrators.CreateAccountDeps{
		MemberStore: stores.Members,
		Now:         timeNow,
		GenerateID:  generateID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"account_id": id, "status": "pending"})
}

func handleLogin(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.LoginInput
	if !decodeBody(w, r, &input, false) {
		return
	}
	result, err := orchestrators.ExecuteLogin(r.Context(), input, orchestrators.LoginDeps{
		AccountStore: stores.Accounts,
		Now:          timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := sessions.Create(result.AccountID, result.Email, result.Role)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)
	writeJSON(w, http.StatusOK, accountResponse{
		AccountID: result.AccountID,
		Email:     result.Email,
		Role:      result.Role,
	})
}

func handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		sessions.Delete(cookie.Value)
	}
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		slog.Info("auth_event", "event", "logout", "account_id", sess.AccountID)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleMe returns the session's account together with its profile.
// Admin accounts seeded without a profile return the session fields only.
func handleMe(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	resp := accountResponse{AccountID: sess.AccountID, Email: sess.Email, Role: sess.Role}

	prof, err := stores.Profiles.GetByAccountID(r.Context(), sess.AccountID)
	switch {
	case err == nil:
		resp.Name = prof.Name
		resp.Gender = prof.Gender
		resp.Approved = prof.Approved
	case !errors.Is(err, profile.ErrNotFound):
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	var input orchestrators.ChangePasswordInput
	if !decodeBody(w, r, &input, false) {
		return
	}
	input.AccountID = sess.AccountID
	if err := orchestrators.ExecuteChangePassword(r.Context(), input, stores.Accounts); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
