package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"followup/internal/application/orchestrators"
	"followup/internal/application/validation"
	"followup/internal/domain/account"
	"followup/internal/domain/assignment"
	"followup/internal/domain/attendance"
	"followup/internal/domain/contact"
	"followup/internal/domain/person"
	"followup/internal/domain/profile"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// errorResponse is the body of every non-2xx JSON reply.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// decodeBody reads a JSON body into v, writing a 400 on malformed input.
// An empty body leaves v untouched when allowEmpty is set.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := strictDecode(r, v)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode_response", "error", err.Error())
	}
}

// errorStatus groups domain errors by the HTTP status they map to.
var errorStatus = []struct {
	status int
	errs   []error
}{
	{http.StatusNotFound, []error{
		person.ErrNotFound, account.ErrNotFound, profile.ErrNotFound, assignment.ErrNotFound,
	}},
	{http.StatusConflict, []error{
		assignment.ErrAlreadyGenerated, assignment.ErrAlreadyCompleted, assignment.ErrNotCompleted,
		assignment.ErrUndoWindowExpired, attendance.ErrAlreadyMarked, account.ErrEmailTaken,
		account.ErrAlreadyMember,
	}},
	{http.StatusForbidden, []error{
		assignment.ErrNotOwner, account.ErrAdminImmutable,
	}},
	{http.StatusUnprocessableEntity, []error{
		orchestrators.ErrNoPeople, orchestrators.ErrNoMembers, orchestrators.ErrNoMemberProfiles,
	}},
	{http.StatusUnauthorized, []error{
		orchestrators.ErrInvalidCredentials,
	}},
	{http.StatusLocked, []error{
		orchestrators.ErrAccountLocked,
	}},
	{http.StatusBadRequest, []error{
		person.ErrEmptyName, person.ErrNameTooLong, person.ErrInvalidGender,
		contact.ErrPhoneRequired, contact.ErrInternationalTooShort, contact.ErrPhoneNotDigits,
		contact.ErrEgyptianPrefix, contact.ErrEgyptianLength,
		account.ErrInvalidEmail, account.ErrEmptyEmail, account.ErrEmailTooLong,
		account.ErrEmptyPassword, account.ErrPasswordTooShort, profile.ErrEmptyName,
		orchestrators.ErrPasswordFieldsRequired, orchestrators.ErrCurrentPasswordWrong,
		orchestrators.ErrNewPasswordSame, orchestrators.ErrInvalidWeekStart,
	}},
}

// writeError maps a domain or application error to a JSON reply.
// Unrecognised errors become a generic 500.
func writeError(w http.ResponseWriter, err error) {
	var fields validation.FieldErrors
	if errors.As(err, &fields) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: fields})
		return
	}
	for _, group := range errorStatus {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				writeJSON(w, group.status, errorResponse{Error: target.Error()})
				return
			}
		}
	}
	internalError(w, err)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := stores.DB.PingContext(r.Context()); err != nil {
		slog.Error("health_check_failed", "error", err.Error())
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
