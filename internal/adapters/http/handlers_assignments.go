package web

import (
	"context"
	"net/http"
	"time"

	"followup/internal/adapters/http/middleware"
	"followup/internal/application/orchestrators"
	"followup/internal/application/projections"
	"followup/internal/domain/assignment"
	"followup/internal/domain/week"
)

// generateRequest is the optional body of POST /api/assignments/generate.
// A missing Replace falls back to the configured policy.
type generateRequest struct {
	WeekStart string `json:"week_start"`
	Replace   *bool  `json:"replace"`
}

func handleGenerateAssignments(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	replace := appConfig.ReplaceByDefault()
	if req.Replace != nil {
		replace = *req.Replace
	}

	result, err := orchestrators.ExecuteGenerateAssignments(r.Context(), orchestrators.GenerateAssignmentsInput{
		WeekStart: req.WeekStart,
		Replace:   replace,
	}, orchestrators.GenerateAssignmentsDeps{
		PersonStore:     stores.People,
		AccountStore:    stores.Accounts,
		ProfileStore:    stores.Profiles,
		AssignmentStore: stores.Assignments,
		Metrics:         metrics,
		WeekStartDay:    appConfig.WeekStartDay,
		Now:             timeNow,
		GenerateID:      generateID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// handleWeekAssignments shows every servant's list for the week containing
// ?week=YYYY-MM-DD, defaulting to the current week.
func handleWeekAssignments(w http.ResponseWriter, r *http.Request) {
	weekStart := r.URL.Query().Get("week")
	if weekStart != "" {
		snapped, err := week.Snap(weekStart, appConfig.WeekStartDay)
		if err != nil {
			writeError(w, orchestrators.ErrInvalidWeekStart)
			return
		}
		weekStart = snapped
	}
	result, err := projections.QueryGetWeekAssignments(r.Context(), weekStart, projections.GetWeekAssignmentsDeps{
		AssignmentStore: stores.Assignments,
		PersonStore:     stores.People,
		MemberStore:     stores.Members,
		WeekStartDay:    appConfig.WeekStartDay,
		Now:             timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func handleMyAssignments(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	result, err := projections.QueryGetMyAssignments(r.Context(), sess.AccountID, projections.GetMyAssignmentsDeps{
		AssignmentStore: stores.Assignments,
		PersonStore:     stores.People,
		WeekStartDay:    appConfig.WeekStartDay,
		Now:             timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// assignmentStatus is the reply to complete and undo.
type assignmentStatus struct {
	ID           string    `json:"id"`
	Completed    bool      `json:"completed"`
	CompletedAt  time.Time `json:"completed_at,omitzero"`
	UndoDeadline time.Time `json:"undo_deadline,omitzero"`
}

// assignmentAction is ExecuteCompleteAssignment or ExecuteUndoAssignment.
type assignmentAction func(ctx context.Context, input orchestrators.AssignmentActionInput, deps orchestrators.AssignmentActionDeps) (assignment.WeeklyAssignment, error)

func handleCompleteAssignment(w http.ResponseWriter, r *http.Request) {
	actOnAssignment(w, r, orchestrators.ExecuteCompleteAssignment)
}

func handleUndoAssignment(w http.ResponseWriter, r *http.Request) {
	actOnAssignment(w, r, orchestrators.ExecuteUndoAssignment)
}

// actOnAssignment runs act for the signed-in servant on the {id} assignment.
func actOnAssignment(w http.ResponseWriter, r *http.Request, act assignmentAction) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	a, err := act(r.Context(), orchestrators.AssignmentActionInput{
		AssignmentID: r.PathValue("id"),
		ServantID:    sess.AccountID,
	}, orchestrators.AssignmentActionDeps{
		AssignmentStore: stores.Assignments,
		UndoGrace:       appConfig.UndoGrace,
		Now:             timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assignmentStatus{
		ID:           a.ID,
		Completed:    a.Completed,
		CompletedAt:  a.CompletedAt,
		UndoDeadline: a.UndoDeadline,
	})
}
